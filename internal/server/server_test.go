package server

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bappoz/Rustatui-Chat/internal/broadcast"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

// startServer runs a server on an ephemeral port and returns its address,
// taken from the listener itself so dialing never races Serve's startup.
func startServer(t *testing.T, maxSessions int) string {
	t.Helper()
	srv := New("127.0.0.1:0", maxSessions, registry.NewClients(), registry.NewRooms(), broadcast.NewBus(32), logger.NewLogger("error", ""))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

// dialAndRegister connects and completes the naming prompt.
func dialAndRegister(t *testing.T, addr, name string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	reader := bufio.NewReader(conn)
	awaitOutput(t, reader, "Name (press Enter")
	_, err = conn.Write([]byte(name + "\n"))
	require.NoError(t, err)
	awaitOutput(t, reader, "Welcome, "+name)
	return conn, reader
}

// awaitOutput reads until the accumulated output contains substr.
func awaitOutput(t *testing.T, reader *bufio.Reader, substr string) string {
	t.Helper()
	var got strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, 1024)
	for time.Now().Before(deadline) {
		n, err := reader.Read(buf)
		if n > 0 {
			got.Write(buf[:n])
			if strings.Contains(got.String(), substr) {
				return got.String()
			}
		}
		if err != nil {
			break
		}
	}
	t.Fatalf("did not see %q in output:\n%s", substr, got.String())
	return ""
}

func TestAcceptAndChatBetweenTwoClients(t *testing.T) {
	addr := startServer(t, 0)

	aliceConn, _ := dialAndRegister(t, addr, "alice")
	_, bobReader := dialAndRegister(t, addr, "bob")

	_, err := aliceConn.Write([]byte("hi bob\n"))
	require.NoError(t, err)

	out := awaitOutput(t, bobReader, "hi bob")
	assert.Contains(t, out, "CHAT|")
	assert.Contains(t, out, "|alice|")
}

func TestAnonymousIDsFollowAcceptOrder(t *testing.T) {
	addr := startServer(t, 0)

	conn1, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn1.Close() })
	awaitOutput(t, bufio.NewReader(conn1), "Anonymous#1")

	conn2, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn2.Close() })
	awaitOutput(t, bufio.NewReader(conn2), "Anonymous#2")
}

func TestSessionLimitRejectsExtraConnections(t *testing.T) {
	addr := startServer(t, 1)

	dialAndRegister(t, addr, "alice")

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	out := awaitOutput(t, bufio.NewReader(conn), "Server is full")
	assert.Contains(t, out, "SYSTEM|")
}

func TestStopUnblocksServe(t *testing.T) {
	srv := New("127.0.0.1:0", 0, registry.NewClients(), registry.NewRooms(), broadcast.NewBus(32), logger.NewLogger("error", ""))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	require.Eventually(t, func() bool {
		return srv.Addr() == ln.Addr().String()
	}, 2*time.Second, 10*time.Millisecond)
	srv.Stop()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}
