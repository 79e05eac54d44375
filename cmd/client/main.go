package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Bappoz/Rustatui-Chat/config"
	"github.com/Bappoz/Rustatui-Chat/internal/domain"
	"github.com/Bappoz/Rustatui-Chat/pkg/colors"
)

func main() {
	cfg := parseFlags()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid options: %v", err)
	}

	conn, err := net.Dial("tcp", cfg.Server)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", cfg.Server, err)
	}
	defer conn.Close()

	// OS interrupt signals
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Start goroutine to render incoming lines
	done := make(chan struct{})
	go readMessages(conn, done)

	autoRegister(conn, cfg)
	writeMessages(conn, cfg, interrupt, done)
}

func parseFlags() config.ClientConfig {
	defaults := config.DefaultClient()
	name := flag.String("name", defaults.Name, "display name (empty for Anonymous#N)")
	room := flag.String("room", defaults.Room, "room to join after registering")
	password := flag.String("password", defaults.Password, "password for the room, if protected")
	color := flag.String("color", defaults.Color, "preferred display color")
	server := flag.String("server", defaults.Server, "chat server address")
	flag.Parse()

	return config.ClientConfig{
		Name:     *name,
		Room:     *room,
		Password: *password,
		Color:    *color,
		Server:   *server,
	}
}

// autoRegister answers the naming prompt and moves to the requested
// room. The server reads these lines in order, so sending them up front
// is equivalent to typing them.
func autoRegister(conn net.Conn, cfg config.ClientConfig) {
	fmt.Fprintf(conn, "%s\n", cfg.Name)
	if cfg.Room != "" && cfg.Room != "general" {
		join := "/join " + cfg.Room
		if cfg.Password != "" {
			join += " " + cfg.Password
		}
		fmt.Fprintf(conn, "%s\n", join)
	}
}

// readMessages renders every server line until the connection closes.
func readMessages(conn net.Conn, done chan struct{}) {
	defer close(done)
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			printLine(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			return
		}
	}
}

// printLine renders one structured wire line, falling back to raw text
// for the registration banner and prompts.
func printLine(line string) {
	msg, err := domain.ParseLine(line)
	if err != nil {
		fmt.Println(line)
		return
	}

	switch msg.Type {
	case domain.MessageTypeChat:
		fmt.Printf("[%s] %s%s%s: %s\n",
			msg.Timestamp.Format("15:04:05"),
			colors.HexToANSI(msg.Color), msg.SenderName, colors.Reset,
			msg.Content)
	case domain.MessageTypeWhisper:
		fmt.Printf("[%s] %s%s (whisper)%s: %s\n",
			msg.Timestamp.Format("15:04:05"),
			colors.HexToANSI(msg.Color), msg.SenderName, colors.Reset,
			msg.Content)
	case domain.MessageTypeSystem:
		fmt.Printf("%s* %s%s\n", colors.HexToANSI(colors.SystemColor), msg.Content, colors.Reset)
	case domain.MessageTypeUserList:
		fmt.Printf("%s* Users here: %s%s\n", colors.HexToANSI(colors.SystemColor), msg.Content, colors.Reset)
	case domain.MessageTypeRoomJoin:
		fmt.Printf("%s* Now in room: %s%s\n", colors.HexToANSI(colors.SystemColor), msg.Content, colors.Reset)
	case domain.MessageTypeRoomList:
		fmt.Printf("%s* Rooms: %s%s\n", colors.HexToANSI(colors.SystemColor), msg.Content, colors.Reset)
	default:
		fmt.Println(line)
	}
}

// writeMessages forwards stdin lines to the server until interrupted or
// the read side finishes. The server does not echo own messages back, so
// plain chat lines are echoed locally in the configured color.
func writeMessages(conn net.Conn, cfg config.ClientConfig, interrupt chan os.Signal, done chan struct{}) {
	echoName := cfg.Name
	if echoName == "" {
		echoName = "me"
	}
	echoColor := colors.Named[cfg.Color]
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-done:
			fmt.Println("Disconnected from server.")
			return
		case <-interrupt:
			fmt.Fprintln(conn, "/quit")
			<-done
			return
		case line, ok := <-input:
			if !ok {
				fmt.Fprintln(conn, "/quit")
				<-done
				return
			}
			if _, err := fmt.Fprintln(conn, line); err != nil {
				log.Printf("write failed: %v", err)
				return
			}
			if line != "" && !strings.HasPrefix(line, "/") {
				fmt.Printf("[%s] %s%s%s: %s\n",
					time.Now().Format("15:04:05"),
					colors.HexToANSI(echoColor), echoName, colors.Reset,
					line)
			}
		}
	}
}
