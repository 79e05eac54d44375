package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTakesName(t *testing.T) {
	clients := NewClients()

	require.True(t, clients.IsNameAvailable("alice"))
	require.NoError(t, clients.Register(addrA, "alice"))

	assert.False(t, clients.IsNameAvailable("alice"))
	assert.True(t, clients.IsNameAvailable("Alice"), "name comparison is case-sensitive")

	err := clients.Register(addrB, "alice")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestRemoveFreesName(t *testing.T) {
	clients := NewClients()
	require.NoError(t, clients.Register(addrA, "alice"))

	clients.Remove(addrA)
	assert.True(t, clients.IsNameAvailable("alice"))
}

func TestRenameFreesOldName(t *testing.T) {
	clients := NewClients()
	require.NoError(t, clients.Register(addrA, "alice"))
	require.NoError(t, clients.Register(addrB, "bob"))

	assert.ErrorIs(t, clients.Rename(addrA, "bob"), ErrNameTaken)
	assert.NoError(t, clients.Rename(addrA, "alice"), "renaming to one's own name is allowed")
	require.NoError(t, clients.Rename(addrA, "carol"))

	assert.True(t, clients.IsNameAvailable("alice"))
	name, ok := clients.NameOf(addrA)
	require.True(t, ok)
	assert.Equal(t, "carol", name)
}

func TestRenameUnknownClient(t *testing.T) {
	clients := NewClients()
	assert.Error(t, clients.Rename(addrA, "ghost"))
}

func TestColorIndexesStrictlyIncrease(t *testing.T) {
	clients := NewClients()
	require.NoError(t, clients.Register(addrA, "alice"))
	require.NoError(t, clients.Register(addrB, "bob"))

	a, ok := clients.InfoOf(addrA)
	require.True(t, ok)
	b, ok := clients.InfoOf(addrB)
	require.True(t, ok)
	assert.Greater(t, b.ColorIndex, a.ColorIndex)
}

func TestRenameKeepsColorIndex(t *testing.T) {
	clients := NewClients()
	require.NoError(t, clients.Register(addrA, "alice"))

	before, _ := clients.InfoOf(addrA)
	require.NoError(t, clients.Rename(addrA, "carol"))
	after, _ := clients.InfoOf(addrA)
	assert.Equal(t, before.ColorIndex, after.ColorIndex)
}

func TestAddrOf(t *testing.T) {
	clients := NewClients()
	require.NoError(t, clients.Register(addrA, "alice"))

	addr, ok := clients.AddrOf("alice")
	require.True(t, ok)
	assert.Equal(t, addrA, addr)

	_, ok = clients.AddrOf("ghost")
	assert.False(t, ok)
}

func TestConcurrentRegistrationOfSameName(t *testing.T) {
	clients := NewClients()

	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- clients.Register(fmt.Sprintf("127.0.0.1:%d", 7000+i), "alice")
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrNameTaken)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent registration may win")
}
