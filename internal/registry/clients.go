package registry

import (
	"fmt"
	"sync"
)

// ClientInfo is the display metadata held for one connected client.
type ClientInfo struct {
	Name       string
	ColorIndex int
}

// Clients maps connection addresses to display metadata and enforces
// name uniqueness among connected clients.
type Clients struct {
	mu           sync.RWMutex
	clients      map[string]ClientInfo
	colorCounter int
}

func NewClients() *Clients {
	return &Clients{clients: make(map[string]ClientInfo)}
}

// IsNameAvailable reports whether no connected client holds name.
// The comparison is case-sensitive.
func (c *Clients) IsNameAvailable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nameAvailableLocked(name, "")
}

func (c *Clients) nameAvailableLocked(name, except string) bool {
	for addr, info := range c.clients {
		if info.Name == name && addr != except {
			return false
		}
	}
	return true
}

// Register binds addr to name and assigns the next color index. The
// availability check happens inside the same critical section, so two
// concurrent registrations of the same name cannot both succeed.
func (c *Clients) Register(addr, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.nameAvailableLocked(name, addr) {
		return fmt.Errorf("name %q: %w", name, ErrNameTaken)
	}
	c.clients[addr] = ClientInfo{Name: name, ColorIndex: c.colorCounter}
	c.colorCounter++
	return nil
}

// Rename changes the display name of an already registered client,
// keeping its color index.
func (c *Clients) Rename(addr, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, exists := c.clients[addr]
	if !exists {
		return fmt.Errorf("client %s is not registered", addr)
	}
	if !c.nameAvailableLocked(newName, addr) {
		return fmt.Errorf("name %q: %w", newName, ErrNameTaken)
	}
	info.Name = newName
	c.clients[addr] = info
	return nil
}

// NameOf returns the display name bound to addr.
func (c *Clients) NameOf(addr string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, exists := c.clients[addr]
	return info.Name, exists
}

// InfoOf returns the full metadata bound to addr.
func (c *Clients) InfoOf(addr string) (ClientInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, exists := c.clients[addr]
	return info, exists
}

// AddrOf resolves a display name to its connection address.
func (c *Clients) AddrOf(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for addr, info := range c.clients {
		if info.Name == name {
			return addr, true
		}
	}
	return "", false
}

// Remove forgets addr. Unknown addresses are a no-op.
func (c *Clients) Remove(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, addr)
}
