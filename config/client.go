package config

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Bappoz/Rustatui-Chat/pkg/colors"
)

// ClientConfig holds the command-line options of the chat client.
type ClientConfig struct {
	Name     string // empty lets the server assign Anonymous#N
	Room     string
	Password string
	Color    string
	Server   string
}

// DefaultClient returns the built-in client configuration.
func DefaultClient() ClientConfig {
	return ClientConfig{
		Room:   "general",
		Color:  "white",
		Server: "localhost:4556",
	}
}

func (c ClientConfig) Validate() error {
	if c.Name != "" {
		if n := utf8.RuneCountInString(c.Name); n < 2 || n > 20 {
			return fmt.Errorf("name must be between 2 and 20 characters")
		}
	}
	if _, ok := colors.Named[c.Color]; !ok {
		names := make([]string, 0, len(colors.Named))
		for name := range colors.Named {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("invalid color %q, use one of: %s", c.Color, strings.Join(names, ", "))
	}
	return nil
}
