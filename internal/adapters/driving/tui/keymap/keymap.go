// Package keymap defines keybindings for the progress display.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the progress display.
type KeyMap struct {
	// Cancel stops the running work.
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown under the progress bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cancel}
}
