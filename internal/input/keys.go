// Package input maps terminal key runes to pacman command bytes, adapted
// from the teacher's GameKey/Handler mapping table: the teacher maps keys to
// a protocol.Intent bitmask for a platformer with simultaneous held keys;
// pacman has no intent bitmask, only a single command byte per PLAY frame,
// so this package collapses Handler down to a plain rune-to-byte table.
package input

// Bindings maps a pressed key rune to the uppercase command byte the wire
// protocol expects, mirroring client_main.c's toupper(get_input()).
type Bindings struct {
	mapping map[rune]byte
}

// NewBindings creates a Bindings with the default WASD + quit mapping.
func NewBindings() *Bindings {
	b := &Bindings{mapping: make(map[rune]byte)}
	b.SetDefaultBindings()
	return b
}

// SetDefaultBindings installs WASD movement and Q to quit, both cases.
func (b *Bindings) SetDefaultBindings() {
	b.mapping['w'] = 'W'
	b.mapping['W'] = 'W'
	b.mapping['a'] = 'A'
	b.mapping['A'] = 'A'
	b.mapping['s'] = 'S'
	b.mapping['S'] = 'S'
	b.mapping['d'] = 'D'
	b.mapping['D'] = 'D'
	b.mapping['q'] = 'Q'
	b.mapping['Q'] = 'Q'
}

// Bind overrides or adds a single key binding.
func (b *Bindings) Bind(key rune, command byte) {
	b.mapping[key] = command
}

// Command translates a key rune to a command byte, returning ok == false for
// unbound keys.
func (b *Bindings) Command(key rune) (command byte, ok bool) {
	command, ok = b.mapping[key]
	return command, ok
}
