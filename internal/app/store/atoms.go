package store

// Atoms shared by the page shell.
var (
	// MigrateOpen reports whether the migration dialog is open.
	MigrateOpen = NewAtom("migrateOpen", false)
	// SelectedProtocol is the protocol the visitor picked as migration source.
	SelectedProtocol = NewAtom("selectedProtocol", "")
)

// NewShell creates a store with the shell atoms registered.
func NewShell() *Store {
	s := New()
	Register(s, MigrateOpen)
	Register(s, SelectedProtocol)
	return s
}
