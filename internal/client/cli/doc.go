// Package cli provides the notesync command-line client.
//
// Commands edit a local SQLite copy of the notes offline and reconcile it
// with the server on demand:
//
//	notesync add "Groceries" < list.txt
//	notesync push
//	notesync conflicts
//	notesync resolve <id> --keep client
//
// NewRootCommand builds the cobra tree. The local database and the server
// client are opened lazily by the first command that needs them.
package cli
