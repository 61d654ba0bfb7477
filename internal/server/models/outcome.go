package models

// Outcome is the result of reconciling one client note. It is a closed sum
// type: the only implementations are Created, Updated and Conflict.
type Outcome interface {
	// Accepted reports whether the client's note became authoritative.
	Accepted() bool
	outcome()
}

// Created means the server had no record for the id and stored the client
// note verbatim.
type Created struct {
	Note Note
}

// Updated means the client edited the current version and the server stored
// the returned record with an incremented version.
type Updated struct {
	Note Note
}

// Conflict means the client's version did not match the server's. Neither
// note has been modified and nothing was written.
type Conflict struct {
	ClientNote Note
	ServerNote Note
}

func (Created) Accepted() bool  { return true }
func (Updated) Accepted() bool  { return true }
func (Conflict) Accepted() bool { return false }

func (Created) outcome()  {}
func (Updated) outcome()  {}
func (Conflict) outcome() {}
