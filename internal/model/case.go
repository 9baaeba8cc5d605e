package model

import "time"

// Case status values
const (
	CaseStatusOpen   = "open"
	CaseStatusClosed = "closed"
)

// Case represents a legal matter owned by a client
type Case struct {
	ID         string
	ClientID   string
	CaseNumber string
	CaseName   string
	CourtName  string
	Plaintiff  string
	Defendant  string
	// ServeeName is the person or entity to be served, when it differs from the case name
	ServeeName  string
	HomeAddress string
	WorkAddress string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsClosed reports whether the case has been closed
func (c Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}
