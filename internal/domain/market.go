package domain

import "time"

// Market represents a prediction market. It is an immutable snapshot fetched
// on demand from the exchange; nothing in this process mutates it locally.
type Market struct {
	ID        string
	Question  string
	Active    bool
	Outcomes  []string // e.g. ["Yes","No"]
	CreatedAt time.Time
}
