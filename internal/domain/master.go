package domain

import (
	"strings"
	"time"
)

// MasterKind distinguishes the two contact directories.
type MasterKind string

const (
	MasterParty      MasterKind = "party"
	MasterMotorOwner MasterKind = "motor_owner"
)

// Master is a party (customer) or motor owner contact.
type Master struct {
	ID        string
	Kind      MasterKind
	Name      string
	Mobile    string
	CreatedAt time.Time
}

// MatchesQuery reports whether q appears in the name (case-insensitive) or mobile.
func (m *Master) MatchesQuery(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), strings.ToLower(q)) || strings.Contains(m.Mobile, q)
}
