package model

import "strings"

type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareAccepted ShareStatus = "accepted"
	ShareDeclined ShareStatus = "declined"
)

// Share is an invitation to see another user's task.
type Share struct {
	ID        string
	Task      Task
	PeerName  string
	PeerEmail string
	Status    ShareStatus
}

// Peer names the other side of the share, falling back to the email.
func (s Share) Peer() string {
	if name := strings.TrimSpace(s.PeerName); name != "" {
		return name
	}
	return s.PeerEmail
}
