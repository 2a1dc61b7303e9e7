package domain

import (
	"fmt"
	"time"
)

// TransportMode names the channel a client is configured to use when
// talking to the daemon.
type TransportMode string

const (
	// TransportStdio is the low-latency channel. At most one client holds
	// it at a time.
	TransportStdio TransportMode = "stdio"

	// TransportHTTP is the multi-client fallback channel.
	TransportHTTP TransportMode = "http"
)

// DenialReason is the machine-readable code carried by a denied
// low-latency claim. Clients branch on the code, never on message text.
type DenialReason string

const (
	// DenialPrimaryHeld means another client currently holds the
	// low-latency channel.
	DenialPrimaryHeld DenialReason = "primary-held"
)

// ConnectionDecision is the outcome of a low-latency channel claim.
// A denial always carries a usable fallback address so the requester can
// self-redirect without user intervention.
type ConnectionDecision struct {
	Granted bool `json:"granted"`

	// PrimaryID is the client holding the channel after the decision.
	PrimaryID string `json:"primary_id"`

	// Reason is set only on denial.
	Reason DenialReason `json:"reason,omitempty"`

	// FallbackAddress is set only on denial.
	FallbackAddress string `json:"fallback_address,omitempty"`
}

// ConflictRecord remembers a denied low-latency claim so the operator
// surface can show who tried to connect and was redirected.
type ConflictRecord struct {
	RequesterID string    `json:"requester_id"`
	At          time.Time `json:"at"`
}

// maxDenialRecords bounds the persisted denial log. Older entries are
// dropped; the log is an operator surface, not an audit trail.
const maxDenialRecords = 50

// ClientConnectionState is the arbiter's persisted state. There is one
// per daemon lifetime, mutated only through the arbiter and written back
// on every change so assignments survive restarts.
type ClientConnectionState struct {
	// PrimaryID is the client granted the low-latency channel, or empty
	// when no primary is assigned.
	PrimaryID string `json:"primary_id"`

	// FallbackClients maps every other known client id to the fallback
	// address it was told to use.
	FallbackClients map[string]string `json:"fallback_clients"`

	// LastConflict is the most recent denied claim, if any.
	LastConflict *ConflictRecord `json:"last_conflict,omitempty"`

	// Denials is the log of denied claims, oldest first, capped at
	// maxDenialRecords entries.
	Denials []ConflictRecord `json:"denials,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// RecordDenial appends a denied claim to the log and points LastConflict
// at it, trimming the log to its cap.
func (s *ClientConnectionState) RecordDenial(rec ConflictRecord) {
	s.LastConflict = &rec
	s.Denials = append(s.Denials, rec)
	if len(s.Denials) > maxDenialRecords {
		s.Denials = s.Denials[len(s.Denials)-maxDenialRecords:]
	}
}

// NewClientConnectionState returns an empty state with no primary.
func NewClientConnectionState() *ClientConnectionState {
	return &ClientConnectionState{
		FallbackClients: make(map[string]string),
	}
}

// KnownClients returns every client id the arbiter has seen, primary
// included, in no particular order.
func (s *ClientConnectionState) KnownClients() []string {
	ids := make([]string, 0, len(s.FallbackClients)+1)
	if s.PrimaryID != "" {
		ids = append(ids, s.PrimaryID)
	}
	for id := range s.FallbackClients {
		if id != s.PrimaryID {
			ids = append(ids, id)
		}
	}
	return ids
}

// ConnectionConflictError is the error form of a denied claim, for call
// sites that propagate the denial as an error rather than a decision
// value. It is a redirect, not a failure; the fallback address is always
// populated.
type ConnectionConflictError struct {
	RequesterID     string
	PrimaryID       string
	Reason          DenialReason
	FallbackAddress string
}

func (e *ConnectionConflictError) Error() string {
	return fmt.Sprintf("low-latency channel held by %s; use fallback %s (%s)", e.PrimaryID, e.FallbackAddress, e.Reason)
}
