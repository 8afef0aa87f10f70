package ports

import (
	"context"
	"strings"
	"time"
)

// ImportRecord is one row of a bulk keypad import in its fixed shape.
type ImportRecord struct {
	Title          string
	FirstName      string
	LastName       string
	StructureLevel string
	KeypadID       int
	SeatLabel      string
}

type Participant struct {
	ParticipantID  string
	Title          string
	FirstName      string
	LastName       string
	StructureLevel string
}

func (p Participant) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

type Seat struct {
	SeatID string
	Label  string
}

type Keypad struct {
	KeypadID      int
	ParticipantID string
	SeatID        string
}

// DirectorySnapshot is the directory state a validation pass runs against.
// It is taken once per pass; staleness against concurrent directory edits
// is accepted and caught again at commit time.
type DirectorySnapshot struct {
	Participants []Participant
	Seats        []Seat
	Keypads      []Keypad
}

type DirectoryReader interface {
	Snapshot(ctx context.Context) (DirectorySnapshot, error)
}

// DirectoryWriter creates keypads in the externally owned directory. A
// rejection comes back as one of the domain errors or the directory's own
// error message.
type DirectoryWriter interface {
	CreateKeypad(ctx context.Context, keypad Keypad) error
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type Clock interface {
	Now() time.Time
}
