package ports

import (
	"context"
	"strings"
	"time"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
)

// DeviceStartParams carries the mode-dependent start arguments of the
// polling hardware protocol. Target is the poll id (or agenda item id for
// speaker-list sessions) and is empty for test sessions. MaxSelectable is
// used by multi-candidate election starts only.
type DeviceStartParams struct {
	Target        string
	Method        entities.PollMethod
	MaxSelectable int
}

// DeviceRawResult is the mode-dependent result payload of the hardware:
// a three-integer tuple for yes/no/abstain polls, a candidate-keyed
// mapping for elections.
type DeviceRawResult struct {
	Yes            int
	No             int
	Abstain        int
	CandidateVotes map[string]int
}

// DeviceLink is the request/response adapter to the external polling
// hardware. Calls are single-shot with a bounded timeout; retry policy
// belongs to the caller.
type DeviceLink interface {
	CheckDevice(ctx context.Context) (entities.DeviceStatus, error)
	StartSession(ctx context.Context, mode entities.SessionMode, params DeviceStartParams) error
	StopSession(ctx context.Context) error
	PollResult(ctx context.Context, method entities.PollMethod, target string) (DeviceRawResult, error)
}

type KeypadRecord struct {
	KeypadID      int
	ParticipantID string
	SeatID        string
}

type SeatRecord struct {
	SeatID string
	Label  string
}

type ParticipantRecord struct {
	ParticipantID  string
	Title          string
	FirstName      string
	LastName       string
	StructureLevel string
}

func (p ParticipantRecord) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Directory is the read path into the externally owned keypad/seat/
// participant roster. Absent records are reported via the bool, not an
// error. Lookups are per reconciliation pass; results must not be cached
// across passes.
type Directory interface {
	GetKeypad(ctx context.Context, keypadID int) (KeypadRecord, bool, error)
	GetSeat(ctx context.Context, seatID string) (SeatRecord, bool, error)
	GetParticipant(ctx context.Context, participantID string) (ParticipantRecord, bool, error)
}

// KeypadPresence records keypad reachability reported by the hardware.
// ResetPresence marks every keypad out of range with unknown battery; a
// test session start does this before the hardware pings each keypad.
type KeypadPresence interface {
	ResetPresence(ctx context.Context) error
	MarkSeen(ctx context.Context, keypadID int, batteryLevel int) error
}

// VoteRepository stores the per-keypad vote records. SaveRecord upserts
// by (target, keypad); ListRecordsByTarget returns records in serial
// order. AnonymizeRecordsByTarget strips the participant/keypad linkage
// while preserving serial numbers and values.
type VoteRepository interface {
	SaveRecord(ctx context.Context, record entities.VoteRecord) error
	GetRecordByKeypad(ctx context.Context, target string, keypadID int) (entities.VoteRecord, bool, error)
	ListRecordsByTarget(ctx context.Context, target string) ([]entities.VoteRecord, error)
	DeleteRecordsByTarget(ctx context.Context, target string) error
	AnonymizeRecordsByTarget(ctx context.Context, target string) error
}

// SpeakerRoster receives add/remove requests cast from keypads during a
// speaker-list session. AddSpeaker is a no-op when the participant is
// already queued for the item.
type SpeakerRoster interface {
	AddSpeaker(ctx context.Context, itemID string, participantID string) error
	RemoveSpeaker(ctx context.Context, itemID string, participantID string) error
}

// ResultJournal is the append-only audit log of finalized aggregates.
// Nil journals are treated as no-op by the application layer.
type ResultJournal interface {
	AppendResult(ctx context.Context, result entities.AggregateResult) error
}

// StatusPublisher pushes session snapshots to host displays. Nil
// publishers are treated as no-op.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, session entities.VotingSession) error
}

type Clock interface {
	Now() time.Time
}
