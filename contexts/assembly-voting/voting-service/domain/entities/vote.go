package entities

import "time"

// VoteRecord is one entry per keypad per session target. A later vote by
// the same keypad replaces the record (last vote wins) and takes the
// newest arrival serial number.
type VoteRecord struct {
	Target          string
	KeypadID        int
	SerialNumber    int
	Value           string
	CandidateID     string
	ParticipantID   string
	ParticipantName string
	SeatLabel       string
	Anonymized      bool
	ReceivedAt      time.Time
}

// AggregateResult is the finalized tally for one target. Yes/No/Abstain
// are populated for MethodYesNoAbstain, CandidateVotes for
// MethodMultiCandidate. ValidVotes + InvalidVotes == CastVotes.
type AggregateResult struct {
	Target         string
	Method         PollMethod
	Yes            int
	No             int
	Abstain        int
	CandidateVotes map[string]int
	ValidVotes     int
	InvalidVotes   int
	CastVotes      int
}

type DeviceStatus struct {
	Connected  bool
	DeviceName string
}
