package entities

import "time"

type SessionMode string

const (
	ModeIdle           SessionMode = "idle"
	ModeTest           SessionMode = "test"
	ModeSpeakerList    SessionMode = "speaker_list"
	ModeMotionPoll     SessionMode = "motion_poll"
	ModeAssignmentPoll SessionMode = "assignment_poll"
)

// IsPoll reports whether the mode produces vote records that are
// aggregated into a result on finalize.
func (m SessionMode) IsPoll() bool {
	return m == ModeMotionPoll || m == ModeAssignmentPoll
}

type PollMethod string

const (
	MethodYesNoAbstain   PollMethod = "yes_no_abstain"
	MethodMultiCandidate PollMethod = "multi_candidate"
)

// PollKind is decided once at session start and carried through to finalize.
// CandidateIDs is populated for MethodMultiCandidate only, in ballot-key
// order: keypad digit 1 selects CandidateIDs[0], digit 2 CandidateIDs[1],
// and so on. Digit 0 is abstain.
type PollKind struct {
	Method        PollMethod
	CandidateIDs  []string
	MaxSelectable int
}

// VotingSession is the single mutable session owned by the coordinator.
// VotersCount is snapshotted at start; VotesReceived counts distinct
// keypads with a record in the current session.
type VotingSession struct {
	Mode          SessionMode
	Target        string
	Kind          PollKind
	VotersCount   int
	VotesReceived int
	StartedAt     time.Time
}

func (s VotingSession) Active() bool {
	return s.Mode != "" && s.Mode != ModeIdle
}

// Raw keypad vote values as sent by the polling hardware.
const (
	VoteYes     = "Y"
	VoteNo      = "N"
	VoteAbstain = "A"
)
