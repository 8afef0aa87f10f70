package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StartSessionRequest struct {
	Mode          string   `json:"mode"`
	Target        string   `json:"target,omitempty"`
	VotersCount   int      `json:"voters_count,omitempty"`
	Method        string   `json:"method,omitempty"`
	CandidateIDs  []string `json:"candidate_ids,omitempty"`
	MaxSelectable int      `json:"max_selectable,omitempty"`
}

type SessionStatusResponse struct {
	Mode          string `json:"mode"`
	Target        string `json:"target,omitempty"`
	VotersCount   int    `json:"voters_count"`
	VotesReceived int    `json:"votes_received"`
	StartedAt     string `json:"started_at,omitempty"`
}

type DeviceStatusResponse struct {
	Connected bool   `json:"connected"`
	Device    string `json:"device"`
}

type VoteRecordItem struct {
	KeypadID        int    `json:"keypad_id"`
	SerialNumber    int    `json:"serial_number"`
	Value           string `json:"value"`
	CandidateID     string `json:"candidate_id,omitempty"`
	ParticipantID   string `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	SeatLabel       string `json:"seat_label,omitempty"`
	Anonymized      bool   `json:"anonymized,omitempty"`
}

type LiveViewResponse struct {
	Target string           `json:"target"`
	Items  []VoteRecordItem `json:"items"`
}

type ResultResponse struct {
	Target         string         `json:"target"`
	Method         string         `json:"method"`
	Yes            int            `json:"yes"`
	No             int            `json:"no"`
	Abstain        int            `json:"abstain"`
	CandidateVotes map[string]int `json:"candidate_votes,omitempty"`
	ValidVotes     int            `json:"valid_votes"`
	InvalidVotes   int            `json:"invalid_votes"`
	CastVotes      int            `json:"cast_votes"`
}

type VoteCallbackRequest struct {
	Value        string `json:"value"`
	BatteryLevel int    `json:"battery_level,omitempty"`
}

type CandidateCallbackRequest struct {
	Key          int    `json:"key"`
	BatteryLevel int    `json:"battery_level,omitempty"`
}

type SpeakerCallbackRequest struct {
	Value        string `json:"value"`
	BatteryLevel int    `json:"battery_level,omitempty"`
}

type KeypadCallbackRequest struct {
	BatteryLevel int `json:"battery_level,omitempty"`
}
