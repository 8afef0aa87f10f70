package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ImportRecordDTO struct {
	Title          string `json:"title,omitempty"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	StructureLevel string `json:"structure_level,omitempty"`
	KeypadID       int    `json:"keypad_id"`
	SeatLabel      string `json:"seat_label"`
}

type ImportRequest struct {
	Records []ImportRecordDTO `json:"records"`
}

type ValidationItem struct {
	Record ImportRecordDTO `json:"record"`
	Errors []string        `json:"errors,omitempty"`
}

type ValidateResponse struct {
	Items []ValidationItem `json:"items"`
	Valid int              `json:"valid"`
}

type CommitItem struct {
	KeypadID int    `json:"keypad_id"`
	Created  bool   `json:"created"`
	Message  string `json:"message,omitempty"`
}

type CommitResponse struct {
	BatchID string       `json:"batch_id,omitempty"`
	Items   []CommitItem `json:"items"`
	Created int          `json:"created"`
}
