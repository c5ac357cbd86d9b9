package domain

// Note is a short text snippet. ID is the creation time in fractional unix
// seconds and is unique within a session.
type Note struct {
	ID   float64 `json:"id"`
	Text string  `json:"text"`
}

type AddNoteRequest struct {
	Text string `json:"text"`
}

type SaveUploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}
