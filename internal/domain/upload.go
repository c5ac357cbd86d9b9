package domain

import "encoding/json"

type UploadedFile struct {
	Name      string
	Extension string
	Size      int64
	Content   []byte
}

type ContentKind string

const (
	ContentCSV  ContentKind = "csv"
	ContentJSON ContentKind = "json"
	ContentText ContentKind = "txt"
	ContentNone ContentKind = "none"
)

type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// UploadPreview is what an upload reports back. JSON holds the encoded value
// of a json upload, so a literal null is still present.
type UploadPreview struct {
	Filename  string          `json:"filename"`
	ByteSize  int64           `json:"byte_size"`
	Kind      ContentKind     `json:"kind"`
	Table     *Table          `json:"table,omitempty"`
	JSON      json.RawMessage `json:"json,omitempty"`
	Text      *string         `json:"text,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
}
