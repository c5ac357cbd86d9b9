package domain

const (
	ExportFileName = "pocket-data.json"
	ExportMIMEType = "application/json"
)

// ExportDocument is the downloadable snapshot. Field order is part of the
// format. Round is not exported.
type ExportDocument struct {
	Notes []Note `json:"notes"`
	Score int    `json:"score"`
	Count int    `json:"count"`
}
