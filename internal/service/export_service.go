package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"pocket-mini-server/internal/domain"
)

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// Export renders notes, score and count as indented JSON. Notes keep their
// stored order and round is left out.
func (s *ExportService) Export(state domain.State) ([]byte, error) {
	notes := state.Notes
	if notes == nil {
		notes = []domain.Note{}
	}

	doc := domain.ExportDocument{
		Notes: notes,
		Score: state.Score,
		Count: state.Count,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Parse reads a document produced by Export.
func (s *ExportService) Parse(data []byte) (*domain.ExportDocument, error) {
	var doc domain.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	if doc.Notes == nil {
		doc.Notes = []domain.Note{}
	}
	return &doc, nil
}
