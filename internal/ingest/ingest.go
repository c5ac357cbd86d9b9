// Package ingest turns uploaded files into previews. Content is dispatched on
// the file extension alone; parse failures are reported on the preview and
// never returned to the caller.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"pocket-mini-server/internal/domain"

	"github.com/sirupsen/logrus"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errEmptyCSV = errors.New("no columns to parse from file")

// Content is the parsed form of an upload. At most one of Table, JSON and
// Text is set, matching Kind.
type Content struct {
	Kind  domain.ContentKind
	Table *domain.Table
	JSON  interface{}
	Text  *string
}

type Ingestor struct {
	accepted map[string]bool
	log      *logrus.Entry
}

func New(logger *logrus.Entry) *Ingestor {
	return &Ingestor{
		accepted: map[string]bool{
			string(domain.ContentCSV):  true,
			string(domain.ContentJSON): true,
			string(domain.ContentText): true,
		},
		log: logger,
	}
}

// Extension returns the lowercased text after the last dot. A name without a
// dot is returned whole, lowercased.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// NewFile builds an UploadedFile from a name and its bytes.
func NewFile(name string, content []byte) *domain.UploadedFile {
	return &domain.UploadedFile{
		Name:      name,
		Extension: Extension(name),
		Size:      int64(len(content)),
		Content:   content,
	}
}

// Accepts reports whether ext has a content parser.
func (i *Ingestor) Accepts(ext string) bool {
	return i.accepted[strings.ToLower(ext)]
}

// Parse dispatches on the extension. Unknown extensions yield ContentNone and
// no error. Failures are *ParseError or *DecodeError.
func (i *Ingestor) Parse(file *domain.UploadedFile) (*Content, error) {
	ext := Extension(file.Name)
	if !i.Accepts(ext) {
		return &Content{Kind: domain.ContentNone}, nil
	}

	switch domain.ContentKind(ext) {
	case domain.ContentCSV:
		table, err := parseCSV(file.Content)
		if err != nil {
			return nil, err
		}
		return &Content{Kind: domain.ContentCSV, Table: table}, nil

	case domain.ContentJSON:
		value, err := parseJSON(file.Content)
		if err != nil {
			return nil, err
		}
		return &Content{Kind: domain.ContentJSON, JSON: value}, nil

	case domain.ContentText:
		text, err := decodeText(file.Content)
		if err != nil {
			return nil, err
		}
		return &Content{Kind: domain.ContentText, Text: &text}, nil
	}

	return &Content{Kind: domain.ContentNone}, nil
}

// Ingest parses file and always returns a preview carrying its name and size.
func (i *Ingestor) Ingest(file *domain.UploadedFile) *domain.UploadPreview {
	preview := &domain.UploadPreview{
		Filename: file.Name,
		ByteSize: file.Size,
		Kind:     domain.ContentNone,
	}

	entry := i.log.WithFields(logrus.Fields{
		"filename":  file.Name,
		"byte_size": file.Size,
	})

	content, err := i.Parse(file)
	var raw json.RawMessage
	if err == nil && content.Kind == domain.ContentJSON {
		if raw, err = json.Marshal(content.JSON); err != nil {
			err = &ParseError{Format: "json", Err: err}
		}
	}
	if err != nil {
		preview.Error = fmt.Sprintf("Error processing file: %v", err)
		preview.ErrorKind = classify(err)
		entry.WithError(err).Warn("upload could not be parsed")
		return preview
	}

	preview.Kind = content.Kind
	preview.Table = content.Table
	preview.JSON = raw
	preview.Text = content.Text

	entry.WithField("kind", content.Kind).Debug("upload parsed")
	return preview
}

func classify(err error) string {
	var parseErr *ParseError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &parseErr):
		return KindParseError
	case errors.As(err, &decodeErr):
		return KindDecodeError
	default:
		return ""
	}
}

// parseCSV reads the first record as the header. Every row must have as many
// fields as the header.
func parseCSV(content []byte) (*domain.Table, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = 0

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: "csv", Err: errEmptyCSV}
	}

	return &domain.Table{
		Header: records[0],
		Rows:   append([][]string{}, records[1:]...),
	}, nil
}

// parseJSON accepts exactly one JSON value. Numbers keep their literal form.
func parseJSON(content []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ParseError{Format: "json", Err: err}
	}

	var extra interface{}
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: "json", Err: errors.New("extra data after JSON value")}
	}

	return value, nil
}

func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}

	offset := 0
	for offset < len(content) {
		r, size := utf8.DecodeRune(content[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return "", &DecodeError{Offset: offset, Err: errors.New("invalid byte sequence")}
}
