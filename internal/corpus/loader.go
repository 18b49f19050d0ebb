package corpus

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Table is the raw header-bearing form produced by every Source.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one raw record. Err is set when the source could not split the
// record into the expected fields.
type Row struct {
	Line   int
	Fields []string
	Err    error
}

// A Source produces the raw table of a corpus.
type Source interface {
	Name() string
	Table(ctx context.Context) (*Table, error)
}

// Loader turns a Source into a Corpus using an explicit column and label mapping.
type Loader struct {
	Columns Columns
	Mapping LabelMapping
}

// NewLoader returns a Loader using the default columns and label mapping.
func NewLoader() *Loader {
	return &Loader{Columns: DefaultColumns, Mapping: DefaultLabelMapping}
}

// Load reads src once and returns its documents with normalized labels.
// Any missing column or unparseable row yields a *LoadError.
func (l *Loader) Load(ctx context.Context, src Source) (*Corpus, error) {
	table, err := src.Table(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	textIdx, labelIdx, err := l.columnIndexes(table.Header)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	var (
		docs    []Document
		rowErrs error
	)
	for _, row := range table.Rows {
		doc, err := l.parseRow(row, textIdx, labelIdx)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if rowErrs != nil {
		return nil, &LoadError{Source: src.Name(), Err: rowErrs}
	}
	if len(docs) == 0 {
		return nil, &LoadError{Source: src.Name(), Err: errors.New("corpus has no documents")}
	}
	return &Corpus{Documents: docs}, nil
}

func (l *Loader) columnIndexes(header []string) (textIdx, labelIdx int, err error) {
	textIdx, labelIdx = -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, l.Columns.Text):
			textIdx = i
		case strings.EqualFold(name, l.Columns.Label):
			labelIdx = i
		}
	}
	if textIdx < 0 {
		err = multierr.Append(err, errors.Errorf("missing required column %q", l.Columns.Text))
	}
	if labelIdx < 0 {
		err = multierr.Append(err, errors.Errorf("missing required column %q", l.Columns.Label))
	}
	return textIdx, labelIdx, err
}

func (l *Loader) parseRow(row Row, textIdx, labelIdx int) (Document, error) {
	if row.Err != nil {
		return Document{}, &RowError{Line: row.Line, Reason: row.Err.Error()}
	}
	if textIdx >= len(row.Fields) || labelIdx >= len(row.Fields) {
		return Document{}, &RowError{Line: row.Line, Reason: "too few fields"}
	}
	text := row.Fields[textIdx]
	if strings.TrimSpace(text) == "" {
		return Document{}, &RowError{Line: row.Line, Reason: "missing text"}
	}
	label, err := l.Mapping.Parse(row.Fields[labelIdx])
	if err != nil {
		return Document{}, &RowError{Line: row.Line, Reason: err.Error()}
	}
	return Document{Text: text, Label: label}, nil
}

// CSVSource reads a delimited file with a header line.
type CSVSource struct {
	Path string
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// Name returns the file path.
func (s *CSVSource) Name() string {
	return s.Path
}

// Table reads the whole file.
func (s *CSVSource) Table(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening corpus file")
	}
	defer f.Close()
	return readTable(ctx, f, s.Comma)
}

// ReaderSource reads delimited rows from an arbitrary reader.
type ReaderSource struct {
	Origin string
	Reader io.Reader
	Comma  rune
}

// Name returns the source origin.
func (s *ReaderSource) Name() string {
	if s.Origin == "" {
		return "reader"
	}
	return s.Origin
}

// Table reads all rows from the reader.
func (s *ReaderSource) Table(ctx context.Context) (*Table, error) {
	return readTable(ctx, s.Reader, s.Comma)
}

func readTable(ctx context.Context, r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	if comma != 0 {
		reader.Comma = comma
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("corpus source is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	table := &Table{Header: header}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
				table.Rows = append(table.Rows, Row{
					Line: pe.StartLine,
					Err:  errors.Errorf("expected %d fields, got %d", len(header), len(rec)),
				})
				continue
			}
			return nil, errors.Wrap(err, "reading corpus rows")
		}
		line, _ := reader.FieldPos(0)
		table.Rows = append(table.Rows, Row{Line: line, Fields: rec})
	}
	return table, nil
}
