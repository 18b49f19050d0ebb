package corpus

import (
	"strings"

	"github.com/pkg/errors"
)

// Columns names the header fields holding the text and the label.
type Columns struct {
	Text  string
	Label string
}

// DefaultColumns matches the fake_or_real_news.csv header.
var DefaultColumns = Columns{Text: "text", Label: "label"}

// LabelMapping is the fixed contract between raw label values in a source and
// the binary labels. Matching is case-insensitive. The first entry of each
// list is the canonical value written back by the indexer.
type LabelMapping struct {
	Real []string
	Fake []string
}

// DefaultLabelMapping maps REAL/0 to Real and FAKE/1 to Fake.
var DefaultLabelMapping = LabelMapping{
	Real: []string{"REAL", "0"},
	Fake: []string{"FAKE", "1"},
}

// Parse converts a raw label value to a Label.
func (m LabelMapping) Parse(raw string) (Label, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errors.New("missing label")
	}
	for _, r := range m.Real {
		if strings.EqualFold(v, r) {
			return Real, nil
		}
	}
	for _, f := range m.Fake {
		if strings.EqualFold(v, f) {
			return Fake, nil
		}
	}
	return 0, errors.Errorf("unrecognized label %q", raw)
}

// Format returns the canonical raw value for l.
func (m LabelMapping) Format(l Label) string {
	values := m.Real
	if l == Fake {
		values = m.Fake
	}
	if len(values) == 0 {
		return l.String()
	}
	return values[0]
}
