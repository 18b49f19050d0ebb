package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func loadString(t *testing.T, l *Loader, data string, comma rune) (*Corpus, error) {
	t.Helper()
	return l.Load(context.Background(), &ReaderSource{Origin: "inline", Reader: strings.NewReader(data), Comma: comma})
}

func TestLoadNormalizesLabels(t *testing.T) {
	data := `id,title,text,label
1,First,"Officials confirmed the budget on Monday.",REAL
2,Second,"SHOCKING: aliens run the senate,
sources say.",FAKE
3,Third,lowercase label works,fake
4,Fourth,numeric labels work too,0
`
	c, err := loadString(t, NewLoader(), data, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Len(), test.ShouldEqual, 4)
	test.That(t, c.Labels(), test.ShouldResemble, []int{0, 1, 1, 0})
	test.That(t, c.Documents[1].Text, test.ShouldContainSubstring, "\nsources say.")

	real, fake := c.Counts()
	test.That(t, real, test.ShouldEqual, 2)
	test.That(t, fake, test.ShouldEqual, 2)
}

func TestLoadHeaderMatching(t *testing.T) {
	data := " Text ;LABEL\nsome words;REAL\nother words;FAKE\n"
	c, err := loadString(t, NewLoader(), data, ';')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Texts(), test.ShouldResemble, []string{"some words", "other words"})

	l := &Loader{
		Columns: Columns{Text: "body", Label: "verdict"},
		Mapping: LabelMapping{Real: []string{"true"}, Fake: []string{"false"}},
	}
	c, err = loadString(t, l, "verdict,body\ntrue,a\nfalse,b\n", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Labels(), test.ShouldResemble, []int{0, 1})
}

func TestLoadMissingLabelColumn(t *testing.T) {
	_, err := loadString(t, NewLoader(), "title,text\nA,some text\n", 0)
	test.That(t, err, test.ShouldNotBeNil)

	var le *LoadError
	test.That(t, errors.As(err, &le), test.ShouldBeTrue)
	test.That(t, le.Source, test.ShouldEqual, "inline")
	test.That(t, err.Error(), test.ShouldContainSubstring, `missing required column "label"`)
	test.That(t, err.Error(), test.ShouldNotContainSubstring, `"text"`)
}

func TestLoadCollectsRowErrors(t *testing.T) {
	data := `text,label
good row,REAL
bad label,MAYBE
too,many,fields
,FAKE
another good row,FAKE
`
	_, err := loadString(t, NewLoader(), data, 0)
	var le *LoadError
	test.That(t, errors.As(err, &le), test.ShouldBeTrue)

	rows := le.RowErrors()
	test.That(t, rows, test.ShouldHaveLength, 3)
	test.That(t, rows[0].Line, test.ShouldEqual, 3)
	test.That(t, rows[0].Reason, test.ShouldContainSubstring, `unrecognized label "MAYBE"`)
	test.That(t, rows[1].Line, test.ShouldEqual, 4)
	test.That(t, rows[1].Reason, test.ShouldContainSubstring, "expected 2 fields, got 3")
	test.That(t, rows[2].Reason, test.ShouldEqual, "missing text")
	test.That(t, err.Error(), test.ShouldContainSubstring, "3 errors")
}

func TestLoadEmptySources(t *testing.T) {
	_, err := loadString(t, NewLoader(), "", 0)
	var le *LoadError
	test.That(t, errors.As(err, &le), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "empty")

	_, err = loadString(t, NewLoader(), "text,label\n", 0)
	test.That(t, errors.As(err, &le), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no documents")
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.tsv")
	test.That(t, os.WriteFile(path, []byte("text\tlabel\nhello there\tREAL\n"), 0o644), test.ShouldBeNil)

	c, err := NewLoader().Load(context.Background(), &CSVSource{Path: path, Comma: '\t'})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Documents, test.ShouldResemble, []Document{{Text: "hello there", Label: Real}})

	_, err = NewLoader().Load(context.Background(), &CSVSource{Path: filepath.Join(dir, "missing.csv")})
	var le *LoadError
	test.That(t, errors.As(err, &le), test.ShouldBeTrue)
	test.That(t, le.Source, test.ShouldEndWith, "missing.csv")
}

func TestLabelMappingFormat(t *testing.T) {
	test.That(t, DefaultLabelMapping.Format(Real), test.ShouldEqual, "REAL")
	test.That(t, DefaultLabelMapping.Format(Fake), test.ShouldEqual, "FAKE")
	test.That(t, LabelMapping{}.Format(Fake), test.ShouldEqual, "Fake")
	test.That(t, Fake.String(), test.ShouldEqual, "Fake")
	test.That(t, Label(3).Valid(), test.ShouldBeFalse)
}

func TestSplit(t *testing.T) {
	c := &Corpus{}
	for i := 0; i < 10; i++ {
		c.Documents = append(c.Documents, Document{Text: strings.Repeat("x", i+1), Label: Label(i % 2)})
	}
	train, holdout := Split(c, 0.8, 7)
	test.That(t, train.Len(), test.ShouldEqual, 8)
	test.That(t, holdout.Len(), test.ShouldEqual, 2)

	train2, holdout2 := Split(c, 0.8, 7)
	test.That(t, train2.Documents, test.ShouldResemble, train.Documents)
	test.That(t, holdout2.Documents, test.ShouldResemble, holdout.Documents)
	test.That(t, c.Documents[0].Text, test.ShouldEqual, "x")
}
