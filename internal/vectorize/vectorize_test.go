package vectorize

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"truthai/internal/fault"
)

func TestTokenize(t *testing.T) {
	test.That(t, Tokenize("BREAKING-exclusive: Ｕnverified claims, a 2024 report!"), test.ShouldResemble,
		[]string{"breaking", "exclusive", "unverified", "claims", "2024", "report"})
	test.That(t, Tokenize("   "), test.ShouldBeEmpty)
	test.That(t, Tokenize("snake_case x"), test.ShouldResemble, []string{"snake_case"})
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"TF-IDF":       TFIDF,
		" tfidf ":      TFIDF,
		"Bag of Words": Count,
		"count":        Count,
	} {
		got, err := ParseKind(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}

	_, err := ParseKind("word2vec")
	test.That(t, fault.IsConfig(err), test.ShouldBeTrue)

	_, err = New(Kind("word2vec"))
	test.That(t, fault.IsConfig(err), test.ShouldBeTrue)
}

var docs = []string{
	"The council approved the city budget",
	"The mayor opened a new library",
	"Council members debated the library budget",
	"Aliens secretly control the council",
}

func TestCountVectorizer(t *testing.T) {
	cv := NewCountVectorizer()
	_, err := cv.Transform("anything")
	test.That(t, errors.Is(err, fault.ErrNotFitted), test.ShouldBeTrue)

	test.That(t, cv.Fit(docs), test.ShouldBeNil)
	// "council" is in 3 of 4 documents, above the 0.7 cut-off; "the" is a stop word.
	test.That(t, cv.Terms(), test.ShouldNotContain, "council")
	test.That(t, cv.Terms(), test.ShouldNotContain, "the")
	test.That(t, cv.Terms(), test.ShouldContain, "budget")

	v, err := cv.Transform("Budget budget LIBRARY unicorns")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Dim, test.ShouldEqual, cv.Dim())
	test.That(t, v.NNZ(), test.ShouldEqual, 2)
	dense := v.Dense()
	test.That(t, dense[indexOf(cv.Terms(), "budget")], test.ShouldEqual, 2.0)
	test.That(t, dense[indexOf(cv.Terms(), "library")], test.ShouldEqual, 1.0)

	empty, err := cv.Transform("unicorns only")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, empty.NNZ(), test.ShouldEqual, 0)

	test.That(t, cv.Fit(docs), test.ShouldNotBeNil)
}

func TestCountVectorizerFitErrors(t *testing.T) {
	test.That(t, NewCountVectorizer().Fit(nil), test.ShouldNotBeNil)
	err := NewCountVectorizer().Fit([]string{"the and of", "to be or not"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "empty vocabulary")
}

func TestTfidfVectorizer(t *testing.T) {
	tv := NewTfidfVectorizer()
	test.That(t, tv.Kind(), test.ShouldEqual, TFIDF)
	test.That(t, tv.Fit(docs), test.ShouldBeNil)

	idf := tv.IDF()
	terms := tv.Terms()
	// budget: df 2 of 4; aliens: df 1 of 4.
	test.That(t, idf[indexOf(terms, "budget")], test.ShouldAlmostEqual, math.Log(5.0/3.0)+1)
	test.That(t, idf[indexOf(terms, "aliens")], test.ShouldAlmostEqual, math.Log(5.0/2.0)+1)

	v, err := tv.Transform("budget aliens aliens")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Norm(), test.ShouldAlmostEqual, 1.0)
	dense := v.Dense()
	test.That(t, dense[indexOf(terms, "aliens")], test.ShouldBeGreaterThan, dense[indexOf(terms, "budget")])

	again, err := tv.Transform("budget aliens aliens")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, v)
}

func TestNew(t *testing.T) {
	for _, k := range Kinds {
		v, err := New(k)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v.Kind(), test.ShouldEqual, k)
		test.That(t, v.Dim(), test.ShouldEqual, 0)
	}
}

func indexOf(terms []string, term string) int {
	for i, t := range terms {
		if t == term {
			return i
		}
	}
	return -1
}
