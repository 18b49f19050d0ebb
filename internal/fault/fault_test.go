package fault

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigError(t *testing.T) {
	err := errors.Wrap(NewConfigError("vectorizer", "word2vec"), "selecting pipeline")
	test.That(t, IsConfig(err), test.ShouldBeTrue)
	test.That(t, IsTraining(err), test.ShouldBeFalse)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unrecognized vectorizer "word2vec"`)
}

func TestTrainingErrorWrapsOnce(t *testing.T) {
	cause := errors.New("only one class present")
	err := NewTrainingError("classifier", cause)
	test.That(t, IsTraining(err), test.ShouldBeTrue)
	test.That(t, errors.Is(err, cause), test.ShouldBeTrue)

	again := NewTrainingError("vectorizer", err)
	var te *TrainingError
	test.That(t, errors.As(again, &te), test.ShouldBeTrue)
	test.That(t, te.Stage, test.ShouldEqual, "classifier")
}
