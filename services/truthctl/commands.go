package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"truthai/internal/analysis"
	"truthai/internal/classify"
	"truthai/internal/corpus"
	"truthai/internal/logging"
	"truthai/internal/pipeline"
	"truthai/internal/vectorize"
)

const (
	flagCorpus       = "corpus"
	flagDelimiter    = "delimiter"
	flagTextColumn   = "text-column"
	flagLabelColumn  = "label-column"
	flagVectorizer   = "vectorizer"
	flagClassifier   = "classifier"
	flagRatio        = "holdout"
	flagSeed         = "seed"
	flagDebug        = "debug"
	flagAPIKey       = "api-key"
	flagModel        = "model"
	flagEndpoint     = "endpoint"
	flagTimeout      = "timeout"
	flagMLPrediction = "ml-prediction"
	flagCheck        = "check"
	flagListModels   = "list-models"
)

func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagCorpus,
			Aliases: []string{"c"},
			Value:   "fake_or_real_news.csv",
			EnvVars: []string{"CORPUS_PATH"},
			Usage:   "labeled corpus `FILE`",
		},
		&cli.StringFlag{
			Name:    flagDelimiter,
			Value:   ",",
			EnvVars: []string{"CORPUS_DELIMITER"},
			Usage:   "field delimiter (use \\t for tabs)",
		},
		&cli.StringFlag{Name: flagTextColumn, Value: corpus.DefaultColumns.Text, Usage: "header of the text column"},
		&cli.StringFlag{Name: flagLabelColumn, Value: corpus.DefaultColumns.Label, Usage: "header of the label column"},
	}
}

func newApp() *cli.App {
	var logger *zap.SugaredLogger

	selection := []cli.Flag{
		&cli.StringFlag{Name: flagVectorizer, Aliases: []string{"v"}, Value: string(vectorize.TFIDF), Usage: "count or tfidf"},
		&cli.StringFlag{Name: flagClassifier, Aliases: []string{"m"}, Value: string(classify.LinearSVM), Usage: "linear-svm or naive-bayes"},
	}

	return &cli.App{
		Name:  "truthctl",
		Usage: "train and run the fake news classifiers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool(flagDebug) {
				logger = zap.NewNop().Sugar()
				return nil
			}
			var err error
			logger, err = logging.New("truthctl", "debug")
			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "predict",
				Usage:     "classify a text as real or fake",
				ArgsUsage: "TEXT",
				Flags:     append(corpusFlags(), selection...),
				Action: func(c *cli.Context) error {
					return predictAction(c, logger)
				},
			},
			{
				Name:  "evaluate",
				Usage: "score pipelines on a held-out split of the corpus",
				Flags: append(corpusFlags(),
					&cli.StringFlag{Name: flagVectorizer, Aliases: []string{"v"}, Usage: "only this vectorizer"},
					&cli.StringFlag{Name: flagClassifier, Aliases: []string{"m"}, Usage: "only this classifier"},
					&cli.Float64Flag{Name: flagRatio, Value: 0.2, Usage: "fraction of documents held out"},
					&cli.Int64Flag{Name: flagSeed, Value: 7, Usage: "shuffle seed"},
				),
				Action: func(c *cli.Context) error {
					return evaluateAction(c, logger)
				},
			},
			{
				Name:  "models",
				Usage: "list the supported vectorizers and classifiers",
				Action: func(c *cli.Context) error {
					for _, key := range pipeline.AllKeys() {
						fmt.Fprintln(c.App.Writer, key)
					}
					return nil
				},
			},
			{
				Name:      "analyze",
				Usage:     "ask the hosted language model for a secondary analysis",
				ArgsUsage: "TEXT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagAPIKey, EnvVars: []string{"GEMINI_API_KEY"}, Usage: "model API key"},
					&cli.StringFlag{Name: flagModel, Value: "gemini-2.0-flash", EnvVars: []string{"GEMINI_MODEL"}},
					&cli.StringFlag{Name: flagEndpoint, EnvVars: []string{"GEMINI_ENDPOINT"}},
					&cli.DurationFlag{Name: flagTimeout, Value: 30 * time.Second},
					&cli.StringFlag{Name: flagMLPrediction, Usage: "classifier verdict passed as context (REAL or FAKE)"},
					&cli.BoolFlag{Name: flagCheck, Usage: "only test the connection to the model"},
					&cli.BoolFlag{Name: flagListModels, Usage: "only list the models supporting generateContent"},
				},
				Action: func(c *cli.Context) error {
					return analyzeAction(c, logger)
				},
			},
		},
	}
}

func loadCorpus(c *cli.Context) (*corpus.Corpus, error) {
	delim := c.String(flagDelimiter)
	if delim == `\t` {
		delim = "\t"
	}
	if utf8.RuneCountInString(delim) != 1 {
		return nil, errors.Errorf("delimiter must be a single character, got %q", delim)
	}
	comma, _ := utf8.DecodeRuneInString(delim)

	loader := &corpus.Loader{
		Columns: corpus.Columns{Text: c.String(flagTextColumn), Label: c.String(flagLabelColumn)},
		Mapping: corpus.DefaultLabelMapping,
	}
	return loader.Load(c.Context, &corpus.CSVSource{Path: c.String(flagCorpus), Comma: comma})
}

func textArg(c *cli.Context) (string, error) {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("missing TEXT argument")
	}
	return text, nil
}

func predictAction(c *cli.Context, logger *zap.SugaredLogger) error {
	text, err := textArg(c)
	if err != nil {
		return err
	}
	corp, err := loadCorpus(c)
	if err != nil {
		return err
	}
	svc := pipeline.NewService(corp, pipeline.NewCache(pipeline.Options{Logger: logger}), logger)
	res, err := svc.Predict(c.Context, c.String(flagVectorizer), c.String(flagClassifier), text)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\t%d\t%.4f\t%s\n", res.Category(), res.Label, res.Confidence, res.Key)
	return nil
}

func evaluateAction(c *cli.Context, logger *zap.SugaredLogger) error {
	corp, err := loadCorpus(c)
	if err != nil {
		return err
	}
	keys, err := selectedKeys(c.String(flagVectorizer), c.String(flagClassifier))
	if err != nil {
		return err
	}
	train, holdout := corpus.Split(corp, 1-c.Float64(flagRatio), c.Int64(flagSeed))
	logger.Debugw("split corpus", "train", train.Len(), "holdout", holdout.Len())

	w := c.App.Writer
	fmt.Fprintln(w, "pipeline\taccuracy\tprecision\trecall\tf1\tmean_confidence")
	for _, key := range keys {
		m, err := pipeline.Evaluate(key, train, holdout, pipeline.Options{Logger: logger})
		if err != nil {
			return errors.Wrapf(err, "evaluating %s", key)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", key, m.Accuracy, m.Precision, m.Recall, m.F1, m.MeanConfidence)
	}
	return nil
}

// selectedKeys returns every combination matching the optional filters.
func selectedKeys(vName, cName string) ([]pipeline.Key, error) {
	var keys []pipeline.Key
	var vk vectorize.Kind
	var ck classify.Kind
	var err error
	if vName != "" {
		if vk, err = vectorize.ParseKind(vName); err != nil {
			return nil, err
		}
	}
	if cName != "" {
		if ck, err = classify.ParseKind(cName); err != nil {
			return nil, err
		}
	}
	for _, key := range pipeline.AllKeys() {
		if (vk == "" || key.Vectorizer == vk) && (ck == "" || key.Classifier == ck) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func analyzeAction(c *cli.Context, logger *zap.SugaredLogger) error {
	a := analysis.New(analysis.Config{
		APIKey:   c.String(flagAPIKey),
		Model:    c.String(flagModel),
		Endpoint: c.String(flagEndpoint),
		Timeout:  c.Duration(flagTimeout),
	}, logger)

	switch {
	case c.Bool(flagCheck):
		reply, err := a.Ping(c.Context)
		if err != nil {
			return errors.Wrapf(err, "model %s unavailable", a.Model())
		}
		fmt.Fprintf(c.App.Writer, "%s: %s\n", a.Model(), reply)
		return nil
	case c.Bool(flagListModels):
		names, err := a.ListModels(c.Context)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(c.App.Writer, name)
		}
		return nil
	}

	text, err := textArg(c)
	if err != nil {
		return err
	}
	if err := analysis.CheckText(text); err != nil {
		return err
	}

	res := a.Analyze(c.Context, text, c.String(flagMLPrediction))
	w := c.App.Writer
	fmt.Fprintf(w, "prediction: %s\nrisk: %s\nconfidence: %d\nsummary: %s\n", res.Prediction, res.RiskLevel, res.ConfidenceScore, res.Summary)
	for _, f := range res.RedFlags {
		fmt.Fprintf(w, "red flag [%s]: %s\n", f.Severity, f.Flag)
	}
	for _, s := range res.VerificationSuggestions {
		fmt.Fprintf(w, "verify: %s\n", s)
	}
	if res.Fallback {
		fmt.Fprintln(w, "(fallback result)")
	}
	return nil
}
