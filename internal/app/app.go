package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"BookTriage/internal/approver"
	"BookTriage/internal/classifier"
	"BookTriage/internal/config"
	"BookTriage/internal/domain"
	"BookTriage/internal/infrastructure/console"
	"BookTriage/internal/infrastructure/storage"
	"BookTriage/internal/infrastructure/store"
	"BookTriage/internal/logging"
	"BookTriage/internal/ports"
	"BookTriage/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	roots      map[domain.Partition]string
	classifier *classifier.Classifier
	triage     *usecase.Triage
	reviewer   *usecase.Reviewer
	ledger     *storage.SQLLedger
}

// New builds the stages from configuration. The rule set and keymap must be
// valid; the ledger is optional and only logged when it cannot be opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	}

	rules, err := loadRules(cfg.Rules)
	if err != nil {
		return nil, err
	}
	cls := classifier.New(rules)

	keys := usecase.Keymap{
		Publish: cfg.Review.PublishKey,
		Reject:  cfg.Review.RejectKey,
		Skip:    cfg.Review.SkipKey,
		Quit:    cfg.Review.QuitKey,
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	roots := cfg.Partitions.Roots()
	contentStore := store.NewFSStore(roots, baseLogger.With("component", "store"))

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		roots:      roots,
		classifier: cls,
	}

	var ledger ports.TransitionLedger
	if cfg.Ledger.Enabled() {
		a.ledger, err = storage.Open(ctx, cfg.Ledger.Driver, cfg.LedgerDSN())
		if err != nil {
			baseLogger.Warn("transition ledger unavailable", "driver", cfg.Ledger.Driver, "error", err)
		} else {
			ledger = a.ledger
		}
	}

	a.triage = usecase.NewTriage(usecase.TriageDeps{
		Store:         contentStore,
		Classifier:    cls,
		Ledger:        ledger,
		Logger:        baseLogger.With("component", "triage"),
		ProgressEvery: cfg.Triage.ProgressEvery,
	})
	a.reviewer = usecase.NewReviewer(usecase.ReviewerDeps{
		Store:    contentStore,
		Approver: approver.New(cfg.Approver.Domains),
		Ledger:   ledger,
		Logger:   baseLogger.With("component", "reviewer"),
		Keys:     keys,
	})
	return a, nil
}

func loadRules(cfg config.RulesConfig) (classifier.RuleSet, error) {
	if cfg.Path == "" {
		return classifier.DefaultRules()
	}
	return classifier.LoadRules(cfg.Path)
}

// Classify runs the batch stage and prints its summary to out.
func (a *Application) Classify(ctx context.Context, out io.Writer) (domain.TriageSummary, error) {
	summary, err := a.triage.Run(ctx)
	if err != nil {
		return summary, err
	}
	console.TriageSummary(out, summary, a.roots)
	return summary, nil
}

// Review runs the interactive stage reading commands from in.
func (a *Application) Review(ctx context.Context, in io.Reader, out io.Writer) (domain.ReviewSummary, error) {
	keys := a.reviewer.Keys()
	presenter := console.NewPresenter(out, keys.Usage(), a.colorize(out))
	source := console.NewLineSource(in, out, "choice: ")
	return a.reviewer.Run(ctx, source, presenter)
}

// Explain classifies a single file and reports the rules that fired.
func (a *Application) Explain(path string, out io.Writer) (classifier.Explanation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return classifier.Explanation{}, fmt.Errorf("read %s: %w", path, err)
	}
	exp := a.classifier.Explain(string(raw))
	fmt.Fprintf(out, "verdict: %s\n", exp.Verdict)
	if exp.Definite != "" {
		fmt.Fprintf(out, "definite rule: %s\n", exp.Definite)
	}
	for _, name := range exp.Suspicious {
		fmt.Fprintf(out, "suspicious: %s\n", name)
	}
	for _, name := range exp.Exclude {
		fmt.Fprintf(out, "exclude: %s\n", name)
	}
	return exp, nil
}

// History prints every recorded move of a post.
func (a *Application) History(ctx context.Context, postID string, out io.Writer) ([]domain.Transition, error) {
	if a.ledger == nil {
		return nil, fmt.Errorf("transition ledger is disabled")
	}
	history, err := a.ledger.History(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "no transitions recorded for %s\n", postID)
	}
	for _, t := range history {
		fmt.Fprintf(out, "%s  %-12s %s -> %s (%s)\n",
			t.RecordedAt.Format("2006-01-02 15:04:05"), t.Stage, t.From, t.To, t.Outcome)
	}
	return history, nil
}

// Close releases the ledger connection.
func (a *Application) Close() error {
	if a.ledger == nil {
		return nil
	}
	return a.ledger.Close()
}

func (a *Application) colorize(out io.Writer) bool {
	if a.cfg.Review.Color != nil && !*a.cfg.Review.Color {
		return false
	}
	f, ok := out.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}
