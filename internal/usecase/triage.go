package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"BookTriage/internal/domain"
	"BookTriage/internal/ports"
)

const defaultProgressEvery = 500

// TriageDeps wires the collaborators of the batch stage.
type TriageDeps struct {
	Store         ports.ContentStore
	Classifier    ports.Classifier
	Ledger        ports.TransitionLedger
	Logger        *slog.Logger
	ProgressEvery int
}

// Triage classifies the candidate partition and routes every post whose
// verdict is not definite. Moves never replace an existing bundle, so a
// partially completed run can simply be repeated.
type Triage struct {
	store         ports.ContentStore
	classifier    ports.Classifier
	ledger        ports.TransitionLedger
	logger        *slog.Logger
	progressEvery int
}

// NewTriage constructs the batch stage.
func NewTriage(deps TriageDeps) *Triage {
	every := deps.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	return &Triage{
		store:         deps.Store,
		classifier:    deps.Classifier,
		ledger:        deps.Ledger,
		logger:        deps.Logger,
		progressEvery: every,
	}
}

// Run processes every bundle currently in the candidate partition.
func (t *Triage) Run(ctx context.Context) (domain.TriageSummary, error) {
	var summary domain.TriageSummary
	if t.store == nil || t.classifier == nil {
		return summary, fmt.Errorf("triage is not configured")
	}

	ids, err := t.store.List(ctx, domain.PartitionCandidate)
	if err != nil {
		return summary, fmt.Errorf("list candidates: %w", err)
	}

	runID := uuid.NewString()
	total := len(ids)
	t.info("triage started", "run", runID, "posts", total)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		post, err := t.store.Read(ctx, domain.PartitionCandidate, id)
		if err != nil {
			return summary, fmt.Errorf("read %s: %w", id, err)
		}

		verdict := t.classifier.Classify(post.Content)
		switch verdict {
		case domain.VerdictDefinite:
			summary.Definite++
		case domain.VerdictSuspicious:
			summary.Suspicious++
			if err := t.route(ctx, runID, id, domain.PartitionSuspicious); err != nil {
				return summary, err
			}
		default:
			summary.Nonpublish++
			if err := t.route(ctx, runID, id, domain.PartitionNonpublish); err != nil {
				return summary, err
			}
		}
		t.debug("classified", "post", id, "verdict", verdict)

		if (i+1)%t.progressEvery == 0 {
			t.info("triage progress", "done", i+1, "total", total)
		}
	}

	t.info("triage finished",
		"run", runID,
		"definite", summary.Definite,
		"suspicious", summary.Suspicious,
		"nonpublish", summary.Nonpublish)
	return summary, nil
}

func (t *Triage) route(ctx context.Context, runID, id string, to domain.Partition) error {
	outcome, err := t.store.Move(ctx, id, domain.PartitionCandidate, to, domain.ConflictSkip)
	if err != nil {
		return fmt.Errorf("route %s to %s: %w", id, to, err)
	}
	if outcome == domain.OutcomeConflictSkipped {
		t.debug("already routed", "post", id, "partition", to)
	}
	record(ctx, t.ledger, t.logger, domain.Transition{
		RunID:   runID,
		Stage:   domain.StageTriage,
		PostID:  id,
		From:    domain.PartitionCandidate,
		To:      to,
		Outcome: outcome,
	})
	return nil
}

func (t *Triage) info(msg string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}

func (t *Triage) debug(msg string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}

// record writes a transition; ledger failures never stop a stage.
func record(ctx context.Context, ledger ports.TransitionLedger, logger *slog.Logger, tr domain.Transition) {
	if ledger == nil {
		return
	}
	if err := ledger.Record(ctx, tr); err != nil && logger != nil {
		logger.Warn("ledger write failed", "post", tr.PostID, "stage", tr.Stage, "error", err)
	}
}
