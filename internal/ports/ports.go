package ports

import (
	"context"

	"BookTriage/internal/domain"
)

// ContentStore reads bundles and moves them between partitions.
type ContentStore interface {
	List(ctx context.Context, partition domain.Partition) ([]string, error)
	Read(ctx context.Context, partition domain.Partition, id string) (domain.Post, error)
	Exists(ctx context.Context, partition domain.Partition, id string) (bool, error)
	Move(ctx context.Context, id string, from, to domain.Partition, policy domain.ConflictPolicy) (domain.MoveOutcome, error)
}

// Classifier maps post text to a verdict.
type Classifier interface {
	Classify(text string) domain.Verdict
}

// Approver decides whether text cites a trusted source.
type Approver interface {
	IsTrustedSource(text string) bool
}

// TransitionLedger keeps an audit trail of move attempts.
type TransitionLedger interface {
	Record(ctx context.Context, t domain.Transition) error
	History(ctx context.Context, postID string) ([]domain.Transition, error)
}

// CommandSource yields raw reviewer input, one token per call.
type CommandSource interface {
	Next(ctx context.Context) (string, error)
}

// Presenter renders review progress to the operator.
type Presenter interface {
	ShowPost(position, total int, post domain.Post)
	Hint(message string)
	Moved(post domain.Post, decision domain.Decision, to domain.Partition)
	AutoApproved(post domain.Post, matched string)
	Summary(summary domain.ReviewSummary)
}
