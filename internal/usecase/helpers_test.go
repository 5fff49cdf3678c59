package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"BookTriage/internal/approver"
	"BookTriage/internal/classifier"
	"BookTriage/internal/domain"
	"BookTriage/internal/infrastructure/storage"
	"BookTriage/internal/infrastructure/store"
)

type scriptedCommands struct {
	tokens []string
	read   int
}

func script(tokens ...string) *scriptedCommands {
	return &scriptedCommands{tokens: tokens}
}

func (s *scriptedCommands) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.read >= len(s.tokens) {
		return "", io.EOF
	}
	token := s.tokens[s.read]
	s.read++
	return token, nil
}

type recordingPresenter struct {
	shown    []string
	hints    []string
	moved    map[string]domain.Decision
	auto     map[string]string
	summary  *domain.ReviewSummary
	position []int
}

func newPresenter() *recordingPresenter {
	return &recordingPresenter{moved: map[string]domain.Decision{}, auto: map[string]string{}}
}

func (p *recordingPresenter) ShowPost(position, total int, post domain.Post) {
	p.shown = append(p.shown, post.ID)
	p.position = append(p.position, position)
}

func (p *recordingPresenter) Hint(message string) { p.hints = append(p.hints, message) }

func (p *recordingPresenter) Moved(post domain.Post, decision domain.Decision, _ domain.Partition) {
	p.moved[post.ID] = decision
}

func (p *recordingPresenter) AutoApproved(post domain.Post, matched string) {
	p.auto[post.ID] = matched
}

func (p *recordingPresenter) Summary(summary domain.ReviewSummary) { p.summary = &summary }

func newClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	c, err := classifier.NewDefault()
	require.NoError(t, err)
	return c
}

func newLedger(t *testing.T) *storage.SQLLedger {
	t.Helper()
	l, err := storage.Open(context.Background(), storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func newReviewer(roots map[domain.Partition]string, ledger *storage.SQLLedger, keys Keymap) *Reviewer {
	deps := ReviewerDeps{
		Store:    store.NewFSStore(roots, nil),
		Approver: approver.New(nil),
		Keys:     keys,
	}
	if ledger != nil {
		deps.Ledger = ledger
	}
	return NewReviewer(deps)
}
