package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"BookTriage/internal/domain"
	"BookTriage/internal/ports"
)

// Command is a parsed reviewer input.
type Command int

const (
	CommandInvalid Command = iota
	CommandPublish
	CommandReject
	CommandSkip
	CommandQuit
)

// Keymap binds input tokens to commands.
type Keymap struct {
	Publish string
	Reject  string
	Skip    string
	Quit    string
}

// DefaultKeymap is 1 publish, 0 reject, s skip, q quit.
func DefaultKeymap() Keymap {
	return Keymap{Publish: "1", Reject: "0", Skip: "s", Quit: "q"}
}

// Validate rejects empty or clashing keys.
func (k Keymap) Validate() error {
	seen := map[string]string{}
	for _, b := range k.bindings() {
		key := normalizeKey(b.key)
		if key == "" {
			return fmt.Errorf("keymap: %s key is empty", b.name)
		}
		if other, ok := seen[key]; ok {
			return fmt.Errorf("keymap: %q is bound to both %s and %s", key, other, b.name)
		}
		seen[key] = b.name
	}
	return nil
}

// Parse maps raw input to a command; input is trimmed and case-folded.
func (k Keymap) Parse(input string) Command {
	token := normalizeKey(input)
	if token == "" {
		return CommandInvalid
	}
	for _, b := range k.bindings() {
		if token == normalizeKey(b.key) {
			return b.cmd
		}
	}
	return CommandInvalid
}

// Usage lists the accepted keys.
func (k Keymap) Usage() string {
	parts := make([]string, 0, 4)
	for _, b := range k.bindings() {
		parts = append(parts, fmt.Sprintf("%s=%s", b.key, b.name))
	}
	return strings.Join(parts, " | ")
}

type binding struct {
	key  string
	name string
	cmd  Command
}

func (k Keymap) bindings() []binding {
	return []binding{
		{k.Publish, "publish", CommandPublish},
		{k.Reject, "reject", CommandReject},
		{k.Skip, "skip", CommandSkip},
		{k.Quit, "quit", CommandQuit},
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ReviewerDeps wires the collaborators of the interactive stage.
type ReviewerDeps struct {
	Store    ports.ContentStore
	Approver ports.Approver
	Ledger   ports.TransitionLedger
	Logger   *slog.Logger
	Keys     Keymap
}

// Reviewer resolves the suspicious partition with a human. Its moves replace
// an existing destination bundle because the decision is authoritative.
type Reviewer struct {
	store    ports.ContentStore
	approver ports.Approver
	ledger   ports.TransitionLedger
	logger   *slog.Logger
	keys     Keymap
}

// NewReviewer constructs the interactive stage; a zero Keymap means defaults.
func NewReviewer(deps ReviewerDeps) *Reviewer {
	keys := deps.Keys
	if keys == (Keymap{}) {
		keys = DefaultKeymap()
	}
	return &Reviewer{
		store:    deps.Store,
		approver: deps.Approver,
		ledger:   deps.Ledger,
		logger:   deps.Logger,
		keys:     keys,
	}
}

// Keys returns the active keymap.
func (r *Reviewer) Keys() Keymap {
	return r.keys
}

type reviewState int

const (
	stateLoad reviewState = iota
	stateAutoApprove
	statePrompt
	stateDone
	stateQuit
)

func (s reviewState) String() string {
	switch s {
	case stateLoad:
		return "load"
	case stateAutoApprove:
		return "auto-approve"
	case statePrompt:
		return "prompt"
	case stateDone:
		return "done"
	case stateQuit:
		return "quit"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// session is the mutable state of one run. queue holds every post still in
// the suspicious partition; cursor points at the next one to present.
type session struct {
	state   reviewState
	runID   string
	queue   []domain.Post
	cursor  int
	summary domain.ReviewSummary
}

// Run snapshots the suspicious partition, auto-approves trusted posts and
// prompts for the rest. End of input behaves like quit.
func (r *Reviewer) Run(ctx context.Context, commands ports.CommandSource, out ports.Presenter) (domain.ReviewSummary, error) {
	if r.store == nil || commands == nil || out == nil {
		return domain.ReviewSummary{}, fmt.Errorf("reviewer is not configured")
	}

	s := &session{state: stateLoad, runID: uuid.NewString()}
	for {
		r.debug("review state", "run", s.runID, "state", s.state)
		var err error
		switch s.state {
		case stateLoad:
			err = r.load(ctx, s)
		case stateAutoApprove:
			err = r.autoApprove(ctx, s, out)
		case statePrompt:
			err = r.prompt(ctx, s, commands, out)
		case stateDone, stateQuit:
			s.summary.Quit = s.state == stateQuit
			s.summary.Remaining = len(s.queue)
			out.Summary(s.summary)
			r.info("review finished",
				"run", s.runID,
				"auto_approved", s.summary.AutoApproved,
				"published", s.summary.Published,
				"rejected", s.summary.Rejected,
				"skipped", s.summary.Skipped,
				"remaining", s.summary.Remaining)
			return s.summary, nil
		}
		if err != nil {
			s.summary.Remaining = len(s.queue)
			return s.summary, err
		}
	}
}

func (r *Reviewer) load(ctx context.Context, s *session) error {
	ids, err := r.store.List(ctx, domain.PartitionSuspicious)
	if err != nil {
		return fmt.Errorf("list suspicious: %w", err)
	}
	sort.Strings(ids)

	s.queue = make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		post, err := r.store.Read(ctx, domain.PartitionSuspicious, id)
		if err != nil {
			return fmt.Errorf("read %s: %w", id, err)
		}
		s.queue = append(s.queue, post)
	}

	r.info("review started", "run", s.runID, "pending", len(s.queue))
	s.state = stateAutoApprove
	return nil
}

func (r *Reviewer) autoApprove(ctx context.Context, s *session, out ports.Presenter) error {
	s.state = statePrompt
	if r.approver == nil {
		return nil
	}

	kept := make([]domain.Post, 0, len(s.queue))
	for i, post := range s.queue {
		matched, ok := r.trusted(post.Content)
		if !ok {
			kept = append(kept, post)
			continue
		}
		if err := r.move(ctx, s, post, domain.PartitionPublished, domain.StageAutoApprove); err != nil {
			s.queue = append(kept, s.queue[i:]...)
			return err
		}
		s.summary.AutoApproved++
		out.AutoApproved(post, matched)
		r.debug("auto-approved", "post", post.ID, "domain", matched)
	}
	s.queue = kept
	return nil
}

// trusted asks the approver and, when it can tell, which domain matched.
func (r *Reviewer) trusted(text string) (string, bool) {
	if m, ok := r.approver.(interface{ Match(string) (string, bool) }); ok {
		return m.Match(text)
	}
	return "", r.approver.IsTrustedSource(text)
}

func (r *Reviewer) prompt(ctx context.Context, s *session, commands ports.CommandSource, out ports.Presenter) error {
	if s.cursor >= len(s.queue) {
		s.state = stateDone
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	post := s.queue[s.cursor]
	out.ShowPost(s.cursor+1, len(s.queue), post)

	for {
		input, err := commands.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.state = stateQuit
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		switch r.keys.Parse(input) {
		case CommandPublish:
			return r.resolve(ctx, s, out, domain.DecisionPublish, domain.PartitionPublished)
		case CommandReject:
			return r.resolve(ctx, s, out, domain.DecisionReject, domain.PartitionNonpublish)
		case CommandSkip:
			s.summary.Skipped++
			s.cursor++
			out.Moved(post, domain.DecisionSkip, domain.PartitionSuspicious)
			return nil
		case CommandQuit:
			s.state = stateQuit
			return nil
		default:
			out.Hint(r.keys.Usage())
		}
	}
}

func (r *Reviewer) resolve(ctx context.Context, s *session, out ports.Presenter, decision domain.Decision, to domain.Partition) error {
	post := s.queue[s.cursor]
	if err := r.move(ctx, s, post, to, domain.StageReview); err != nil {
		return err
	}
	s.queue = append(s.queue[:s.cursor], s.queue[s.cursor+1:]...)
	if decision == domain.DecisionPublish {
		s.summary.Published++
	} else {
		s.summary.Rejected++
	}
	out.Moved(post, decision, to)
	return nil
}

func (r *Reviewer) move(ctx context.Context, s *session, post domain.Post, to domain.Partition, stage domain.Stage) error {
	outcome, err := r.store.Move(ctx, post.ID, domain.PartitionSuspicious, to, domain.ConflictOverwrite)
	if err != nil {
		return fmt.Errorf("move %s to %s: %w", post.ID, to, err)
	}
	if outcome == domain.OutcomeOverwritten {
		r.info("replaced existing bundle", "post", post.ID, "partition", to)
	}
	record(ctx, r.ledger, r.logger, domain.Transition{
		RunID:   s.runID,
		Stage:   stage,
		PostID:  post.ID,
		From:    domain.PartitionSuspicious,
		To:      to,
		Outcome: outcome,
	})
	return nil
}

func (r *Reviewer) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Reviewer) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
