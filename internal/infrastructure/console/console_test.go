package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BookTriage/internal/domain"
)

func TestLineSource(t *testing.T) {
	t.Parallel()

	var prompts bytes.Buffer
	src := NewLineSource(strings.NewReader("1\n s \nq"), &prompts, "> ")
	ctx := context.Background()

	for _, want := range []string{"1", " s ", "q"} {
		got, err := src.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, strings.Repeat("> ", 4), prompts.String())
}

func TestLineSourceCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLineSource(strings.NewReader("1\n"), nil, "").Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPresenterShowPost(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPresenter(&buf, "1=publish | 0=reject | s=skip | q=quit", false)

	p.ShowPost(2, 5, domain.Post{
		ID:      "2019-03-04-santai",
		Content: "---\ntitle: x\n---\n<p>面白い小説だった</p>",
		Body:    "<p>面白い小説だった</p>",
		Meta:    domain.Meta{Title: "三体", Date: time.Date(2019, time.March, 4, 21, 15, 0, 0, time.UTC)},
	})

	out := buf.String()
	assert.Contains(t, out, "[2/5] remaining: 4")
	assert.Contains(t, out, "bundle: 2019-03-04-santai")
	assert.Contains(t, out, "title:  三体")
	assert.Contains(t, out, "date:   2019-03-04 21:15")
	assert.Contains(t, out, "\n面白い小説だった\n")
	assert.Contains(t, out, "1=publish | 0=reject")
	assert.NotContains(t, out, "\x1b[", "colors are disabled")
}

func TestPresenterMissingContentAndSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPresenter(&buf, "", false)
	p.ShowPost(1, 1, domain.Post{ID: "bare", NoIndex: true})
	p.Hint("1=publish")
	p.AutoApproved(domain.Post{ID: "a"}, "iwanami.co.jp")
	p.Moved(domain.Post{ID: "b"}, domain.DecisionReject, domain.PartitionNonpublish)
	p.Summary(domain.ReviewSummary{AutoApproved: 1, Rejected: 1, Remaining: 3, Quit: true})

	out := buf.String()
	assert.Contains(t, out, missingContent)
	assert.Contains(t, out, "enter one of: 1=publish")
	assert.Contains(t, out, "auto-approved: a (iwanami.co.jp)")
	assert.Contains(t, out, "-> nonpublish: b")
	assert.Contains(t, out, "stopped")
	assert.Contains(t, out, "remaining:     3")
}

func TestPresenterEmptyIndex(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewPresenter(&buf, "", false).ShowPost(1, 1, domain.Post{ID: "x"})

	out := buf.String()
	assert.Contains(t, out, emptyContent)
	assert.NotContains(t, out, missingContent)
}

func TestLineSourceLongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200*1024)
	src := NewLineSource(strings.NewReader(long+"\nq\n"), nil, "")
	ctx := context.Background()

	got, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, got, len(long))

	got, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q", got)
}

func TestTriageSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	TriageSummary(&buf, domain.TriageSummary{Definite: 2, Suspicious: 1, Nonpublish: 4}, map[domain.Partition]string{
		domain.PartitionCandidate: "cand",
	})
	assert.Contains(t, buf.String(), "classified 7 posts")
	assert.Contains(t, buf.String(), "definite:   2 (cand)")
}
