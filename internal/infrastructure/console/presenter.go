package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"BookTriage/internal/domain"
	"BookTriage/internal/infrastructure/bundle"
	"BookTriage/internal/ports"
)

const (
	ruleWidth       = 60
	missingContent  = "(index.md not found)"
	emptyContent    = "(no content)"
	dateDisplayForm = "2006-01-02 15:04"
)

// Presenter prints review progress as plain lines, optionally colored.
type Presenter struct {
	w     io.Writer
	usage string

	heading *color.Color
	accent  *color.Color
	muted   *color.Color
	good    *color.Color
	bad     *color.Color
}

var _ ports.Presenter = (*Presenter)(nil)

// NewPresenter writes to w; usage is the key legend shown under each post.
func NewPresenter(w io.Writer, usage string, colorize bool) *Presenter {
	p := &Presenter{
		w:       w,
		usage:   usage,
		heading: color.New(color.FgHiBlue, color.Bold),
		accent:  color.New(color.FgHiYellow),
		muted:   color.New(color.FgHiBlack),
		good:    color.New(color.FgHiGreen, color.Bold),
		bad:     color.New(color.FgHiRed, color.Bold),
	}
	for _, c := range []*color.Color{p.heading, p.accent, p.muted, p.good, p.bad} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ShowPost prints the post header, its body and the key legend.
func (p *Presenter) ShowPost(position, total int, post domain.Post) {
	line := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(p.w)
	p.heading.Fprintln(p.w, line)
	p.heading.Fprintf(p.w, "[%d/%d] remaining: %d\n", position, total, total-position+1)
	p.accent.Fprintf(p.w, "bundle: %s\n", post.ID)
	if post.Meta.Title != "" {
		fmt.Fprintf(p.w, "title:  %s\n", post.Meta.Title)
	}
	if !post.Meta.Date.IsZero() {
		fmt.Fprintf(p.w, "date:   %s\n", post.Meta.Date.Format(dateDisplayForm))
	}
	p.heading.Fprintln(p.w, line)
	fmt.Fprintln(p.w)

	switch {
	case post.NoIndex:
		p.muted.Fprintln(p.w, missingContent)
	case strings.TrimSpace(post.Body) == "":
		p.muted.Fprintln(p.w, emptyContent)
	default:
		fmt.Fprintln(p.w, bundle.PlainText(post.Body))
	}

	fmt.Fprintln(p.w)
	p.muted.Fprintln(p.w, strings.Repeat("-", ruleWidth))
	p.muted.Fprintln(p.w, p.usage)
	p.muted.Fprintln(p.w, strings.Repeat("-", ruleWidth))
}

// Hint explains which keys are accepted.
func (p *Presenter) Hint(message string) {
	p.bad.Fprintf(p.w, "enter one of: %s\n", message)
}

// Moved confirms a decision.
func (p *Presenter) Moved(post domain.Post, decision domain.Decision, to domain.Partition) {
	switch decision {
	case domain.DecisionPublish:
		p.good.Fprintf(p.w, "-> published: %s\n", post.ID)
	case domain.DecisionReject:
		p.bad.Fprintf(p.w, "-> %s: %s\n", to, post.ID)
	default:
		p.muted.Fprintf(p.w, "-> skipped: %s\n", post.ID)
	}
}

// AutoApproved reports a post published without review.
func (p *Presenter) AutoApproved(post domain.Post, matched string) {
	if matched == "" {
		p.good.Fprintf(p.w, "auto-approved: %s\n", post.ID)
		return
	}
	p.good.Fprintf(p.w, "auto-approved: %s (%s)\n", post.ID, matched)
}

// Summary prints the per-outcome counts.
func (p *Presenter) Summary(s domain.ReviewSummary) {
	line := strings.Repeat("=", ruleWidth)
	title := "all posts processed"
	if s.Quit {
		title = "stopped"
	}
	fmt.Fprintln(p.w)
	p.heading.Fprintln(p.w, line)
	p.heading.Fprintln(p.w, title)
	fmt.Fprintf(p.w, "  auto-approved: %d\n", s.AutoApproved)
	fmt.Fprintf(p.w, "  published:     %d\n", s.Published)
	fmt.Fprintf(p.w, "  rejected:      %d\n", s.Rejected)
	fmt.Fprintf(p.w, "  skipped:       %d\n", s.Skipped)
	fmt.Fprintf(p.w, "  remaining:     %d\n", s.Remaining)
	p.heading.Fprintln(p.w, line)
}

// TriageSummary prints the batch stage counts with their partition roots.
func TriageSummary(w io.Writer, s domain.TriageSummary, roots map[domain.Partition]string) {
	fmt.Fprintf(w, "classified %d posts\n", s.Total())
	fmt.Fprintf(w, "  definite:   %d (%s)\n", s.Definite, roots[domain.PartitionCandidate])
	fmt.Fprintf(w, "  suspicious: %d (%s)\n", s.Suspicious, roots[domain.PartitionSuspicious])
	fmt.Fprintf(w, "  nonpublish: %d (%s)\n", s.Nonpublish, roots[domain.PartitionNonpublish])
}
