package domain

import "time"

// Partition names a bucket of post bundles sharing a disposition.
type Partition string

const (
	PartitionCandidate  Partition = "candidate"
	PartitionSuspicious Partition = "suspicious"
	PartitionNonpublish Partition = "nonpublish"
	PartitionPublished  Partition = "published"
)

// Post is a single exported post bundle addressed by its slug.
// Content is the whole primary file and is what gets classified; Body is
// Content without its header.
type Post struct {
	ID        string
	Content   string
	Body      string
	Partition Partition
	Meta      Meta
	// NoIndex is set when the bundle has no readable index file.
	NoIndex   bool
}

// Meta carries the optional header fields written by the converter.
type Meta struct {
	Title string
	Date  time.Time
	Draft bool
}

// Verdict is the classifier output for a post's text.
type Verdict string

const (
	VerdictDefinite   Verdict = "definite"
	VerdictSuspicious Verdict = "suspicious"
	VerdictNonpublish Verdict = "nonpublish"
)

// Decision is what a reviewer chose for a pending post.
type Decision string

const (
	DecisionPublish Decision = "publish"
	DecisionReject  Decision = "reject"
	DecisionSkip    Decision = "skip"
)

// ConflictPolicy controls a move whose destination already holds the same ID.
type ConflictPolicy int

const (
	// ConflictSkip leaves both entries untouched.
	ConflictSkip ConflictPolicy = iota
	// ConflictOverwrite replaces the destination entry.
	ConflictOverwrite
)

// MoveOutcome reports what a move actually did.
type MoveOutcome string

const (
	OutcomeMoved           MoveOutcome = "moved"
	OutcomeOverwritten     MoveOutcome = "overwritten"
	OutcomeConflictSkipped MoveOutcome = "conflict-skipped"
)

// Stage identifies which part of the pipeline moved a post.
type Stage string

const (
	StageTriage      Stage = "triage"
	StageAutoApprove Stage = "auto-approve"
	StageReview      Stage = "review"
)

// Transition is the ledger record of a single move attempt.
type Transition struct {
	ID         string
	RunID      string
	Stage      Stage
	PostID     string
	From       Partition
	To         Partition
	Outcome    MoveOutcome
	RecordedAt time.Time
}

// TriageSummary counts verdicts of a batch run.
type TriageSummary struct {
	Definite   int
	Suspicious int
	Nonpublish int
}

// Total returns the number of classified posts.
func (s TriageSummary) Total() int {
	return s.Definite + s.Suspicious + s.Nonpublish
}

// ReviewSummary counts outcomes of an interactive run.
type ReviewSummary struct {
	AutoApproved int
	Published    int
	Rejected     int
	Skipped      int
	Remaining    int
	Quit         bool
}
