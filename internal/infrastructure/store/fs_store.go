package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"BookTriage/internal/domain"
	"BookTriage/internal/infrastructure/bundle"
	"BookTriage/internal/ports"
)

var (
	// ErrNotFound reports a bundle missing from its partition.
	ErrNotFound = errors.New("bundle not found")
	// ErrUnknownPartition reports a partition without a configured root.
	ErrUnknownPartition = errors.New("unknown partition")
	// ErrInvalidID reports an identifier that is not a single path element.
	ErrInvalidID = errors.New("invalid bundle id")
)

// FSStore keeps each partition as a directory of bundle folders.
type FSStore struct {
	roots  map[domain.Partition]string
	logger *slog.Logger
}

var _ ports.ContentStore = (*FSStore)(nil)

// NewFSStore maps partitions to their root directories.
func NewFSStore(roots map[domain.Partition]string, logger *slog.Logger) *FSStore {
	copied := make(map[domain.Partition]string, len(roots))
	for p, dir := range roots {
		copied[p] = dir
	}
	return &FSStore{roots: copied, logger: logger}
}

// Root returns the directory backing a partition.
func (s *FSStore) Root(partition domain.Partition) (string, error) {
	dir, ok := s.roots[partition]
	if !ok || dir == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownPartition, partition)
	}
	return dir, nil
}

// List returns bundle IDs in directory order. A missing root is empty.
func (s *FSStore) List(ctx context.Context, partition domain.Partition) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := s.Root(partition)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		s.debug("partition absent", "partition", partition, "root", root)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", partition, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// Read loads a bundle. A missing or unreadable index file yields empty content.
func (s *FSStore) Read(ctx context.Context, partition domain.Partition, id string) (domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return domain.Post{}, err
	}
	dir, err := s.bundleDir(partition, id)
	if err != nil {
		return domain.Post{}, err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Post{}, fmt.Errorf("%w: %s/%s", ErrNotFound, partition, id)
		}
		return domain.Post{}, fmt.Errorf("stat %s/%s: %w", partition, id, err)
	}

	post := domain.Post{ID: id, Partition: partition}
	raw, err := os.ReadFile(filepath.Join(dir, bundle.IndexFile))
	if err != nil {
		s.debug("content unavailable", "post", id, "partition", partition, "error", err)
		post.NoIndex = true
		return post, nil
	}

	post.Content = string(raw)
	meta, body, err := bundle.Parse(post.Content)
	if err != nil {
		s.debug("header ignored", "post", id, "error", err)
	}
	post.Meta = meta
	post.Body = body
	return post, nil
}

// Exists reports whether a bundle with id is present in partition.
func (s *FSStore) Exists(ctx context.Context, partition domain.Partition, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	dir, err := s.bundleDir(partition, id)
	if err != nil {
		return false, err
	}
	return exists(dir)
}

// Move renames a bundle into another partition. With ConflictSkip an
// existing destination is left alone; with ConflictOverwrite it is replaced.
func (s *FSStore) Move(ctx context.Context, id string, from, to domain.Partition, policy domain.ConflictPolicy) (domain.MoveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if from == to {
		return "", fmt.Errorf("move %s: source and destination are both %s", id, from)
	}
	src, err := s.bundleDir(from, id)
	if err != nil {
		return "", err
	}
	dst, err := s.bundleDir(to, id)
	if err != nil {
		return "", err
	}

	ok, err := exists(src)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, from, id)
	}

	outcome := domain.OutcomeMoved
	taken, err := exists(dst)
	if err != nil {
		return "", err
	}
	if taken {
		if policy == domain.ConflictSkip {
			s.debug("destination exists, move skipped", "post", id, "to", to)
			return domain.OutcomeConflictSkipped, nil
		}
		if err := os.RemoveAll(dst); err != nil {
			return "", fmt.Errorf("replace %s/%s: %w", to, id, err)
		}
		outcome = domain.OutcomeOverwritten
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create partition %s: %w", to, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", id, to, err)
	}
	return outcome, nil
}

func (s *FSStore) bundleDir(partition domain.Partition, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	root, err := s.Root(partition)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, id), nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

func (s *FSStore) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
