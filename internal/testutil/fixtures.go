// Package testutil builds partition fixtures on disk for tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"BookTriage/internal/domain"
)

// Partitions lays out the four partition roots under a temp dir.
func Partitions(t *testing.T) map[domain.Partition]string {
	t.Helper()

	base := t.TempDir()
	return map[domain.Partition]string{
		domain.PartitionCandidate:  filepath.Join(base, "candidate"),
		domain.PartitionSuspicious: filepath.Join(base, "suspicious"),
		domain.PartitionNonpublish: filepath.Join(base, "nonpublish"),
		domain.PartitionPublished:  filepath.Join(base, "blog", "content", "posts"),
	}
}

// WriteBundle creates root/id/index.md holding body under a minimal header.
func WriteBundle(t *testing.T, root, id, body string) {
	t.Helper()

	content := "---\ntitle: \"" + id + "\"\ndate: 2020-05-01T10:00:00+09:00\ndraft: false\n---\n\n" + body
	WriteRaw(t, root, id, content)
}

// WriteRaw creates root/id/index.md with content written verbatim.
func WriteRaw(t *testing.T, root, id, content string) {
	t.Helper()

	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write bundle %s: %v", id, err)
	}
}

// EmptyBundle creates a bundle folder without an index file.
func EmptyBundle(t *testing.T, root, id string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Join(root, id), 0o755); err != nil {
		t.Fatalf("mkdir bundle %s: %v", id, err)
	}
}

// Membership returns the sorted bundle names present in each partition.
func Membership(t *testing.T, roots map[domain.Partition]string) map[domain.Partition][]string {
	t.Helper()

	out := make(map[domain.Partition][]string, len(roots))
	for p, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil && !os.IsNotExist(err) {
			t.Fatalf("read %s: %v", root, err)
		}
		names := []string{}
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		out[p] = names
	}
	return out
}

// AssertUnique fails when a bundle ID appears in more than one partition.
func AssertUnique(t *testing.T, roots map[domain.Partition]string) {
	t.Helper()

	seen := map[string]domain.Partition{}
	for p, ids := range Membership(t, roots) {
		for _, id := range ids {
			if prev, ok := seen[id]; ok {
				t.Fatalf("bundle %s is in both %s and %s", id, prev, p)
			}
			seen[id] = p
		}
	}
}
