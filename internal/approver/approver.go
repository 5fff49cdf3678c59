// Package approver recognises posts that link to trusted publishers or
// booksellers.
package approver

import (
	"strings"

	"BookTriage/internal/ports"
)

// DefaultDomains is the curated allowlist of publisher and bookseller hosts.
var DefaultDomains = []string{
	"iwanami.co.jp",
	"kodansha.co.jp",
	"shinchosha.co.jp",
	"kadokawa.co.jp",
	"bunshun.jp",
	"shueisha.co.jp",
	"kobunsha.com",
	"shogakukan.co.jp",
	"hayakawa-online.co.jp",
	"tsogen.co.jp",
	"chikumashobo.co.jp",
	"gentosha.co.jp",
	"chuko.co.jp",
	"hanmoto.com",
	"kinokuniya.co.jp",
	"maruzenjunkudo.co.jp",
	"honto.jp",
	"books.rakuten.co.jp",
	"bookmeter.com",
	"booklog.jp",
}

// DomainApprover matches literal domain substrings; matching is case-sensitive.
type DomainApprover struct {
	domains []string
}

var _ ports.Approver = (*DomainApprover)(nil)

// New copies domains, dropping blanks; nil falls back to DefaultDomains.
func New(domains []string) *DomainApprover {
	if domains == nil {
		domains = DefaultDomains
	}
	list := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.TrimSpace(d); d != "" {
			list = append(list, d)
		}
	}
	return &DomainApprover{domains: list}
}

// IsTrustedSource reports whether text contains any allowlisted domain.
func (a *DomainApprover) IsTrustedSource(text string) bool {
	_, ok := a.Match(text)
	return ok
}

// Match returns the first allowlisted domain found in text.
func (a *DomainApprover) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, d := range a.domains {
		if strings.Contains(text, d) {
			return d, true
		}
	}
	return "", false
}

// Domains returns a copy of the active allowlist.
func (a *DomainApprover) Domains() []string {
	return append([]string(nil), a.domains...)
}
