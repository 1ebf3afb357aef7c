package agent

import (
	"regexp"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/review"
)

// check is a single pattern-based content rule. It fires when match finds
// the pattern and, if set, absent does not.
type check struct {
	kind     string
	severity review.Severity
	message  string
	match    *regexp.Regexp
	absent   *regexp.Regexp
}

func (c check) apply(content string, fs *review.Findings) {
	if !c.match.MatchString(content) {
		return
	}
	if c.absent != nil && c.absent.MatchString(content) {
		return
	}
	fs.Add(c.kind, c.severity, c.message)
}

func runChecks(content string, checks []check) review.Findings {
	var fs review.Findings
	for _, c := range checks {
		c.apply(content, &fs)
	}
	return fs
}

// commandHint is advice attached to shell commands containing a keyword.
type commandHint struct {
	keyword string
	advice  string
}

func hintsFor(command string, hints []commandHint) []string {
	var out []string
	for _, h := range hints {
		if strings.Contains(command, h.keyword) {
			out = append(out, h.advice)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasSuffixAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
