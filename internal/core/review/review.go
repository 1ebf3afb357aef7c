// Package review turns analysis findings into the advisory decision shown
// to the host.
package review

import (
	"fmt"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// Severity ranks a finding.
type Severity string

const (
	Critical   Severity = "critical"
	Warning    Severity = "warning"
	Suggestion Severity = "suggestion"
)

// Display limits per severity.
const (
	MaxCritical    = 3
	MaxWarnings    = 2
	MaxSuggestions = 2
)

// Finding is one issue detected by content or command analysis.
type Finding struct {
	Kind     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// IsSecurity reports whether the finding is security-tagged.
func (f Finding) IsSecurity() bool {
	return strings.Contains(f.Kind, "security")
}

// Findings is an ordered finding list.
type Findings []Finding

// Add appends a finding.
func (fs *Findings) Add(kind string, sev Severity, msg string) {
	*fs = append(*fs, Finding{Kind: kind, Severity: sev, Message: msg})
}

// Of returns the findings with the given severity, in order.
func (fs Findings) Of(sev Severity) Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// HasCritical reports whether any finding is critical.
func (fs Findings) HasCritical() bool {
	for _, f := range fs {
		if f.Severity == Critical {
			return true
		}
	}
	return false
}

// Security returns the security-tagged findings.
func (fs Findings) Security() Findings {
	var out Findings
	for _, f := range fs {
		if f.IsSecurity() {
			out = append(out, f)
		}
	}
	return out
}

// Messages returns the message text of each finding.
func (fs Findings) Messages() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Message
	}
	return out
}

// Labels are the section titles of a report.
type Labels struct {
	Critical    string
	Warnings    string
	Suggestions string
}

// DefaultLabels are used when a Header leaves Labels empty.
var DefaultLabels = Labels{
	Critical:    "🚨 Critical Issues Found:",
	Warnings:    "⚠️ Warnings:",
	Suggestions: "💡 Suggestions:",
}

// Header identifies who is reporting.
type Header struct {
	Icon        string
	Title       string
	Affirmation string
	Labels      Labels
}

func (h Header) labels() Labels {
	if h.Labels == (Labels{}) {
		return DefaultLabels
	}
	return h.Labels
}

// Report is the input to the decision policy.
type Report struct {
	Header   Header
	Subject  string
	Findings Findings
	// Affirm makes an empty report produce a positive message instead of
	// an empty one.
	Affirm bool
}

// Decision applies the policy: any critical finding blocks and shows at
// most MaxCritical critical items; otherwise up to MaxWarnings warnings and
// MaxSuggestions suggestions are shown without blocking.
func (r Report) Decision() hooks.Decision {
	if len(r.Findings) == 0 {
		if !r.Affirm {
			return hooks.NoOp()
		}
		return hooks.Decision{Message: r.affirmation()}
	}

	labels := r.Header.labels()
	lines := []string{fmt.Sprintf("%s %s: Reviewing %s", r.Header.Icon, r.Header.Title, r.Subject)}

	if critical := r.Findings.Of(Critical); len(critical) > 0 {
		lines = appendSection(lines, labels.Critical, critical, MaxCritical)
		return hooks.Decision{Message: strings.Join(lines, "\n"), Block: true}
	}

	lines = appendSection(lines, labels.Warnings, r.Findings.Of(Warning), MaxWarnings)
	lines = appendSection(lines, labels.Suggestions, r.Findings.Of(Suggestion), MaxSuggestions)
	return hooks.Decision{Message: strings.Join(lines, "\n")}
}

func (r Report) affirmation() string {
	msg := fmt.Sprintf("%s %s: %s looks good!", r.Header.Icon, r.Header.Title, r.Subject)
	if r.Header.Affirmation != "" {
		msg += " " + r.Header.Affirmation
	}
	return msg
}

func appendSection(lines []string, title string, fs Findings, limit int) []string {
	if len(fs) == 0 {
		return lines
	}
	lines = append(lines, title)
	for i, f := range fs {
		if i == limit {
			break
		}
		lines = append(lines, "   • "+f.Message)
	}
	return lines
}

// Advice is guidance for a shell command. Items are rendered one per line
// under a "<icon> <title>: <topic>" header.
type Advice struct {
	Header      Header
	Topic       string
	Warnings    []string
	Suggestions []string
	Checks      []string
}

// Empty reports whether the advice has nothing to say.
func (a Advice) Empty() bool {
	return len(a.Warnings)+len(a.Suggestions)+len(a.Checks) == 0
}

// Decision renders the advice as a non-blocking decision.
func (a Advice) Decision() hooks.Decision {
	if a.Empty() {
		return hooks.NoOp()
	}
	parts := []string{fmt.Sprintf("%s %s: %s", a.Header.Icon, a.Header.Title, a.Topic)}
	for _, w := range a.Warnings {
		parts = append(parts, "⚠️ "+w)
	}
	for _, s := range a.Suggestions {
		parts = append(parts, "💡 "+s)
	}
	for _, c := range a.Checks {
		parts = append(parts, "✅ "+c)
	}
	return hooks.Decision{Message: strings.Join(parts, "\n   ")}
}
