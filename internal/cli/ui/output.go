package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects standard output and returns a function restoring it.
func SetOutput(w io.Writer) func() {
	old := stdout
	stdout = w
	return func() { stdout = old }
}

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", ErrorIcon, render(ErrorStyle, fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessIcon, render(SuccessStyle, fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", InfoIcon, render(InfoStyle, fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", WarningIcon, render(WarningStyle, fmt.Sprintf(format, args...)))
}

// OutputLine prints one formatted line.
func OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

// Raw prints s unchanged.
func Raw(s string) {
	fmt.Fprint(stdout, s)
}

// PrintEnvelope displays a single envelope with its payload.
func PrintEnvelope(env mailbox.Envelope) {
	prio := ""
	if env.Priority == mailbox.PriorityHigh {
		prio = " " + render(HighPriorityStyle, "[high]")
	}
	fmt.Fprintf(stdout, "%s %s%s %s\n",
		MessageIcon,
		render(BoldStyle, string(env.Type)),
		prio,
		render(DimStyle, fmt.Sprintf("%s → %s, %s", env.From, env.To, FormatTime(env.CreatedAt))),
	)
	fmt.Fprintf(stdout, "   %s %s\n", render(DimStyle, "ID:"), env.ID)

	keys := make([]string, 0, len(env.Data))
	for k := range env.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "   %s %s\n", render(DimStyle, k+":"), formatValue(env.Data[k]))
	}
}

// PrintEnvelopeList displays the envelopes of one mailbox, oldest first.
func PrintEnvelopeList(title string, envs []mailbox.Envelope) {
	if len(envs) == 0 {
		Info("No messages")
		return
	}
	PrintSectionHeader(MailboxIcon, title, len(envs))
	for _, env := range envs {
		PrintEnvelope(env)
	}
	fmt.Fprintln(stdout)
}

// PrintMailboxSummaries displays pending counts per mailbox.
func PrintMailboxSummaries(summaries []mailbox.Summary) {
	if len(summaries) == 0 {
		Info("No mailboxes found")
		return
	}
	tbl := NewTable("AGENT", "PENDING", "HIGH", "OLDEST", "NEWEST")
	for _, s := range summaries {
		oldest, newest := "-", "-"
		if s.Pending > 0 {
			oldest = FormatTime(s.Oldest)
			newest = FormatTime(s.Newest)
		}
		tbl.AddRow(string(s.Identity), s.Pending, s.High, oldest, newest)
	}
	PrintSectionHeader(MailboxIcon, "Mailboxes", len(summaries))
	tbl.Print()
	fmt.Fprintln(stdout)
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "-"
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return Truncate(string(data), Width()-10)
	}
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "< 1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatTime formats a time relative to now for display
func FormatTime(t time.Time) string {
	return formatTimeAt(time.Now(), t)
}

func formatTimeAt(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// JoinOrDash joins items or returns "-" when there are none.
func JoinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
