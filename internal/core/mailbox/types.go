// Package mailbox provides per-agent, file-backed message queues.
//
// Each agent identity owns one JSONL file under the mailbox directory.
// Senders append envelopes; the owner drains them, which reads and clears
// the file under an exclusive lock so an envelope is consumed at most once.
package mailbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

var (
	// ErrInvalidRecipient is returned when an envelope targets an unknown identity
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrUnknownType is returned for message types outside the known set
	ErrUnknownType = errors.New("unknown message type")
	// ErrLockTimeout is returned when the mailbox lock cannot be acquired in time
	ErrLockTimeout = errors.New("timeout acquiring mailbox lock")
)

// MessageType selects the handler an envelope is dispatched to.
type MessageType string

const (
	FileChangeNotification     MessageType = "file_change_notification"
	MeetingInvitation          MessageType = "meeting_invitation"
	MeetingAccepted            MessageType = "meeting_accepted"
	ReviewRequest              MessageType = "review_request"
	ReviewResponse             MessageType = "review_response"
	ReviewComplete             MessageType = "review_complete"
	CriticalIssueFound         MessageType = "critical_issue_found"
	SecurityReviewNeeded       MessageType = "security_review_needed"
	StylingCoordination        MessageType = "styling_coordination"
	DatabaseOptimizationReview MessageType = "database_optimization_review"
	APIChangeRequest           MessageType = "api_change_request"
	APIChangeResponse          MessageType = "api_change_response"
	DatabaseQueryReview        MessageType = "database_query_review"
	QueryReviewResponse        MessageType = "query_review_response"
	TestRequest                MessageType = "test_request"
	TestRecommendationsResp    MessageType = "test_recommendations_response"
	CoverageAnalysis           MessageType = "coverage_analysis"
	CoverageAnalysisResponse   MessageType = "coverage_analysis_response"
	TestCoverageAnalysis       MessageType = "test_coverage_analysis"
	TestingRecommendations     MessageType = "testing_recommendations"
	TaskAssignment             MessageType = "task_assignment"
	SessionStarted             MessageType = "session_started"
	GitOperationAlert          MessageType = "git_operation_alert"
)

var knownTypes = map[MessageType]struct{}{
	FileChangeNotification:     {},
	MeetingInvitation:          {},
	MeetingAccepted:            {},
	ReviewRequest:              {},
	ReviewResponse:             {},
	ReviewComplete:             {},
	CriticalIssueFound:         {},
	SecurityReviewNeeded:       {},
	StylingCoordination:        {},
	DatabaseOptimizationReview: {},
	APIChangeRequest:           {},
	APIChangeResponse:          {},
	DatabaseQueryReview:        {},
	QueryReviewResponse:        {},
	TestRequest:                {},
	TestRecommendationsResp:    {},
	CoverageAnalysis:           {},
	CoverageAnalysisResponse:   {},
	TestCoverageAnalysis:       {},
	TestingRecommendations:     {},
	TaskAssignment:             {},
	SessionStarted:             {},
	GitOperationAlert:          {},
}

// IsKnown reports whether t is one of the declared message types.
func (t MessageType) IsKnown() bool {
	_, ok := knownTypes[t]
	return ok
}

// ParseMessageType validates s as a message type.
func ParseMessageType(s string) (MessageType, error) {
	t := MessageType(s)
	if !t.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Priority is advisory; it never reorders a mailbox.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates s, defaulting to normal when empty.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "", PriorityNormal:
		return PriorityNormal, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %q", s)
	}
}

// Envelope is a single message exchanged between agents.
type Envelope struct {
	ID        string         `json:"id"`
	From      team.Identity  `json:"from"`
	To        team.Identity  `json:"to"`
	Type      MessageType    `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Priority  Priority       `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewEnvelope builds a normal-priority envelope. ID and CreatedAt are
// assigned by Manager.Send.
func NewEnvelope(from, to team.Identity, typ MessageType, data map[string]any) Envelope {
	return Envelope{
		From:     from,
		To:       to,
		Type:     typ,
		Data:     data,
		Priority: PriorityNormal,
	}
}

// Str returns the string value stored under key, or "".
func (e Envelope) Str(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns the boolean stored under key, or false.
func (e Envelope) Bool(key string) bool {
	v, _ := e.Data[key].(bool)
	return v
}

// Strings returns the string list stored under key. It accepts both
// []string (in-process) and []any (decoded JSON).
func (e Envelope) Strings(key string) []string {
	switch v := e.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Summary describes the pending contents of one mailbox.
type Summary struct {
	Identity team.Identity
	Pending  int
	High     int
	Oldest   time.Time
	Newest   time.Time
	Path     string
}
