package recall

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// TaskInfo is a completed task-tracker task.
type TaskInfo struct {
	ID          string
	Title       string
	Description string
	Details     string
}

// IsTaskCompletion reports whether the event marks a task as done.
func IsTaskCompletion(in hooks.Input) bool {
	if !strings.Contains(in.ToolName, "set_task_status") && !strings.Contains(in.ToolName, "task-master") {
		return false
	}
	return in.Str("status") == "done"
}

// ExtractTask reads the task from a completion event. ok is false when
// the event carries no task id.
func ExtractTask(in hooks.Input) (TaskInfo, bool) {
	id := scalar(in.ToolInput["id"])
	if id == "" {
		return TaskInfo{}, false
	}
	info := TaskInfo{ID: id}

	data, _ := in.ResultObject()["data"].(map[string]any)
	tasks, _ := data["tasks"].([]any)
	if len(tasks) > 0 {
		if task, ok := tasks[0].(map[string]any); ok {
			info.Title = scalar(task["title"])
			info.Description = scalar(task["description"])
			info.Details = scalar(task["details"])
			if info.Title == "" {
				info.Title = "Task " + id
			}
		}
	}
	return info, true
}

// TaskComplete records a finished task as a lesson. It returns "" without
// error when the event is not a task completion.
func (r *Recorder) TaskComplete(ctx context.Context, in hooks.Input) (string, error) {
	if !IsTaskCompletion(in) {
		return "", nil
	}
	task, ok := ExtractTask(in)
	if !ok {
		return "", nil
	}
	if err := r.ready(ctx); err != nil {
		return "", err
	}

	content := r.taskContent(task)
	return r.save(ctx, content, memory.TypeLesson, memory.TagOptions{
		Task:  task.ID,
		Tech:  memory.ExtractTech(content),
		Extra: []string{"task-complete", "implementation"},
	})
}

func (r *Recorder) taskContent(t TaskInfo) string {
	title := t.Title
	if title == "" {
		title = "Unknown Task"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Task Completed: %s\n\n", title)
	if t.Description != "" {
		b.WriteString("## Description\n" + t.Description + "\n\n")
	}
	if t.Details != "" {
		b.WriteString("## Implementation Details\n" + t.Details + "\n\n")
	}
	b.WriteString("## Completion\n")
	fmt.Fprintf(&b, "Completed at: %s\n", r.timestamp())
	fmt.Fprintf(&b, "Task ID: %s", t.ID)
	return b.String()
}

// scalar renders strings and JSON numbers as text.
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
