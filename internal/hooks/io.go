package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxInputBytes bounds how much of stdin a hook reads.
const MaxInputBytes = 1 << 20

// ReadInput decodes one event from r. Empty input yields a zero Input and
// no error; input larger than MaxInputBytes is rejected.
func ReadInput(r io.Reader) (Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return Input{}, fmt.Errorf("failed to read hook input: %w", err)
	}
	if len(data) > MaxInputBytes {
		return Input{}, fmt.Errorf("hook input exceeds %d bytes", MaxInputBytes)
	}
	return ParseInput(data)
}

// ParseInput decodes an event from raw JSON.
func ParseInput(data []byte) (Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Input{}, nil
	}

	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, fmt.Errorf("failed to parse hook input: %w", err)
	}
	if err := json.Unmarshal(data, &in.Raw); err != nil {
		return Input{}, fmt.Errorf("failed to parse hook input: %w", err)
	}
	if in.ToolInput == nil {
		in.ToolInput = map[string]any{}
	}
	return in, nil
}

// WriteDecision encodes d as a single JSON line.
func WriteDecision(w io.Writer, d Decision) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to write decision: %w", err)
	}
	return nil
}
