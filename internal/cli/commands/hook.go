package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/config"
	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/recall"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Commands invoked by the assistant's hook mechanism",
	Long: `Hook commands read one JSON event from stdin and always exit 0.

Failures are written to stderr and to .bizzy/logs/hook-errors.jsonl; the
assistant only ever sees the advisory decision or nothing.`,
}

var (
	hookTool  string
	hookFile  string
	hookEvent string
)

var hookAgentCmd = &cobra.Command{
	Use:   "agent <identity>",
	Short: "Run one team agent for the current event",
	Long: `Run one team agent for the event on stdin and print its decision as
{"message": ..., "block": ...}.

Empty or malformed input produces the no-op decision. Use --tool and --file to
run an agent by hand without piping an event.`,
	Example: `  # As configured in the assistant's settings
  bizzy-hooks hook agent backend-developer

  # Manual invocation
  bizzy-hooks hook agent tester --tool Write --file lib/calc.py

  # Session start for the coordinator
  bizzy-hooks hook agent project-manager --event session_start`,
	Args: cobra.ArbitraryArgs,
	RunE: runHookAgent,
}

var hookMemoryCmd = &cobra.Command{
	Use:   "memory <event>",
	Short: "Forward an event to the memory CLI",
	Long: `Forward an event to the external memory CLI.

Events:
  session-start    print project memories, lessons and error resolutions
  post-commit      record the HEAD commit
  task-complete    record a task marked done
  error-resolved   record an error fix
  agent-task       record lessons from a finished sub-agent
  prd-parsed       record a parsed requirements document
  session-end      record a summary of the finished session

Nothing is recorded when the memory CLI is missing or not operational.`,
	Args: cobra.ArbitraryArgs,
	RunE: runHookMemory,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Print the hook settings for the assistant",
	Long: `Print a settings snippet that wires every agent and memory hook to this binary.

post-commit is not an assistant event; call it from .git/hooks/post-commit:

  bizzy-hooks hook memory post-commit`,
	Args: cobra.NoArgs,
	RunE: runHookInstall,
}

var hookInstallBinary string

func init() {
	hookAgentCmd.Flags().StringVar(&hookTool, "tool", "", "Tool name when no event is piped (Write, Edit, MultiEdit, Bash)")
	hookAgentCmd.Flags().StringVar(&hookFile, "file", "", "File path when no event is piped")
	hookAgentCmd.Flags().StringVar(&hookEvent, "event", "", "Event name that overrides tool_name (session_start, pre_commit)")
	hookInstallCmd.Flags().StringVar(&hookInstallBinary, "binary", "bizzy-hooks", "Command used to invoke this binary")

	hookCmd.AddCommand(hookAgentCmd)
	hookCmd.AddCommand(hookMemoryCmd)
	hookCmd.AddCommand(hookInstallCmd)
}

// hookSession sets up logging for a hook invocation. Only errors that
// prevent loading the project are returned.
func hookSession(cmd *cobra.Command) (*project, context.Context, func(), error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, cmd.Context(), func() {}, err
	}
	log, closeLog := CreateHookLogger(config.NewManager(root).GetErrorLogPath())
	ctx := logger.WithContext(cmd.Context(), log)

	p, err := loadProjectAt(ctx, root)
	if err != nil {
		log.Error("failed to load project", "root", root, "error", err)
		return nil, ctx, closeLog, err
	}
	return p, ctx, closeLog, nil
}

func runHookAgent(cmd *cobra.Command, args []string) error {
	decision := hooks.NoOp()
	defer func() {
		if err := hooks.WriteDecision(cmd.OutOrStdout(), decision); err != nil {
			logger.FromContext(cmd.Context()).Error("failed to write decision", "error", err)
		}
	}()

	p, ctx, closeLog, err := hookSession(cmd)
	defer closeLog()
	if err != nil {
		return nil
	}
	log := logger.FromContext(ctx)

	if len(args) != 1 {
		log.Error("hook agent expects exactly one identity", "args", args)
		return nil
	}
	id, err := team.Parse(args[0])
	if err != nil {
		log.Error("unknown agent", "agent", args[0], "error", err)
		return nil
	}
	if p.isDisabled(id) {
		log.Debug("agent disabled", "agent", id)
		return nil
	}

	in, err := readHookInput(cmd)
	if err != nil {
		log.Warn("ignoring hook input", "agent", id, "error", err)
		in = hooks.Input{}
	}
	in = applyHookFlags(in)

	a, err := agent.New(id)
	if err != nil {
		log.Error("failed to create agent", "agent", id, "error", err)
		return nil
	}
	decision = p.runtime().ProcessHookInput(ctx, a, in)
	return nil
}

// readHookInput reads the event from stdin. A terminal on stdin means the
// command was run by hand, so nothing is read.
func readHookInput(cmd *cobra.Command) (hooks.Input, error) {
	r := cmd.InOrStdin()
	if f, ok := r.(*os.File); ok && term.IsTerminal(f.Fd()) {
		return hooks.Input{}, nil
	}
	return hooks.ReadInput(r)
}

func applyHookFlags(in hooks.Input) hooks.Input {
	if in.ToolInput == nil {
		in.ToolInput = map[string]any{}
	}
	if hookTool != "" && in.ToolName == "" {
		in.ToolName = hookTool
	}
	if hookFile != "" && in.FilePath() == "" {
		in.ToolInput["file_path"] = hookFile
	}
	if hookEvent != "" {
		in.ToolName = hookEvent
	}
	return in
}

type memoryHook func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error)

var memoryHooks = map[string]memoryHook{
	"session-start": func(ctx context.Context, r *recall.Recorder, _ hooks.Input) (string, error) {
		return r.SessionStart(ctx)
	},
	"post-commit": func(ctx context.Context, r *recall.Recorder, _ hooks.Input) (string, error) {
		_, err := r.PostCommit(ctx)
		return "", err
	},
	"task-complete": func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error) {
		_, err := r.TaskComplete(ctx, in)
		return "", err
	},
	"error-resolved": func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error) {
		_, err := r.ErrorResolved(ctx, in)
		return "", err
	},
	"agent-task": func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error) {
		_, err := r.AgentTask(ctx, in)
		return "", err
	},
	"prd-parsed": func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error) {
		_, err := r.PRDParsed(ctx, in)
		return "", err
	},
	"session-end": func(ctx context.Context, r *recall.Recorder, in hooks.Input) (string, error) {
		_, err := r.SessionEnd(ctx, in)
		return "", err
	},
}

func runHookMemory(cmd *cobra.Command, args []string) error {
	p, ctx, closeLog, err := hookSession(cmd)
	defer closeLog()
	if err != nil {
		return nil
	}
	log := logger.FromContext(ctx)

	if len(args) != 1 {
		log.Error("hook memory expects exactly one event", "args", args)
		return nil
	}
	run, ok := memoryHooks[args[0]]
	if !ok {
		log.Error("unknown memory event", "event", args[0])
		return nil
	}
	if !p.cfg.Memory.Enabled {
		log.Debug("memory hooks disabled", "event", args[0])
		return nil
	}

	in, err := readHookInput(cmd)
	if err != nil {
		log.Warn("ignoring hook input", "event", args[0], "error", err)
		in = hooks.Input{}
	}
	rec, err := p.recorder()
	if err != nil {
		log.Error("failed to configure memory client", "error", err)
		return nil
	}

	out, err := run(ctx, rec, in)
	switch {
	case errors.Is(err, recall.ErrUnavailable):
		log.Debug("memory backend unavailable", "event", args[0])
	case err != nil:
		log.Warn("memory hook failed", "event", args[0], "error", err)
	case out != "":
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return nil
}

func runHookInstall(cmd *cobra.Command, args []string) error {
	settings := hooks.DefaultSettings(hookInstallBinary, team.All())
	return writeJSON(cmd.OutOrStdout(), settings)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
