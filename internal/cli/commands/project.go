package commands

import (
	"context"
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/config"
	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/core/recall"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// project bundles the configuration and managers of the current project.
type project struct {
	config   *config.Manager
	cfg      *config.Config
	mailbox  *mailbox.Manager
	routes   *routing.Table
	disabled []team.Identity
	logger   logger.Logger
}

// loadProject finds the project root and builds its managers. A missing
// configuration file yields the defaults.
func loadProject(ctx context.Context) (*project, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadProjectAt(ctx, root)
}

func loadProjectAt(ctx context.Context, root string) (*project, error) {
	log := logger.FromContext(ctx)
	mgr := config.NewManager(root)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ttl, err := cfg.Mailbox.TTLDuration()
	if err != nil {
		return nil, err
	}
	lockTimeout, err := cfg.Mailbox.LockTimeoutDuration()
	if err != nil {
		return nil, err
	}
	routes, err := cfg.RoutingTable()
	if err != nil {
		return nil, fmt.Errorf("failed to build routing table: %w", err)
	}
	disabled, err := team.ParseList(cfg.Agents.Disabled)
	if err != nil {
		return nil, fmt.Errorf("invalid agents.disabled: %w", err)
	}

	mb := mailbox.NewManager(mgr.GetMailboxDir(),
		mailbox.WithMaxMessages(cfg.Mailbox.MaxMessages),
		mailbox.WithTTL(ttl),
		mailbox.WithLockTimeout(lockTimeout),
		mailbox.WithLogger(log),
	)

	return &project{
		config:   mgr,
		cfg:      cfg,
		mailbox:  mb,
		routes:   routes,
		disabled: disabled,
		logger:   log,
	}, nil
}

func (p *project) root() string {
	return p.config.GetProjectRoot()
}

func (p *project) runtime() *agent.Runtime {
	return agent.NewRuntime(p.mailbox,
		agent.WithStateStore(agent.NewStateStore(p.config.GetStateDir())),
		agent.WithRoutes(p.routes),
		agent.WithRoot(p.root()),
		agent.WithDisabled(p.disabled...),
		agent.WithLogger(p.logger),
	)
}

func (p *project) recorder() (*recall.Recorder, error) {
	timeout, err := p.cfg.Memory.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	healthTimeout, err := p.cfg.Memory.HealthTimeoutDuration()
	if err != nil {
		return nil, err
	}
	client := memory.NewClient(p.cfg.Memory.CLI,
		memory.WithTimeout(timeout),
		memory.WithHealthTimeout(healthTimeout),
		memory.WithDir(p.root()),
		memory.WithLogger(p.logger),
	)
	return recall.NewRecorder(client, p.root(),
		recall.WithLogger(p.logger),
		recall.WithProject(p.cfg.Project.Name),
	), nil
}

func (p *project) isDisabled(id team.Identity) bool {
	for _, d := range p.disabled {
		if d == id {
			return true
		}
	}
	return false
}
