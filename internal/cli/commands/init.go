package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bizzy-hooks in the current project",
	Long: `Create .bizzy/config.yaml with the default configuration, the mailbox and
agent state directories, and add .bizzy/ to .gitignore.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var forceInit bool

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force initialization, overwriting existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configManager := config.NewManager(cwd)
	if configManager.IsInitialized() && !forceInit {
		return fmt.Errorf("bizzy-hooks already initialized. Use --force to reinitialize")
	}

	if err := configManager.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	for _, dir := range []string{configManager.GetMailboxDir(), configManager.GetStateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if shouldUpdateGitignore(cwd) {
		if err := addToGitignore(cwd); err != nil {
			ui.Warning("Failed to update .gitignore: %v", err)
		} else {
			ui.OutputLine("Added .bizzy/ to .gitignore")
		}
	}

	ui.Success("bizzy-hooks initialized in %s", cwd)
	ui.OutputLine("  Configuration: %s", filepath.Join(config.BizzyDir, config.ConfigFile))
	ui.OutputLine("\nRun 'bizzy-hooks hook install' to print the assistant hook settings")
	return nil
}

func shouldUpdateGitignore(projectRoot string) bool {
	content := ""
	if data, err := os.ReadFile(filepath.Join(projectRoot, ".gitignore")); err == nil {
		content = string(data)
	}
	return !strings.Contains(content, config.BizzyDir)
}

func addToGitignore(projectRoot string) (err error) {
	file, err := os.OpenFile(filepath.Join(projectRoot, ".gitignore"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = file.WriteString("\n# bizzy-hooks\n" + config.BizzyDir + "/\n")
	return err
}
