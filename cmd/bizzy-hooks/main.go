// Command bizzy-hooks runs the agent team hooks and their operator tools.
package main

import (
	"os"

	"github.com/Bizzy211/aes-bizzy/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
