// Command sakhi is the operator tool: a terminal chat against the configured
// companion, rule table checks, and speech provider smoke tests.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/sakhi/backend/internal/config"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sakhi",
		Short:        "Sakhi companion operator tool",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.Preinit()
			_ = godotenv.Load()
		},
	}

	root.AddCommand(newChatCmd(), newRulesCmd(), newSpeechCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}
