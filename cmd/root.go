package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	promptsFile string
)

// stopSignals cancel a running grade or serve command.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var rootCmd = &cobra.Command{
	Use:   "compujudge",
	Short: "Compu-Judge - Tribunal grading for narrative drafts",
	Long: `Compu-Judge grades a narrative draft with a panel of LLM critics.

Five agents (logic, market, soul, literary, jester) review the text, a chief
justice reconciles them into one signed score, a logic veto slashes stories
that do not hold together, and a QA analyst signs off before the verdict is
returned.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./compujudge.yaml or ~/.config/compujudge/compujudge.yaml)")
	rootCmd.PersistentFlags().StringVar(&promptsFile, "prompts", "", "YAML file overriding the built-in agent prompts")
}
