package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var assumeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored grading result",
	Long: `Delete every stored grading result from the data directory.

This cannot be undone. You are asked to confirm unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runPurge(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(settings)
	if err != nil {
		return err
	}

	if !assumeYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete every stored result in %s", st.Dir()),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				fmt.Fprintln(cmd.OutOrStdout(), "Purge cancelled")
				return nil
			}
			return fmt.Errorf("confirmation failed: %w", err)
		}
	}

	n, err := st.Purge(cmd.Context())
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Purged %d stored results from %s\n", n, st.Dir())
	return nil
}
