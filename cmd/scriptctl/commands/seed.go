package commands

import (
	"fmt"

	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/seed"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, prompt templates and global hooks",
	Long: `Load reference data from a YAML file. Existing categories and hooks are
kept, prompt templates are replaced by code.

Examples:
  scriptctl seed -f seed.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seed.Load(seedFile)
		if err != nil {
			return err
		}

		db, zlog, _, err := connect()
		if err != nil {
			return err
		}
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		res, err := seed.Apply(db, f, zlog)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠️  %s\n", w)
		}
		fmt.Fprintf(out, "✅ categories: %d new, prompts: %d written, hooks: %d new\n",
			res.Categories, res.Prompts, res.Hooks)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "Seed YAML file")
	rootCmd.AddCommand(seedCmd)
}
