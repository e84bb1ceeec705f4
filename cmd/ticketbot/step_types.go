package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

var stepTypesCmd = &cobra.Command{
	Use:   "step-types",
	Short: "List the built-in and extension step types",
	RunE:  runStepTypes,
}

func runStepTypes(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	registry, err := buildRegistry(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMOJI\tNAME\tSOURCE\tDESCRIPTION")
	for _, info := range registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Emoji, info.Name, info.Source, info.Description)
	}
	return w.Flush()
}
