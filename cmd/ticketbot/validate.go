package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/store"
)

var validateData string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the ticket document and report records that cannot be read",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateData, "data", "", "document file to check instead of the configured store")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	var backend store.Backend
	if validateData != "" {
		backend, err = store.NewFileBackend(validateData)
	} else {
		backend, err = store.Open(ctx, cfg, logger)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close() //nolint:errcheck

	data, err := backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, skipped, err := store.Decode(data, registry)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d tickets, %d ticket types\n", backend.Name(), len(doc.Tickets), len(doc.TicketTypes))
	for _, rec := range skipped {
		fmt.Fprintf(out, "  skipped %s\n", rec.Error())
	}
	if len(skipped) > 0 {
		return fmt.Errorf("%d unreadable records", len(skipped))
	}
	return nil
}
