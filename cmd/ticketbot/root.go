package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ticketbot",
	Short:         "Chat ticket bot: intake wizard, management console and admin API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(stepTypesCmd)
	rootCmd.AddCommand(tokenCmd)
}
