package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/jrsteele09/tenant-dashboard/internal/logging"
	"github.com/spf13/cobra"
)

// newRootCmd builds the dashboard CLI. Running it without a subcommand serves.
func newRootCmd() *cobra.Command {
	cfg := config.New()
	serve := &serveOptions{}

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Multi-tenant marketing analytics dashboard",
		Long: `dashboard serves the tenant analytics API, the Google OAuth callback and
the operational endpoints. Configuration is read from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(cmd.OutOrStdout(), cfg.GetEnv(), cfg.GetLogLevel())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, serve)
		},
	}
	serve.bind(root)

	root.AddCommand(
		newServeCmd(cfg),
		newSeedCmd(cfg),
		newMigrateCmd(cfg),
	)
	return root
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
