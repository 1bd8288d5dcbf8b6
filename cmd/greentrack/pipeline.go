package main

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"greentrack/internal/config"
	"greentrack/internal/facts"
	"greentrack/internal/ingest"
)

func newInitDBCommand(a *app, stdout io.Writer) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the schema, granting privileges through ADMIN_DATABASE_URL if needed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *gorm.DB) error {
				if reset {
					if err := config.ResetDB(cmd.Context(), db, a.settings); err != nil {
						return err
					}
					printf(stdout, "database reset\n")
					return nil
				}
				if err := config.InitDB(cmd.Context(), db, a.settings); err != nil {
					return err
				}
				printf(stdout, "database initialized\n")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables before creating them")
	return cmd
}

func newIngestCommand(a *app, stdout io.Writer) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "ingest [data-dir]",
		Short: "Load the CSV extracts of a data directory (default DATA_DIR).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.settings.DataDir
			if len(args) == 1 {
				dir = args[0]
			}
			return a.withDB(func(db *gorm.DB) error {
				summary, err := ingest.NewLoader(db, a.settings.BatchSize, a.log).LoadAll(cmd.Context(), dir, replace)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
				printf(tw, "TABLE\tROWS\n")
				for _, t := range ingest.Tables {
					printf(tw, "%s\t%d\n", t, summary[t])
				}
				printf(tw, "total\t%d\n", summary.Total())
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "truncate all core tables before loading")
	return cmd
}

func newBuildFactsCommand(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "build-facts",
		Short: "Rebuild transport_stage_fact and refresh the aggregate views.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *gorm.DB) error {
				n, err := facts.NewBuilder(db, a.settings.BatchSize, a.log).Rebuild(cmd.Context())
				if err != nil {
					return err
				}
				printf(stdout, "inserted %d rows into transport_stage_fact\n", n)
				return nil
			})
		},
	}
}

func newRefreshViewsCommand(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-views",
		Short: "Create the aggregate views if missing and recompute them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDB(func(db *gorm.DB) error {
				err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
					if err := facts.EnsureViews(ctx, tx); err != nil {
						return err
					}
					return facts.RefreshViews(ctx, tx)
				})
				if err != nil {
					return err
				}
				printf(stdout, "views refreshed\n")
				return nil
			})
		},
	}
}
