package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/maproulette"
	"atlas-checks/internal/migrate"
	"atlas-checks/internal/runner"
	"atlas-checks/internal/store"
)

func uploadDBCmd() *cobra.Command {
	var (
		dsn     string
		driver  string
		country string
	)
	cmd := &cobra.Command{
		Use:   "upload-db <files...>",
		Short: "Store flag files as a new run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			records, err := readRecords(args)
			if err != nil {
				return err
			}
			st, err := store.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := migrate.EnsureSchema(ctx, st.DB()); err != nil {
				return err
			}
			runID := uuid.NewString()
			now := time.Now()
			if err := st.SaveRun(ctx, store.Run{RunID: runID, Country: country, Atlas: "upload", Started: now}); err != nil {
				return err
			}
			n, err := st.SaveFlags(ctx, runID, now, records, nil)
			if err != nil {
				return err
			}
			if err := st.FinishRun(ctx, runID, time.Now(), n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d flags stored\n", runID, n)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dsn, "db", config.Getenv("SQLITE_PATH", "atlas-checks.db"), "Database path or DSN")
	f.StringVar(&driver, "driver", string(store.SQLite), "Database driver (sqlite or postgres)")
	f.StringVar(&country, "country", "", "Country recorded on the run")
	return cmd
}

func mapRouletteCmd() *cobra.Command {
	var (
		project string
		cfgPath string
	)
	cmd := &cobra.Command{
		Use:   "maproulette <files...>",
		Short: "Upload flag files as MapRoulette challenges and tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				return fmt.Errorf("--project or MAPROULETTE_PROJECT is required")
			}
			records, err := readRecords(args)
			if err != nil {
				return err
			}
			client, err := maproulette.NewFromEnv()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			m := runner.NewManagerFromConfig(cfg)
			challengeFor := func(check string) checks.Challenge {
				if c, ok := m.Lookup(check); ok {
					return c.Challenge()
				}
				return checks.Challenge{Name: check, Difficulty: checks.DifficultyEasy, DefaultPriority: checks.PriorityNone}
			}
			n, err := maproulette.UploadRecords(cmd.Context(), client, project, records, challengeFor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d tasks to project %s\n", n, project)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&project, "project", config.Getenv("MAPROULETTE_PROJECT", ""), "MapRoulette project name")
	f.StringVar(&cfgPath, "config", config.Getenv("CHECKS_CONFIG", ""), "Check configuration (YAML)")
	return cmd
}
