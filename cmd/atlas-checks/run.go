package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"atlas-checks/internal/config"
	"atlas-checks/internal/dedup"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/migrate"
	"atlas-checks/internal/resolver"
	"atlas-checks/internal/runner"
	"atlas-checks/internal/store"
)

type runOptions struct {
	atlasRoot string
	pattern   string
	config    string
	countries []string
	workers   int
	out       string
	db        string
	geojson   bool
}

func runCmd() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run enabled checks over the atlas files of each country",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.atlasRoot, "atlas", config.Getenv("ATLAS_ROOT", "."), "Atlas root directory")
	f.StringVar(&o.pattern, "pattern", config.Getenv("ATLAS_PATTERN", resolver.DefaultPattern), "Atlas file pattern relative to the root")
	f.StringVar(&o.config, "config", config.Getenv("CHECKS_CONFIG", ""), "Check configuration (YAML)")
	f.StringSliceVar(&o.countries, "countries", config.GetenvList("COUNTRIES"), "ISO3 country codes; empty scans the root")
	f.IntVar(&o.workers, "workers", config.GetenvInt("RUN_WORKERS", runner.DefaultWorkers), "Checks run concurrently")
	f.StringVar(&o.out, "out", "flags", "Output directory for flag files")
	f.StringVar(&o.db, "db", "", "Optional SQLite path to persist the run")
	f.BoolVar(&o.geojson, "geojson", false, "Also write one FeatureCollection per check and country")
	return cmd
}

func (o runOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	countries := make([]string, 0, len(o.countries))
	for _, c := range o.countries {
		countries = append(countries, strings.ToUpper(strings.TrimSpace(c)))
	}
	resolved, err := resolver.Resolve(o.atlasRoot, o.pattern, countries)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return fmt.Errorf("no atlas files under %s matching %s", o.atlasRoot, o.pattern)
	}
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return err
	}
	var st *store.Store
	if o.db != "" {
		if st, err = store.Open(string(store.SQLite), o.db); err != nil {
			return err
		}
		defer st.Close()
		if err := migrate.EnsureSchema(ctx, st.DB()); err != nil {
			return err
		}
	}
	tracker := dedup.New(nil)
	r := &runner.Runner{Manager: runner.NewManagerFromConfig(cfg), Workers: o.workers}
	return r.RunCountries(ctx, resolved, func(res *runner.Result) error {
		files, err := writeResult(o.out, res.Country, res.Container, o.geojson)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d flags in %d files (run %s)\n", res.Country, res.Container.Len(), files, res.RunID)
		if st != nil {
			if _, err := runner.Persist(ctx, st, tracker, res); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeResult：每个检查一份 <check>-<country>.log，可选同名 .geojson
func writeResult(dir, country string, c *flag.Container, withGeoJSON bool) (int, error) {
	files := 0
	for _, check := range c.Checks() {
		flags := c.Flags(check)
		records := make([]flag.Record, 0, len(flags))
		for _, f := range flags {
			r, err := f.Record(check)
			if err != nil {
				return files, err
			}
			records = append(records, r)
		}
		base := filepath.Join(dir, check+"-"+country)
		if err := writeFile(base+".log", func(w *os.File) error { return flag.WriteLines(w, records) }); err != nil {
			return files, err
		}
		files++
		if withGeoJSON {
			data, err := json.Marshal(flag.GeometriesOf(flags))
			if err != nil {
				return files, err
			}
			if err := os.WriteFile(base+".geojson", data, 0o644); err != nil {
				return files, err
			}
			files++
		}
		logger.L().Debug("flag_file_written", "check", check, "country", country, "flags", len(records))
	}
	return files, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
