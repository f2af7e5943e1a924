package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/runner"
	"atlas-checks/internal/stats"
)

// readRecords：参数可为文件或目录；目录读取其中的 *.log
func readRecords(paths []string) ([]flag.Record, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.log"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	var out []flag.Record
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		records, err := flag.ReadLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, records...)
	}
	return out, nil
}

func listCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered checks and whether the configuration enables them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			m := runner.NewManagerFromConfig(config.Empty())
			for _, s := range m.Status() {
				state := "enabled"
				if !cfg.Enabled(s.Name) {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", s.Name, state)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.Getenv("CHECKS_CONFIG", ""), "Check configuration (YAML)")
	return cmd
}

func statsCmd() *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "stats <files...>",
		Short: "Count flags per check and country",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args)
			if err != nil {
				return err
			}
			s := stats.Summarize(records)
			out := cmd.OutOrStdout()
			if asCSV {
				return s.WriteCSV(out)
			}
			for _, row := range s.Table {
				fmt.Fprintf(out, "%-40s %-4s %d\n", row.Check, row.Country, row.Count)
			}
			fmt.Fprintf(out, "total %d\n", s.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")
	return cmd
}

func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two flag sets by check and identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readRecords(args[:1])
			if err != nil {
				return err
			}
			after, err := readRecords(args[1:])
			if err != nil {
				return err
			}
			d := stats.Diff(before, after)
			out := cmd.OutOrStdout()
			for _, part := range []struct {
				mark    string
				records []flag.Record
			}{{"+", d.Added}, {"-", d.Removed}, {"~", d.Changed}} {
				for _, r := range part.records {
					fmt.Fprintf(out, "%s %s %s %s\n", part.mark, r.Check, r.Identifier, strings.ReplaceAll(r.Instructions, "\n", " "))
				}
			}
			fmt.Fprintln(out, d.Summary())
			return nil
		},
	}
}
