// atlas-checks：离线运行检查、统计与对比标记文件、上传到数据库或 MapRoulette
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"atlas-checks/internal/logger"
	"atlas-checks/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "atlas-checks",
		Short:         "Run data-quality checks over atlas files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		runCmd(),
		listCmd(),
		statsCmd(),
		diffCmd(),
		uploadDBCmd(),
		mapRouletteCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "atlas-checks %s\n", version.String())
			},
		},
	)
	return cmd
}
