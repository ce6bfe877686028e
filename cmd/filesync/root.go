package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/filesync/internal/version"
	"github.com/arthur-debert/filesync/pkg/config"
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/sync"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity   int
		sources     []string
		destination string
		dbPath      string
		keepDB      bool
		workers     int
	)

	rootCmd := &cobra.Command{
		Use:     "filesync",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Sync.Workers
			}
			if !cmd.Flags().Changed("keep-db") {
				keepDB = cfg.Database.Keep
			}

			reporter := &consoleReporter{}
			defer reporter.Done()

			fmt.Printf("Starting backup at %s\n", time.Now().Format("2006-01-02 15:04:05"))

			stats, err := sync.Run(sync.Options{
				Sources:              sources,
				Destination:          destination,
				DatabasePath:         dbPath,
				KeepDatabase:         keepDB,
				Workers:              workers,
				MaxCollisionAttempts: cfg.Placer.MaxCollisionAttempts,
				ProgressInterval:     cfg.Sync.ProgressInterval,
				Reporter:             reporter,
			})
			if err != nil {
				return err
			}
			reporter.Done()

			printSummary(stats)
			fmt.Println("Backup completed.")
			return nil
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringArrayVarP(&sources, "source", "s", nil, "Source directory to sync from (can be specified multiple times)")
	rootCmd.Flags().StringVarP(&destination, "destination", "d", "", "Destination directory to sync to")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Spill collected records to a SQLite database at this path")
	rootCmd.Flags().BoolVar(&keepDB, "keep-db", false, "Keep the record database after syncing")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Number of hashing workers (0 = one per CPU)")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// printSummary writes the run outcome for the user
func printSummary(stats *sync.Stats) {
	fmt.Printf("Files collected: %d (roots skipped: %d, dirs skipped: %d, files skipped: %d)\n",
		stats.Collected, stats.SkippedRoots, stats.SkippedDirs, stats.SkippedFiles)
	fmt.Printf("Unique items: %d (copied %d, already present %d, renamed %d)\n",
		stats.Unique, stats.Copied, stats.Satisfied, stats.Renamed)
	if stats.Failed() {
		fmt.Printf("Failures: %d item(s) skipped, see warnings above\n", len(stats.Failures))
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("filesync version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}
