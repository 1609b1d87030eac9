package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/arenautils/memarena/arena"
	"github.com/arenautils/memarena/script"
)

var rootCmd = &cobra.Command{
	Use:   "memarena",
	Short: "Fixed-capacity best-fit byte arena",
}

var (
	runCapacity int
	runStatsOut string
	runCoalesce bool
	runVerbose  bool
)

var runCmd = &cobra.Command{
	Use:   "run <script-file>",
	Short: "Run a command script against a fresh arena",
	Long: `Run executes a line-oriented command script (INSERT, DELETE, FIND, READ,
UPDATE, DUMP) against a newly created arena. Malformed lines are logged and
skipped; engine errors are reported per line and do not stop the run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if runVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(os.Stderr))

		a, err := arena.New(runCapacity)
		if err != nil {
			return err
		}

		p := script.NewProcessor(a, cmd.OutOrStdout(), logger)
		if err := p.ProcessFile(args[0]); err != nil {
			return err
		}

		if runCoalesce {
			merges := a.Coalesce()
			logger.Info("coalesced free ranges", "merges", merges, "freeRanges", a.FreeRangeCount())
		}

		if runStatsOut != "" {
			if err := writeStats(a, runStatsOut); err != nil {
				return err
			}
			logger.Debug("wrote stats", "path", runStatsOut)
		}

		return nil
	},
}

// writeStats writes the arena's JSON state dump to path, gzip-compressed when
// the path ends in .gz.
func writeStats(a *arena.Arena, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	_, err = io.WriteString(w, a.BuildStatsString())
	if err == nil && gz != nil {
		err = gz.Close()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func init() {
	runCmd.Flags().IntVar(&runCapacity, "capacity", arena.DefaultCapacity, "arena capacity in bytes")
	runCmd.Flags().StringVar(&runStatsOut, "stats-out", "", "write a JSON stats dump to this path after the run (.gz compresses)")
	runCmd.Flags().BoolVar(&runCoalesce, "coalesce", false, "merge adjacent free ranges after the run")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
