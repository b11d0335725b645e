package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eqlog/eqlog-go/internal/logfinder"
	"github.com/eqlog/eqlog-go/pkg/eqlog"
)

var (
	// tail flags
	tailLogDir    string
	tailFile      string
	tailFormat    string
	tailPlayer    string
	tailSpamFile  string
	tailFromStart bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow a live combat log and output encounters",
	Long: `Follow a live combat log file and output encounters as they close.

Without --file, the most recently modified eqlog file in the log directory
is followed (directory from --log-dir, the EQLOG_LOGDIR environment
variable, or auto-detection).

Examples:
  # Follow the newest log in the default directory
  eqlog tail

  # Follow a specific file from its beginning
  eqlog tail --file eqlog_Tarim_project1999.txt --from-start

  # Human-readable output
  eqlog tail --format pretty`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailLogDir, "log-dir", "d", "",
		"Log directory (auto-detected if not specified)")
	tailCmd.Flags().StringVar(&tailFile, "file", "",
		"Log file to follow (newest in log directory if not specified)")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringVarP(&tailPlayer, "player", "p", "",
		"Logging player's name (overrides the filename-derived hint)")
	tailCmd.Flags().StringVar(&tailSpamFile, "spam-file", "",
		"YAML file extending the chat-spam avoid list")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false,
		"Read the log from the beginning instead of only new lines")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !ValidFormats[tailFormat] {
		return fmt.Errorf("unknown format: %s", tailFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := tailFile
	if path == "" {
		dir, err := logfinder.FindLogDir(tailLogDir)
		if err != nil {
			return err
		}
		path, err = logfinder.FindLatestLogFile(dir)
		if err != nil {
			return err
		}
	}

	opts, err := buildOptions(tailPlayer, tailSpamFile, path)
	if err != nil {
		return err
	}
	opts = append(opts, eqlog.WithFromStart(tailFromStart))

	follower, err := eqlog.NewFollower(path, opts...)
	if err != nil {
		return err
	}
	defer follower.Close()

	msgs, errs, err := follower.Follow(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for msgs != nil || errs != nil {
		select {
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			if err := OutputMessage(tailFormat, msg, out); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
	}
	return nil
}
