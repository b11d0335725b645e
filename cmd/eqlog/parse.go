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
	"github.com/eqlog/eqlog-go/pkg/eqlog/spam"
)

var (
	// parse flags
	parseFormat     string
	parsePlayer     string
	parseSpamFile   string
	parseEncounters bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <logfile>",
	Short: "Parse a combat log file into encounters",
	Long: `Parse a finished combat log file and output the streaming protocol
messages (progress, encounter, metadata or error).

The logging player's name is derived from the "eqlog_<name>_<server>.txt"
filename convention when possible; otherwise it is discovered mid-parse.

Examples:
  # Parse a log, one JSON message per line
  eqlog parse eqlog_Tarim_project1999.txt

  # Human-readable encounter summaries only
  eqlog parse --format pretty --encounters-only eqlog_Tarim_project1999.txt

  # Extend the chat-spam avoid list
  eqlog parse --spam-file ignore.yaml eqlog_Tarim_project1999.txt

  # Pipe to jq for filtering
  eqlog parse eqlog_Tarim_project1999.txt | jq 'select(.type == "encounter")'`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().StringVarP(&parsePlayer, "player", "p", "",
		"Logging player's name (overrides the filename-derived hint)")
	parseCmd.Flags().StringVar(&parseSpamFile, "spam-file", "",
		"YAML file extending the chat-spam avoid list")
	parseCmd.Flags().BoolVar(&parseEncounters, "encounters-only", false,
		"Output only encounter messages")
	rootCmd.AddCommand(parseCmd)
}

func buildOptions(player, spamFile, path string) ([]eqlog.Option, error) {
	var opts []eqlog.Option

	if player == "" {
		if hint, ok := logfinder.PlayerFromFilename(path); ok {
			player = hint
		}
	}
	if player != "" {
		opts = append(opts, eqlog.WithPlayerName(player))
	}

	if spamFile != "" {
		list, err := spam.FromFile(spamFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, eqlog.WithSpamList(list))
	}

	return opts, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	if !ValidFormats[parseFormat] {
		return fmt.Errorf("unknown format: %s", parseFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := args[0]
	opts, err := buildOptions(parsePlayer, parseSpamFile, path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := eqlog.NewParser(f, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for msg := range p.Run(ctx) {
		if parseEncounters && msg.Type != eqlog.MessageEncounter {
			continue
		}
		if err := OutputMessage(parseFormat, msg, out); err != nil {
			return err
		}
	}
	return nil
}
