package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/eqlog/eqlog-go/pkg/eqlog"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputMessage writes one protocol message in the specified format.
func OutputMessage(format string, msg eqlog.Message, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(msg, out)
	case "pretty":
		return OutputPretty(msg, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a message as JSON Lines format.
func OutputJSON(msg eqlog.Message, out io.Writer) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a message in human-readable format.
func OutputPretty(msg eqlog.Message, out io.Writer) error {
	var err error
	switch msg.Type {
	case eqlog.MessageProgress:
		_, err = fmt.Fprintf(out, "... %d/%d lines\n", msg.Progress.Current, msg.Progress.Total)
	case eqlog.MessageEncounter:
		enc := msg.Encounter
		start := time.UnixMilli(enc.Start).Format("15:04:05")
		dur := time.Duration(enc.Duration) * time.Millisecond
		zone := enc.Zone
		if zone == "" {
			zone = "unknown zone"
		}
		tags := ""
		if enc.IsBoss {
			tags += " (boss)"
		}
		if enc.IsFailed {
			tags += " (failed)"
		}
		_, err = fmt.Fprintf(out, "[%s] %s  %s  %d entities%s\n",
			start, zone, dur, len(enc.Entities), tags)
	case eqlog.MessageMetadata:
		md := msg.Metadata
		_, err = fmt.Fprintf(out, "= logged by %s, %s to %s\n",
			md.LoggedBy,
			time.UnixMilli(md.Start).Format("2006-01-02 15:04:05"),
			time.UnixMilli(md.End).Format("2006-01-02 15:04:05"))
	case eqlog.MessageError:
		_, err = fmt.Fprintf(out, "! %s\n", msg.Error)
	default:
		_, err = fmt.Fprintf(out, "* %s\n", msg.Type)
	}
	return err
}
