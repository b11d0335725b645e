// Package eqlog parses EverQuest combat logs into discrete encounters.
//
// The core is a pull-based parser: feed it a fully materialized log (or
// append lines as they arrive) and repeatedly call ParseNext to receive
// finalized Encounter values in start-time order. Run wraps the same parse
// in a goroutine behind the streaming message protocol (progress, encounter,
// metadata, error) consumed by UI layers, and Follower does the same over a
// live, growing log file.
//
// Basic usage:
//
//	f, _ := os.Open("eqlog_Tarim_project1999.txt")
//	p, err := eqlog.NewParser(f, eqlog.WithPlayerName("Tarim"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for enc := p.ParseNext(); enc != nil; enc = p.ParseNext() {
//	    fmt.Println(enc.Zone, enc.Duration)
//	}
package eqlog
