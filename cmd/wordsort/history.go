package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hazyhaar/wordsort/pkg/history"
)

func runHistory(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	limit := fs.Int("limit", 20, "number of runs to show")
	pruneDays := fs.Int("prune-days", 0, "delete runs older than this many days first")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	cfg, _, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "history: %v\n", err)
		return exitFailure
	}
	if cfg.HistoryDB == "" {
		fmt.Fprintln(stderr, "history: history_db is not configured")
		return exitFailure
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintf(stderr, "history: %v\n", err)
		return exitFailure
	}
	defer store.Close()

	ctx := context.Background()
	if *pruneDays > 0 {
		n, err := store.Prune(ctx, time.Now().AddDate(0, 0, -*pruneDays))
		if err != nil {
			fmt.Fprintf(stderr, "history: %v\n", err)
			return exitFailure
		}
		fmt.Fprintf(stderr, "%d run(s) pruned\n", n)
	}

	runs, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "history: %v\n", err)
		return exitFailure
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "history: %v\n", err)
		return exitFailure
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTRANSPORT\tLOCALE\tSTATUS\tTOKENS\tWORDS")
	for _, r := range runs {
		status := string(r.Status)
		if r.Reason != "" {
			status += " (" + string(r.Reason) + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.CreatedAt.Format(time.DateTime), r.Transport, r.Locale, status, r.InputTokens, r.OutputWords)
	}
	tw.Flush()
	fmt.Fprintf(stdout, "\n%d run(s), %d word(s) sorted\n", stats.Total, stats.Words)
	return exitOK
}
