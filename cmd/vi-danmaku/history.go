package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/lixenwraith/vi-danmaku/journal"
)

// printHistory writes the newest n journal rows as a table
func printHistory(ctx context.Context, w io.Writer, j *journal.Journal, n int) error {
	rows, err := j.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no reloads recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPATTERN\tRESULT\tPOLICY\tERROR")
	for _, r := range rows {
		result := "ok"
		switch {
		case !r.OK && r.Stale:
			result = "stale"
		case !r.OK:
			result = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.At.Format(time.DateTime), r.Pattern, result, r.Policy, r.Error)
	}
	return tw.Flush()
}
