// Command gsheets queries Google Sheets from the command line.
//
//	gsheets find <key> --sheet Names --direction col Halimah Abraham
//	gsheets values <key> --sheet Names A1:C3
//	gsheets revisions <key>
//	gsheets export <key> --revision head --mime text/csv -o roster.csv
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
