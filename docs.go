// Copyright 2024 The Alis Build Platform. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gsheets is a resilient client layer over Google Sheets and Google Drive.

A Client opens or creates a Spreadsheet, a Spreadsheet tracks its active Worksheet, and a Worksheet
reads, writes, clears and formats cells. Every remote call runs through a retry.Executor, so quota
errors are retried with exponential backoff and callers only see the final success or the exhausted
failure.

The main query is Worksheet.FindRegions: the worksheet contents are fetched once into a grid.Snapshot,
matched against a list of terms and merged into contiguous regions, longest last. Every call that
changes the worksheet contents or structure closes the snapshot so the next query refetches.

Example:

	client, err := gsheets.NewClient(ctx, gsheets.WithLogger(alog.New()))
	if err != nil {
		return err
	}
	ss, err := client.Open(ctx, gsheets.OpenRequest{Title: "Roster"})
	if err != nil {
		return err
	}
	ws := ss.Active()
	regions, err := ws.FindRegions(ctx, []string{"Halimah", "Abraham"}, grid.AlongColumns)
	if err != nil || len(regions) == 0 {
		return err
	}
	values, err := ws.Values(ctx, &regions[len(regions)-1])

A Client returns one Spreadsheet per key and a Spreadsheet one Worksheet per tab, so every handle to
a tab shares its snapshot. A Client and the objects it returns are not safe for concurrent use.
*/
package gsheets //import "go.alis.build/gsheets"
