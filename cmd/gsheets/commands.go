package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.alis.build/gsheets"
	"go.alis.build/gsheets/grid"
)

func (a *app) findCmd() *cobra.Command {
	var (
		direction  string
		withValues bool
		search     string
	)
	cmd := &cobra.Command{
		Use:   "find <key|url> <term>...",
		Short: "Find the regions matching terms, longest last",
		Long: `Find matches every term as a whole, case-insensitive token and merges adjacent hits along
the direction into regions. Pass "" as the last term to also match blank cells.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := grid.ParseDirection(direction)
			if err != nil {
				return err
			}
			var bounds *grid.Region
			if search != "" {
				r, err := grid.ParseRegion(search)
				if err != nil {
					return err
				}
				bounds = &r
			}
			ss, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			ws := ss.Active()
			if err := ws.SetSearchRegion(bounds); err != nil {
				return err
			}
			regions, err := ws.FindRegions(cmd.Context(), args[1:], dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range regions {
				if !withValues {
					fmt.Fprintln(out, gsheets.RegionLabel(r))
					continue
				}
				values, err := ws.Values(cmd.Context(), &r)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", gsheets.RegionLabel(r), joinRows(values, " | "))
			}
			return nil
		},
	}
	a.addSheetFlag(cmd)
	cmd.Flags().StringVarP(&direction, "direction", "d", "col", "search direction: col or row")
	cmd.Flags().BoolVar(&withValues, "values", false, "print the values of each region")
	cmd.Flags().StringVar(&search, "search", "", "restrict the search to an A1 range")
	return cmd
}

func (a *app) valuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values <key|url> [range]",
		Short: "Print the values of a range, tab separated",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var region *grid.Region
			if len(args) == 2 {
				r, err := grid.ParseRegion(args[1])
				if err != nil {
					return err
				}
				region = &r
			}
			ss, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			values, err := ss.Active().Values(cmd.Context(), region)
			if err != nil {
				return err
			}
			for _, row := range values {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(row, "\t"))
			}
			return nil
		},
	}
	a.addSheetFlag(cmd)
	return cmd
}

func (a *app) revisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revisions <key|url>",
		Short: "List the revisions, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			revs, err := ss.Revisions(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range revs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.ModifiedTime.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var revision, mime, output string
	cmd := &cobra.Command{
		Use:   "export <key|url>",
		Short: "Export a revision of the spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := ss.Export(cmd.Context(), w, revision, mime)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&revision, "revision", "head", "revision ID, or head for the latest")
	cmd.Flags().StringVar(&mime, "mime", gsheets.MimeODS, "export MIME type")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func joinRows(values [][]string, sep string) string {
	rows := make([]string, len(values))
	for i, row := range values {
		rows[i] = strings.Join(row, "\t")
	}
	return strings.Join(rows, sep)
}
