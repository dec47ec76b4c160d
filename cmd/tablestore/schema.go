package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/tablestore/pkg/tableformat"
)

func newSchemaCommand(_ *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the schema recorded for a table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the side-car metadata as JSON")
	return cmd
}

func runSchema(out io.Writer, path string, asJSON bool) error {
	meta, err := tableformat.LoadSettings(tableformat.SidecarPath(path))
	if err != nil {
		return err
	}
	info, err := tableformat.ReadTableInfo(meta)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := gojson.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fi := tableformat.GetFormatInfo(info.Format)
	fmt.Fprintf(out, "Format:   %s (%s compression)\n", fi.Name, fi.Compression)
	fmt.Fprintf(out, "Row keys: %v\n\n", info.RowKey)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tTYPE\tSTORED AS")
	for _, c := range info.Schema.Columns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.Ordinal, c.Name, c.Type, tableformat.PhysicalName(c.Ordinal, c.Name))
	}
	return tw.Flush()
}
