package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/core/tables"
	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the importable tables and their required columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTables(cmd.OutOrStdout())
		},
	}
}

func listTables(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tLABEL\tREQUIRED\tCOLUMNS")
	for _, def := range tables.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", def.Table, def.Label, strings.Join(def.Required(), ","), len(def.Fields))
	}
	return w.Flush()
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <table>",
		Short: "Print the CSV template for a table; reference notes go to stderr",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := core.ParseTable(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", core.ErrUnknownTable, args[0])
			}
			def, ok := tables.Definition(t)
			if !ok {
				return fmt.Errorf("%w: %q", core.ErrUnknownTable, args[0])
			}
			for _, note := range tables.TemplateNotes(def) {
				fmt.Fprintln(cmd.ErrOrStderr(), note)
			}
			_, err := io.WriteString(cmd.OutOrStdout(), tables.Template(def))
			return err
		},
	}
}
