package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrich/internal/enrich"
)

var sheetsJSON bool

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the working folder's spreadsheets with unprocessed-row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "sheets")
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Catalog.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sheetsJSON || !isTerminal(out) {
			return json.NewEncoder(out).Encode(list)
		}
		fmt.Fprintln(out, renderSpreadsheets(list))
		return nil
	},
}

func renderSpreadsheets(list []enrich.SpreadsheetSummary) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.ID, s.Name, strconv.Itoa(s.Unprocessed)})
	}
	return renderTable(
		[]string{"ID", "Name", "Unprocessed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func init() {
	sheetsCmd.Flags().BoolVar(&sheetsJSON, "json", false, "print JSON even on a terminal")
	rootCmd.AddCommand(sheetsCmd)
}
