package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrich/internal/store"
)

var (
	contactsSpreadsheet string
	contactsLimit       int
	contactsOffset      int
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect persisted contacts",
}

var contactsGetCmd = &cobra.Command{
	Use:   "get <linkedin-username>",
	Short: "Print one persisted contact as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "contacts")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Store.GetContact(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "contacts")
		if err != nil {
			return err
		}
		defer env.Close()

		recs, err := env.Store.ListContacts(cmd.Context(), store.ContactFilter{
			SpreadsheetID: contactsSpreadsheet,
			Limit:         contactsLimit,
			Offset:        contactsOffset,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !isTerminal(out) {
			return json.NewEncoder(out).Encode(recs)
		}
		fmt.Fprintln(out, renderContacts(recs))
		return nil
	},
}

func renderContacts(recs []store.ContactRecord) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		name, company := "", ""
		if r.Contact != nil {
			name = r.Contact.ParsedName
			company = r.Contact.ContactCompanyName
		}
		rows = append(rows, []string{
			r.LinkedInUsername,
			name,
			company,
			r.SpreadsheetID,
			strconv.Itoa(r.RowNumber),
			r.UpdatedAt.Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"Username", "Name", "Company", "Spreadsheet", "Row", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func init() {
	contactsListCmd.Flags().StringVar(&contactsSpreadsheet, "spreadsheet", "", "only contacts from this spreadsheet")
	contactsListCmd.Flags().IntVar(&contactsLimit, "limit", 100, "maximum contacts to list")
	contactsListCmd.Flags().IntVar(&contactsOffset, "offset", 0, "contacts to skip")
	contactsCmd.AddCommand(contactsGetCmd, contactsListCmd)
	rootCmd.AddCommand(contactsCmd)
}
