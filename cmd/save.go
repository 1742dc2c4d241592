package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrich/internal/review"
)

var (
	saveSpreadsheet string
	saveRow         int
	saveSets        []string
	saveUsername    string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write reviewed cells to a row of the primary sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cells, err := parseCells(saveSets)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "save")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Review.Save(cmd.Context(), review.Request{
			SpreadsheetID:    saveSpreadsheet,
			RowNumber:        saveRow,
			Cells:            cells,
			LinkedInUsername: saveUsername,
		})
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
	},
}

// parseCells turns column=value pairs into a cell map. The value may be
// empty; the column may not.
func parseCells(pairs []string) (map[string]string, error) {
	cells := make(map[string]string, len(pairs))
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, eris.Errorf("invalid --set %q, want column=value", p)
		}
		cells[col] = val
	}
	return cells, nil
}

func init() {
	saveCmd.Flags().StringVar(&saveSpreadsheet, "spreadsheet", "", "spreadsheet id")
	saveCmd.Flags().IntVar(&saveRow, "row", 0, "1-based data row number")
	saveCmd.Flags().StringArrayVar(&saveSets, "set", nil, "cell to write as column=value (repeatable)")
	saveCmd.Flags().StringVar(&saveUsername, "username", "", "LinkedIn username whose images are removed after the save")
	rootCmd.AddCommand(saveCmd)
}
