// Package cmd implements the command-line interface for bilisan.
package cmd

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/bilisan-cli/bilisan/color"
	"github.com/bilisan-cli/bilisan/history"
	"github.com/bilisan-cli/bilisan/style"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	historyCmd.SetOut(os.Stdout)
}

// historyCmd displays previously resolved pages, most recent first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display previously resolved pages",
	Run: func(cmd *cobra.Command, args []string) {
		asJson := lo.Must(cmd.Flags().GetBool("json"))

		saved, err := history.Get()
		handleErr(err)

		records := lo.Values(saved)
		sort.Slice(records, func(i, j int) bool {
			return records[i].ResolvedAt > records[j].ResolvedAt
		})

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("history is empty"))
			return
		}

		cmd.Println(style.Faint(util.Quantify(len(records), "resolved page", "resolved pages")))
		for _, record := range records {
			cmd.Printf(
				"%s %s\n",
				style.Fg(color.Blue)(record.URL),
				style.Faint(util.Quantify(record.Parts, "part", "parts")),
			)
		}
	},
}
