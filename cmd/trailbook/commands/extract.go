package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"trailbook/lib/journal"
	"trailbook/lib/restyutil"
	"trailbook/lib/scrapers/trailjournals"
	"trailbook/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var extractOutput *string

func init() {
	extractOutput = extractCmd.Flags().StringP("output", "o", "", "Output file (default journal_<id>.txt).")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <journal_id>",
	Short: "Scrapes a journal's entries and writes them as one ordered text document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		journalID, err := strconv.Atoi(args[0])
		if err != nil || journalID <= 0 {
			serviceutil.Fatal("journal id must be a positive integer", fmt.Errorf("got %q", args[0]))
		}

		cfg := readConfig()
		client, err := trailjournals.NewClient(trailjournals.ClientOptions{
			MinDelay: time.Duration(cfg.MinDelaySeconds * float64(time.Second)),
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize scraper client", err)
		}
		if *debugHttp != "" {
			client.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(*debugHttp))
		}

		ctx := cmd.Context()
		result, err := client.FetchJournal(ctx, journalID)
		if err != nil {
			// partial pages are not worth a half-finished book
			serviceutil.Fatal(
				fmt.Sprintf("extraction aborted after %d pages (%d entries)", len(result.Pages), result.EntryCount()),
				err,
			)
		}

		j := journal.Assemble(result.Pages)
		output := *extractOutput
		if output == "" {
			output = fmt.Sprintf("journal_%d.txt", journalID)
		}
		if err := journal.WriteDocument(output, j.Render()); err != nil {
			serviceutil.Fatal("failed to write document", err)
		}

		printExtractSummary(journalID, result, j, output)
	},
}

func printExtractSummary(journalID int, result trailjournals.Result, j journal.Journal, output string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Journal", "Pages", "Entries", "Skipped", "From", "To", "Output"})

	from, to := "", ""
	if len(j.Entries) > 0 {
		from = j.Entries[0].Date.Format("2006-01-02")
		to = j.Entries[len(j.Entries)-1].Date.Format("2006-01-02")
	}
	t.AppendRow(table.Row{
		journalID,
		len(result.Pages),
		len(j.Entries),
		result.Skipped,
		from,
		to,
		output,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
