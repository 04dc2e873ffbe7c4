package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trailbook/lib/anthropic"
	"trailbook/lib/enhance"
	"trailbook/lib/journal"
	"trailbook/lib/restyutil"
	"trailbook/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	enhanceMode   *string
	enhanceOutput *string
	enhanceCache  *string
)

func init() {
	enhanceMode = enhanceCmd.Flags().String("mode", "context", "Enhancement mode: context, facts or both.")
	enhanceOutput = enhanceCmd.Flags().StringP("output", "o", "", "Output file (default <input>_enhanced.txt).")
	enhanceCache = enhanceCmd.Flags().String("cache", "", "Cache file for API responses (default enhance_cache.json).")
	rootCmd.AddCommand(enhanceCmd)
}

func defaultEnhanceOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_enhanced" + ext
}

var enhanceCmd = &cobra.Command{
	Use:   "enhance <input_file> [--mode context|facts|both] [--output <file>] [--cache <file>]",
	Short: "Augments an extracted journal document with AI-generated trail context.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := enhance.ParseMode(*enhanceMode)
		if err != nil {
			serviceutil.Fatal("invalid mode", err)
		}

		input := args[0]
		content, err := os.ReadFile(input)
		if err != nil {
			serviceutil.Fatal("failed to read input document", err)
		}
		j, err := journal.ParseDocument(string(content))
		if err != nil {
			serviceutil.Fatal("failed to parse input document", err)
		}

		cfg := readConfig()
		cachePath := *enhanceCache
		if cachePath == "" {
			cachePath = cfg.Cache
		}
		if cachePath == "" {
			cachePath = "enhance_cache.json"
		}

		// the cache must load cleanly before any API spend
		cache, err := enhance.OpenCache(cachePath)
		if err != nil {
			serviceutil.Fatal("failed to open enhancement cache", err)
		}

		client, err := anthropic.NewFromEnv()
		if err != nil {
			serviceutil.Fatal("failed to initialize api client", err)
		}
		if cfg.Model != "" && os.Getenv("TRAILBOOK_MODEL") == "" {
			client, err = anthropic.New(anthropic.Options{
				ApiKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseUrl: os.Getenv("ANTHROPIC_BASE_URL"),
				Model:   cfg.Model,
			})
			if err != nil {
				serviceutil.Fatal("failed to initialize api client", err)
			}
		}
		if *debugHttp != "" {
			restyutil.InstrumentClient(client.Http, restyutil.NewFilesystemOutput(*debugHttp))
		}

		enhancer := enhance.New(enhance.Options{
			Mode:     mode,
			Cache:    cache,
			Client:   client,
			MinDelay: time.Duration(cfg.MinDelaySeconds * float64(time.Second)),
		})

		enhanced, stats, err := enhancer.Enhance(cmd.Context(), j)
		if err != nil {
			serviceutil.Fatal("enhancement run aborted", err)
		}

		output := *enhanceOutput
		if output == "" {
			output = defaultEnhanceOutput(input)
		}
		if err := journal.WriteDocument(output, enhanced.Render()); err != nil {
			serviceutil.Fatal("failed to write document", err)
		}

		printEnhanceSummary(mode, stats, output)
	},
}

func printEnhanceSummary(mode enhance.Mode, stats enhance.Stats, output string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Mode", "Entries", "Cache Hits", "API Calls", "Failures", "Output"})
	t.AppendRow(table.Row{
		string(mode),
		stats.Entries,
		stats.CacheHits,
		stats.ApiCalls,
		stats.Failures,
		output,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if stats.Failures > 0 {
		fmt.Fprintf(os.Stderr, "%d enhancement(s) failed, those entries were kept unenhanced\n", stats.Failures)
	}
}
