package commands

import (
	"context"
	"fmt"
	"os"

	"trailbook/lib/configutil"
	"trailbook/lib/telemetry"

	"github.com/spf13/cobra"
)

// Config carries the optional trailbook.json5 settings. Everything has
// a sensible default, the file does not need to exist.
type Config struct {
	// MinDelaySeconds is the minimum wait between HTTP requests,
	// both for scraping and for the generative API.
	MinDelaySeconds float64 `json:"min_delay_seconds"`
	Model           string  `json:"model"`
	Cache           string  `json:"cache"`
}

var verbose *bool
var debugHttp *string

var rootCmd = &cobra.Command{
	Use:   "trailbook",
	Short: "trailbook extracts trail journals into a single text document and enhances them with AI-generated trail context.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	debugHttp = rootCmd.PersistentFlags().String("debug-http", "", "Dump every HTTP exchange to the given directory (debug logging must be on).")
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("trailbook.json5")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to read trailbook.json5:", err)
		os.Exit(1)
	}
	return cfg
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
