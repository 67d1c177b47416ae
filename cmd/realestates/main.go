// Command realestates runs and administers the real estates service.
//
//	realestates serve                       run the HTTP server
//	realestates db migrate up|down|status   manage the PostgreSQL schema
//	realestates token --user alice          print a bearer token
//	realestates config show                 print the effective configuration
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "realestates",
	Short:         "Real estates listing service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default realestates.yml when present)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
