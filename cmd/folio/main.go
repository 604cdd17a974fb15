// Command folio serves a single-page portfolio and scaffolds new sites.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A single-page portfolio server built with Go, Echo, and templ",
	Long: `folio serves a one-page portfolio: a hero with a 3D scene, about,
projects, skills, and a contact form, with sections that fade in as they
scroll into view and a navbar that collapses on narrow screens.

Configuration comes from folio.yml, overridden by FOLIO_* environment
variables. A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "folio.yml", "config file path")
	rootCmd.AddCommand(serveCmd, initCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
