package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/neonsnake/internal/config"
)

var flagConfigWrite string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after layering, in YAML.

Search order: --config, ~/.neonsnake/config.yaml, ` + config.LocalPath + `,
then the built-in defaults. A file only overrides the keys it sets.

Examples:
  neonsnake config
  neonsnake config --write ~/.neonsnake/config.yaml`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().StringVar(&flagConfigWrite, "write", "", "Write the effective config to this file")
}

func runConfig(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	if flagConfigWrite != "" {
		if err := config.WriteYAML(cfg, flagConfigWrite); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Wrote %s\n", flagConfigWrite)
		return
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		fail("%v", err)
	}
	enc.Close()
}
