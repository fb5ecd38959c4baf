package main

import (
	"fmt"
	"os"

	"github.com/lewtec/cocotool/annotation"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new annotation project",
	Long: `Initialize a new annotation project by creating:
- A sample configuration file (config.yaml)
- An empty SQLite database with the dataset and task tables

Example:
  cocotool init
  cocotool init --config custom-config.yaml --database data.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if configFile == "" {
			configFile = "config.yaml"
		}
		out := cmd.OutOrStdout()

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			fmt.Fprintf(out, "Creating sample configuration file: %s\n", configFile)
			if err := annotation.WriteSampleConfig(configFile); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
		} else {
			fmt.Fprintf(out, "Configuration file already exists: %s\n", configFile)
		}

		config, err := annotation.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if databaseFile, _ := cmd.Flags().GetString("database"); databaseFile != "" {
			config.Database = databaseFile
		}

		fmt.Fprintf(out, "Creating database: %s\n", config.Database)
		db, err := annotation.GetDatabase(config.Database)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Load a dataset: cocotool dataset load -c %s -d dataset.json\n", configFile)
		fmt.Fprintf(out, "  2. Start the annotation server: cocotool -c %s\n", configFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
