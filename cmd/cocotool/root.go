package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/lewtec/cocotool/annotation"
	"github.com/lewtec/cocotool/dataset"
	"github.com/lewtec/cocotool/internal/domain"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cocotool",
	Short: "Edit and convert COCO-style annotation datasets",
	Long: strings.TrimSpace(`
Serves the annotation editor API over a SQLite document store, and loads,
exports and converts COCO-style datasets and bounding box tasks.

Without a subcommand the annotation server is started. A dataset can be
loaded before serving with --dataset, optionally dropping the stored one
first with --drop.
    `),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.Addr = addr
		}

		store, closeStore, err := annotation.OpenStore(config.Database)
		if err != nil {
			return err
		}
		defer closeStore()

		if drop, _ := cmd.Flags().GetBool("drop"); drop {
			if err := dataset.Drop(cmd.Context(), store); err != nil {
				return err
			}
		}
		if datasetPath, _ := cmd.Flags().GetString("dataset"); datasetPath != "" {
			if _, err := loadDatasetFile(cmd, store, datasetPath, false); err != nil {
				return err
			}
		}

		app := &annotation.AnnotatorApp{
			Store:  store,
			Config: config,
		}
		log.Printf("Database: %s", config.Database)
		log.Printf("Starting server on: %s", config.Addr)
		return http.ListenAndServe(config.Addr, app.GetHTTPHandler())
	},
}

// loadConfig reads the config named by --config and applies --database
func loadConfig(cmd *cobra.Command) (*annotation.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	config, err := annotation.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if databaseFile, _ := cmd.Flags().GetString("database"); databaseFile != "" {
		config.Database = databaseFile
	}
	return config, nil
}

// openStore loads the config and opens the store it names
func openStore(cmd *cobra.Command) (*annotation.Config, *domain.Store, func() error, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	store, closeStore, err := annotation.OpenStore(config.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return config, store, closeStore, nil
}

func loadDatasetFile(cmd *cobra.Command, store *domain.Store, path string, normalize bool) (*dataset.LoadReport, error) {
	fs, name, err := dataset.HostFS(path)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.ReadDataset(fs, name)
	if err != nil {
		return nil, err
	}
	return dataset.Load(cmd.Context(), store, ds, dataset.LoadOptions{Normalize: normalize})
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Printf("Error executing command: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file, defaults to $"+annotation.ConfigEnv)
	rootCmd.PersistentFlags().String("database", "", "Database file path, overrides the config file")
	rootCmd.Flags().StringP("addr", "a", "", "Address to bind the webserver, overrides the config file")
	rootCmd.Flags().String("dataset", "", "Dataset to load before serving")
	rootCmd.Flags().Bool("drop", false, "Drop the stored dataset before serving")
}
