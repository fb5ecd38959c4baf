package main

import (
	"fmt"

	"github.com/lewtec/cocotool/dataset"
	"github.com/spf13/cobra"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Load, export or drop the stored COCO-style dataset",
}

var datasetLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a dataset file into the database",
	Long: `Inserts the categories, images, annotations and licenses of a dataset file.
Records whose id is already stored are skipped, so loading the same file
twice is harmless.

Example:
  cocotool dataset load -d dataset.json --normalize`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetPath, _ := cmd.Flags().GetString("dataset")
		if datasetPath == "" {
			return fmt.Errorf("--dataset flag is required")
		}
		normalize, _ := cmd.Flags().GetBool("normalize")

		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := loadDatasetFile(cmd, store, datasetPath, normalize)
		if err != nil {
			return err
		}
		for _, batch := range report.Batches() {
			fmt.Fprintln(cmd.OutOrStdout(), batch)
		}
		return nil
	},
}

var datasetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored dataset to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			return fmt.Errorf("--output flag is required")
		}
		denormalize, _ := cmd.Flags().GetBool("denormalize")

		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ds, err := dataset.Export(cmd.Context(), store, dataset.ExportOptions{Denormalize: denormalize})
		if err != nil {
			return err
		}
		fs, name, err := dataset.HostFS(outputPath)
		if err != nil {
			return err
		}
		if err := dataset.WriteDataset(fs, name, ds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d images and %d annotations to %s\n", len(ds.Images), len(ds.Annotations), outputPath)
		return nil
	},
}

var datasetDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Remove every category, image, annotation and license",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()
		return dataset.Drop(cmd.Context(), store)
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetLoadCmd, datasetExportCmd, datasetDropCmd)

	datasetLoadCmd.Flags().StringP("dataset", "d", "", "Path to a json dataset file")
	datasetLoadCmd.Flags().BoolP("normalize", "n", false, "Store bbox and keypoints as fractions of the image size")

	datasetExportCmd.Flags().StringP("output", "o", "", "Save path for the json dataset")
	datasetExportCmd.Flags().BoolP("denormalize", "u", false, "Convert bbox and keypoints back to pixels")
}
