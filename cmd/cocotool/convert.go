package main

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/lewtec/cocotool/dataset"
	"github.com/lewtec/cocotool/internal/domain"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert detector output into COCO-style datasets",
}

var convertOpenPoseCmd = &cobra.Command{
	Use:   "openpose <keypoints-dir> <images-dir>",
	Short: "Convert OpenPose BODY_25 detections into a COCO-18 keypoint dataset",
	Long: `Reads every <name>_keypoints.json file in keypoints-dir, sizes the matching
<name>.jpg in images-dir and writes one person annotation per detection.

Example:
  cocotool convert openpose ./keypoints ./images -o dataset.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			return fmt.Errorf("--output flag is required")
		}
		urlPrefix, _ := cmd.Flags().GetString("url-prefix")
		if urlPrefix == "" {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			urlPrefix = config.Tasks.URLPrefix
		}
		if urlPrefix == "" {
			urlPrefix = dataset.DefaultImageURLPrefix
		}

		ds, err := dataset.ConvertOpenPose(osfs.New(args[0]), osfs.New(args[1]), urlPrefix)
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
		fmt.Fprintf(cmd.OutOrStdout(), "converted %d images with %d people to %s\n", len(ds.Images), len(ds.Annotations), outputPath)
		return nil
	},
}

var convertImagesCmd = &cobra.Command{
	Use:   "images <images-dir>",
	Short: "Build a dataset out of a folder of images",
	Long: `Walks a folder of images and writes a dataset with one image record per
distinct file content, identified by its sha256. Files that are not images
are skipped. The dataset has no annotations yet and can be loaded with
'cocotool dataset load'.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return err
		}
		fileInfo, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() {
			return fmt.Errorf("%s: must be a directory", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			return fmt.Errorf("--output flag is required")
		}
		jobs, _ := cmd.Flags().GetUint("jobs")
		urlPrefix, _ := cmd.Flags().GetString("url-prefix")

		images, err := dataset.IngestImages(osfs.New(args[0]), int(jobs), urlPrefix)
		if err != nil {
			return err
		}
		fs, name, err := dataset.HostFS(outputPath)
		if err != nil {
			return err
		}
		if err := dataset.WriteDataset(fs, name, &domain.Dataset{Images: images}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "found %d images, saved to %s\n", len(images), outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(convertOpenPoseCmd, convertImagesCmd)

	convertImagesCmd.Flags().StringP("output", "o", "", "Save path for the json dataset")
	convertImagesCmd.Flags().UintP("jobs", "j", 1, "Amount of concurrent image readers")
	convertImagesCmd.Flags().String("url-prefix", "", "URL the images are served from")

	convertOpenPoseCmd.Flags().StringP("output", "o", "", "Save path for the json dataset")
	convertOpenPoseCmd.Flags().String("url-prefix", "", "URL the images are served from")
}
