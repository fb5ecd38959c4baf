package main

import (
	"fmt"

	"github.com/lewtec/cocotool/dataset"
	"github.com/lewtec/cocotool/internal/domain"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage bounding box collection tasks",
}

func readTaskData(path string) (*dataset.TaskData, error) {
	fs, name, err := dataset.HostFS(path)
	if err != nil {
		return nil, err
	}
	return dataset.ReadTaskData(fs, name)
}

var tasksLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load tasks and instructions from a json file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskPath, _ := cmd.Flags().GetString("tasks")
		if taskPath == "" {
			return fmt.Errorf("--tasks flag is required")
		}
		td, err := readTaskData(taskPath)
		if err != nil {
			return err
		}
		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := dataset.LoadTasks(cmd.Context(), store.Tasks, td)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Instructions)
		fmt.Fprintln(cmd.OutOrStdout(), report.Tasks)
		return nil
	},
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Split every stored image into bounding box tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, _ := cmd.Flags().GetString("category")
		instructionsID, _ := cmd.Flags().GetString("instructions")
		if categoryID == "" || instructionsID == "" {
			return fmt.Errorf("--category and --instructions flags are required")
		}
		config, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		perTask, _ := cmd.Flags().GetInt("per-task")
		if perTask == 0 {
			perTask = config.Tasks.ImagesPerTask
		}
		tasks, err := dataset.CreateTasksForAllImages(cmd.Context(), store, domain.ID(categoryID), domain.ID(instructionsID), perTask, nil)
		if err != nil {
			return err
		}
		if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
			fs, name, err := dataset.HostFS(outputPath)
			if err != nil {
				return err
			}
			if err := dataset.WriteJSON(fs, name, &dataset.TaskData{Tasks: tasks}); err != nil {
				return err
			}
		}
		for _, task := range tasks {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d images\n", task.ID, len(task.ImageIDs))
		}
		return nil
	},
}

var tasksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the results workers submitted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			return fmt.Errorf("--output flag is required")
		}
		var taskIDs []domain.ID
		if taskPath, _ := cmd.Flags().GetString("tasks"); taskPath != "" {
			td, err := readTaskData(taskPath)
			if err != nil {
				return err
			}
			taskIDs = td.TaskIDs()
		}
		denormalize, _ := cmd.Flags().GetBool("denormalize")

		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		results, err := dataset.ExportTaskResults(cmd.Context(), store.Tasks, taskIDs, denormalize)
		if err != nil {
			return err
		}
		fs, name, err := dataset.HostFS(outputPath)
		if err != nil {
			return err
		}
		if err := dataset.WriteJSON(fs, name, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d task results to %s\n", len(results), outputPath)
		return nil
	},
}

var tasksDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Remove every task, instruction and result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()
		return dataset.DropTasks(cmd.Context(), store.Tasks)
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksLoadCmd, tasksCreateCmd, tasksExportCmd, tasksDropCmd)

	tasksLoadCmd.Flags().StringP("tasks", "t", "", "Path to a json task file with tasks and, optionally, instructions")

	tasksCreateCmd.Flags().String("category", "", "Category workers draw boxes for")
	tasksCreateCmd.Flags().String("instructions", "", "Instructions shown to workers")
	tasksCreateCmd.Flags().Int("per-task", 0, "Images per task, defaults to tasks.images_per_task")
	tasksCreateCmd.Flags().StringP("output", "o", "", "Also save the created tasks to this file")

	tasksExportCmd.Flags().StringP("tasks", "t", "", "Only export results of the tasks in this file")
	tasksExportCmd.Flags().StringP("output", "o", "", "Save path for the json results")
	tasksExportCmd.Flags().BoolP("denormalize", "u", false, "Convert boxes back to pixels")
}
