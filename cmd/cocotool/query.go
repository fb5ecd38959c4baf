package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lewtec/cocotool/annotation"
	"github.com/lewtec/cocotool/internal/domain"
	"github.com/spf13/cobra"
)

func printCounts(cmd *cobra.Command, w io.Writer, store *domain.Store) error {
	ctx := cmd.Context()
	counts := []struct {
		name  string
		count func() (int64, error)
	}{
		{"categories", func() (int64, error) { return store.Categories.Count(ctx) }},
		{"images", func() (int64, error) { return store.Images.Count(ctx) }},
		{"annotations", func() (int64, error) { return store.Annotations.Count(ctx) }},
		{"licenses", func() (int64, error) { return store.Licenses.Count(ctx) }},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return fmt.Errorf("while counting %s: %w", c.name, err)
		}
		fmt.Fprintf(w, "%s\t%d\n", c.name, n)
	}
	return nil
}

func printAnnotations(cmd *cobra.Command, w io.Writer, store *domain.Store, imageID domain.ID) error {
	anns, err := store.Annotations.ListForImage(cmd.Context(), imageID)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join([]string{"id", "category_id", "bbox"}, "\t"))
	for _, ann := range anns {
		fmt.Fprintf(w, "%s\t%s\t%v\n", ann.ID, ann.CategoryID, ann.BBox)
	}
	return nil
}

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query database [image_id]",
	Short: "Queries the annotation database",
	Long: `Without an image id, prints how many records each collection holds.
With one, prints the annotations of that image.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := annotation.OpenStore(args[0])
		if err != nil {
			return err
		}
		defer closeStore()

		if len(args) < 2 {
			return printCounts(cmd, cmd.OutOrStdout(), store)
		}
		return printAnnotations(cmd, cmd.OutOrStdout(), store, domain.ID(args[1]))
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
