package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var filesFirst bool

var lsCmd = &cobra.Command{
	Use:   "ls [folder-id]",
	Short: "List a folder (the drive root by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().BoolVar(&filesFirst, "files-first", false, "list files before folders")
	browseCmd.Flags().BoolVar(&filesFirst, "files-first", false, "list files before folders")
}

func listOrder() drive.Order {
	if filesFirst {
		return drive.FilesFirst
	}
	return drive.FoldersFirst
}

func runLs(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	parentID := ""
	if len(args) == 1 {
		parentID = args[0]
	}

	nodes, err := c.List(cmd.Context(), parentID)
	if err != nil {
		return err
	}
	drive.SortNodes(nodes, listOrder())

	printNodes(cmd.OutOrStdout(), nodes)
	return nil
}

func printNodes(w io.Writer, nodes []models.StorageNode) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tSIZE\tID")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", nodeType(n), n.Name, nodeSize(n), n.ID)
	}
	tw.Flush()
}

func nodeType(n models.StorageNode) string {
	if n.IsFolder() {
		return "dir"
	}
	return "file"
}

func nodeSize(n models.StorageNode) string {
	if n.IsFolder() || n.Size == nil {
		return "-"
	}
	return humanize.IBytes(uint64(*n.Size))
}
