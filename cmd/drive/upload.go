package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	uploadParent string
	uploadName   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file>",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadParent, "parent", "p", "", "target folder id (default: drive root)")
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "remote file name (default: local base name)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()

	name := uploadName
	if name == "" {
		name = filepath.Base(args[0])
	}

	result, err := c.Upload(cmd.Context(), uploadParent, name, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\nstorage used: %s\n",
		name, result.FileID, humanize.IBytes(uint64(result.StorageUsed)))
	return nil
}
