package main

import (
	"errors"
	"fmt"

	"cloud-drive/internal/models"
	"cloud-drive/internal/navigator"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	actionUp      = ".. (up)"
	actionCrumb   = "Jump to breadcrumb..."
	actionRefresh = "Refresh"
	actionQuit    = "Quit"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the drive interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

// Menu actions use negative indices so they never collide with entry positions.
const (
	indexUp = -1 - iota
	indexCrumb
	indexQuit
	indexRefresh
)

type browseItem struct {
	Label string
	Index int
}

func menuItems(entries []models.StorageNode, canGoUp bool) []browseItem {
	items := make([]browseItem, 0, len(entries)+4)
	if canGoUp {
		items = append(items, browseItem{Label: actionUp, Index: indexUp})
	}
	for i, n := range entries {
		label := fmt.Sprintf("[file] %s  %s  %s", n.Name, nodeSize(n), n.ID)
		if n.IsFolder() {
			label = "[dir]  " + n.Name + "/"
		}
		items = append(items, browseItem{Label: label, Index: i})
	}
	return append(items,
		browseItem{Label: actionCrumb, Index: indexCrumb},
		browseItem{Label: actionRefresh, Index: indexRefresh},
		browseItem{Label: actionQuit, Index: indexQuit},
	)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	me, err := c.Me(cmd.Context())
	if err != nil {
		return err
	}
	if !me.HasDriveRoot() {
		return errors.New("your drive has not been provisioned yet")
	}

	nav := navigator.New(c, listOrder())
	if err := nav.Init(cmd.Context(), *me.DriveRootID, "My Drive"); err != nil {
		return err
	}

	for {
		entries := nav.Entries()
		items := menuItems(entries, len(nav.Breadcrumbs()) > 1)

		prompt := promptui.Select{
			Label: nav.Path(),
			Items: items,
			Size:  15,
			Templates: &promptui.SelectTemplates{
				Label:    "{{ . }}",
				Active:   "> {{ .Label | cyan }}",
				Inactive: "  {{ .Label }}",
			},
		}
		idx, _, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		choice := items[idx]
		switch choice.Index {
		case indexQuit:
			return nil
		case indexUp:
			err = nav.JumpTo(cmd.Context(), len(nav.Breadcrumbs())-2)
		case indexCrumb:
			err = jumpToCrumb(cmd, nav)
		case indexRefresh:
			err = nav.Refresh(cmd.Context())
		default:
			node := entries[choice.Index]
			if !node.IsFolder() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is a file; share it with 'drive share %s'\n", node.Name, node.ID)
				continue
			}
			err = nav.Enter(cmd.Context(), node)
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
	}
}

func jumpToCrumb(cmd *cobra.Command, nav *navigator.Navigator) error {
	crumbs := nav.Breadcrumbs()
	labels := make([]string, len(crumbs))
	for i, c := range crumbs {
		labels[i] = c.Name
	}

	prompt := promptui.Select{Label: "Breadcrumbs", Items: labels}
	idx, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		return err
	}
	return nav.JumpTo(cmd.Context(), idx)
}
