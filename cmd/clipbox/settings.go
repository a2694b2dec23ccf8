package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/core"
	"github.com/jmylchreest/clipbox/internal/model"
)

var settingsOpts struct {
	title string
	icon  string
}

var settingsCmd = &cobra.Command{
	Use:   "settings [show|set]",
	Short: "Show or change the header title and icon",
	Long: `Show or change the popup header.

Available icons: heart, cat, book, robot, box, github.

Examples:
  clipbox settings
  clipbox settings set --title "Snippets" --icon robot`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"show", "set"},
	RunE:      runSettings,
}

var iconsCmd = &cobra.Command{
	Use:   "icons [list|set <type> <icon>|rm <type>]",
	Short: "Manage category icons",
	Long: `List, set or remove the icon shown next to a category.

Removing the icon of a built-in category restores its default icon; other
categories fall back to the pin.

Examples:
  clipbox icons
  clipbox icons set recipes 🍳
  clipbox icons rm recipes`,
	Args: cobra.ArbitraryArgs,
	RunE: runIcons,
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List categories in use with their counts",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func init() {
	rootCmd.AddCommand(settingsCmd, iconsCmd, typesCmd)

	settingsCmd.Flags().StringVar(&settingsOpts.title, "title", "",
		"Header title")
	settingsCmd.Flags().StringVar(&settingsOpts.icon, "icon", "",
		"Header icon name")
}

func runSettings(cmd *cobra.Command, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		printSettings(cmd.OutOrStdout(), session.Settings())
		return nil
	case "set":
		current := session.Settings()
		title, icon := current.Title, string(current.Icon)
		if cmd.Flags().Changed("title") {
			title = settingsOpts.title
		}
		if cmd.Flags().Changed("icon") {
			icon = settingsOpts.icon
		}

		saved, err := session.SaveSettings(cmd.Context(), title, icon)
		if err != nil {
			return err
		}
		printSettings(cmd.OutOrStdout(), saved)
		return nil
	default:
		return fmt.Errorf("unknown settings action %q (use show or set)", action)
	}
}

func printSettings(w io.Writer, s model.Settings) {
	fmt.Fprintf(w, "title: %s\n", s.Title)
	fmt.Fprintf(w, "icon:  %s %s\n", s.Glyph(), s.Icon)
}

func runIcons(cmd *cobra.Command, args []string) error {
	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		icons := session.Icons()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, typ := range icons.Types() {
			fmt.Fprintf(w, "%s\t%s\n", icons[typ], typ)
		}
		return w.Flush()
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: clipbox icons set <type> <icon>")
		}
		return session.SetTypeIcon(cmd.Context(), args[1], args[2])
	case "rm", "remove", "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: clipbox icons rm <type>")
		}
		return session.RemoveTypeIcon(cmd.Context(), args[1])
	default:
		return fmt.Errorf("unknown icons action %q (use list, set or rm)", action)
	}
}

func runTypes(cmd *cobra.Command, args []string) error {
	snippets := session.All()

	counts := make(map[string]int)
	for _, sn := range snippets {
		counts[sn.Type]++
	}

	types := core.UniqueTypes(snippets)
	if counts[""] > 0 {
		types = append(types, "")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, typ := range types {
		label := typ
		if label == "" {
			label = model.UncategorizedLabel
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", session.IconFor(typ), label, counts[typ],
			core.ColorForType(typ).Hex())
	}
	return w.Flush()
}
