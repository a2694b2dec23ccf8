package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/store"
	"github.com/jmylchreest/clipbox/internal/tui"
)

var tuiOpts struct {
	noWatch bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive phrase popup",
	Long: `Launch the interactive terminal user interface for managing phrases.

The TUI provides:
  - Scrollable list of phrases, most recently updated first
  - Live search, including field expressions (type=work, key!=)
  - Category tabs with per-category colors and icons
  - Add, edit and delete with a short undo window
  - Copy to and add from the clipboard
  - Export and import of JSON files
  - Real-time updates when another instance writes the store

Key bindings:
  j/k, ↑/↓    Navigate list
  enter/c     Copy phrase to clipboard
  v           View full phrase
  a / e / d   Add, edit, delete
  u           Undo the last delete
  p           Add a phrase from the clipboard
  tab         Next category
  /           Search
  x / i       Export / import
  s           Settings
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
		"Do not reload when the phrase file changes on disk")
}

func runTUI(cmd *cobra.Command, args []string) error {
	watchPath := kv.Path(store.SnippetsKey)
	if tuiOpts.noWatch {
		watchPath = ""
	}

	return tui.Run(cmd.Context(), tui.RunOptions{
		Config:    cfg,
		Session:   session,
		WatchPath: watchPath,
	})
}
