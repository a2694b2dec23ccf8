package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/core"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the phrase count in Waybar's custom module JSON format.

  "custom/clipbox": {
    "exec": "clipbox status",
    "interval": 30,
    "return-type": "json",
    "on-click": "foot -e clipbox tui"
  }

The output includes:
  - text: header icon and number of phrases
  - tooltip: count per category
  - class: "empty" or "phrases"`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	snippets := session.All()
	settings := session.Settings()

	status := WaybarStatus{
		Text:  fmt.Sprintf("%s %d", settings.Glyph(), len(snippets)),
		Alt:   "phrases",
		Class: "phrases",
	}
	if len(snippets) == 0 {
		status.Alt = "empty"
		status.Class = "empty"
	}

	counts := core.TypeCounts(snippets)
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	lines := []string{settings.Title}
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%s %s: %d", session.Icons().Resolve(label), label, counts[label]))
	}
	status.Tooltip = strings.Join(lines, "\n")

	return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
}
