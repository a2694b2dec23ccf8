package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/adapter/input"
	"github.com/jmylchreest/clipbox/internal/app"
	"github.com/jmylchreest/clipbox/internal/codec"
	"github.com/jmylchreest/clipbox/internal/store"
)

var exportOpts struct {
	output string
	dir    string
	format string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all phrases grouped by category",
	Long: `Export all phrases as an array of category groups:

  [{"type": "work", "icon": "💼", "data": [{"id": "...", "content": "...", "key": ""}]}]

By default the file is written to the export directory (config: export.dir)
as clipbox_<timestamp>.json.

Examples:
  clipbox export
  clipbox export --format yaml --dir ~/backups
  clipbox export -o - | jq '.[].type'`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importOpts struct {
	overwrite bool
	append    bool
}

var importCmd = &cobra.Command{
	Use:   "import <file|glob|->...",
	Short: "Import phrases from JSON exports",
	Long: `Import phrases from JSON documents. Both the grouped export format and
the legacy flat array ([{"content": "...", "type": "..."}]) are accepted,
as are YAML exports.

--overwrite replaces every current phrase; --append puts the imported
phrases ahead of the current ones. Entries without usable content are
skipped. All documents are read before anything is written, so one
unreadable or unusable document leaves the store untouched.

Examples:
  clipbox import backup.json --overwrite
  clipbox import 'exports/**/*.json' --append
  curl -s https://example.com/phrases.json | clipbox import - --append`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVarP(&exportOpts.output, "output", "o", "",
		"Write to this file instead (- for stdout)")
	exportCmd.Flags().StringVar(&exportOpts.dir, "dir", "",
		"Directory for the timestamped file (default: config export.dir)")
	exportCmd.Flags().StringVarP(&exportOpts.format, "format", "f", "",
		"Export format (json, yaml; default: config export.format)")

	importCmd.Flags().BoolVar(&importOpts.overwrite, "overwrite", false,
		"Replace all current phrases")
	importCmd.Flags().BoolVar(&importOpts.append, "append", false,
		"Add imported phrases ahead of the current ones")
	importCmd.MarkFlagsMutuallyExclusive("overwrite", "append")
	importCmd.MarkFlagsOneRequired("overwrite", "append")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := codec.ParseExportFormat(firstNonEmpty(exportOpts.format, cfg.Export.Format))
	if err != nil {
		return app.NewError(app.KindValidation, "export", err)
	}

	var (
		path string
		n    int
	)

	switch exportOpts.output {
	case "-":
		_, err := session.Export(cmd.OutOrStdout(), format)
		return err
	case "":
		dir := cfg.ExportDir()
		if exportOpts.dir != "" {
			dir = exportOpts.dir
		}
		path, n, err = session.ExportFile(dir, format)
	default:
		path = exportOpts.output
		n, err = session.ExportPath(path, format)
	}
	if err != nil {
		return err
	}

	size := ""
	if info, err := os.Stat(path); err == nil {
		size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d phrases to %s%s\n", n, path, size)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	policy := store.PolicyAppend
	if importOpts.overwrite {
		policy = store.PolicyOverwrite
	}

	paths, err := input.ExpandPaths(args)
	if err != nil {
		kind := app.KindValidation
		if errors.Is(err, os.ErrNotExist) {
			kind = app.KindEnvironment
		}
		return app.NewError(kind, "import", err)
	}
	if policy == store.PolicyOverwrite && len(paths) > 1 {
		return app.NewError(app.KindValidation, "import",
			fmt.Errorf("--overwrite takes a single document, got %d", len(paths)))
	}

	sources := make([]input.Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, input.NewSource(p))
	}

	// Every document is read and decoded before anything is written.
	reports, err := session.ImportSources(cmd.Context(), sources, policy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, report := range reports {
		logger.Debug("imported document", "source", report.Source, "format", report.Format.String())
		fmt.Fprintf(out, "%s: imported %d phrases (%s, %s)", report.Source, report.Imported, report.Format, report.Policy)
		if report.Dropped > 0 {
			fmt.Fprintf(out, ", skipped %d invalid", report.Dropped)
		}
		fmt.Fprintln(out)
	}

	return nil
}
