package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/adapter/output"
	"github.com/jmylchreest/clipbox/internal/core"
	"github.com/jmylchreest/clipbox/internal/model"
)

var listOpts struct {
	// Filter options
	search string
	typ    string
	filter string
	limit  int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
	showTime bool

	// Lookup options
	index int
	id    string
	key   string
}

var listCmd = &cobra.Command{
	Use:     "list [index|id]",
	Aliases: []string{"get", "ls"},
	Short:   "List phrases or output a single phrase",
	Long: `List phrases in various formats.

Without arguments, outputs all phrases in dmenu format (suitable for
fuzzel, walker, rofi, etc.), most recently updated first.

With an index (1-based), an ID, or a whole dmenu line, outputs that phrase.

Filter expressions (--filter) are comma-separated and ANDed:
  type=work, content~hello, content~=(?i)^dear, key!=, updated>7d

Examples:
  # List all phrases in dmenu format
  clipbox list

  # Only the "work" category, searching for "invoice"
  clipbox list --type work --search invoice

  # Phrases that have a keyword, touched this week
  clipbox list --filter "key!=,updated>7d"

  # Output as JSON
  clipbox list --format json

  # Pick with fuzzel and copy the choice
  clipbox list | fuzzel -d | clipbox copy --stdin`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Filter flags
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in content, category and keyword")
	listCmd.Flags().StringVarP(&listOpts.typ, "type", "t", "",
		"Only show this category (exact match)")
	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression (e.g. \"type=work,key!=\")")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of phrases to show (0=config default)")

	// Sort flags
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "",
		"Sort by field (updated, created, content, type)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", "",
		"Sort order (asc, desc)")

	// Output flags
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "",
		"Output format (dmenu, plain, json, yaml, ids)")
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output a single field (id, content, type, key, created, updated, all)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Go template for dmenu/plain output, or @name for a configured template")
	listCmd.Flags().BoolVar(&listOpts.showTime, "time", false,
		"Show relative update time")

	// Lookup flags
	listCmd.Flags().IntVar(&listOpts.index, "index", 0,
		"Lookup phrase by 1-based index")
	listCmd.Flags().StringVar(&listOpts.id, "id", "",
		"Lookup phrase by ID")
	listCmd.Flags().StringVarP(&listOpts.key, "key", "k", "",
		"Lookup phrase by keyword")
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		listOpts.index, listOpts.id = output.ParseSelection(args[0])
	}

	if listOpts.index > 0 || listOpts.id != "" || listOpts.key != "" {
		sn, err := lookupSnippet()
		if err != nil {
			return err
		}
		return outputSingle(cmd.OutOrStdout(), sn)
	}

	snippets, err := listSnippets()
	if err != nil {
		return err
	}
	if len(snippets) == 0 {
		logger.Debug("no phrases to output")
		return nil
	}

	formatter, err := createFormatter(listFormat())
	if err != nil {
		return err
	}
	return formatter.Format(cmd.OutOrStdout(), snippets)
}

// listSnippets returns the phrases selected by the list options, in the
// order they are printed. Indexes refer to this order.
func listSnippets() ([]model.Snippet, error) {
	session.SetFilter(listOpts.search)
	session.SetTypeFilter(listOpts.typ)
	snippets := session.View()

	if listOpts.filter != "" {
		expr, err := core.ParseFilter(listOpts.filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		snippets = core.FilterWithExpr(snippets, expr)
	}

	field, _ := core.ParseSortField(firstNonEmpty(listOpts.sortBy, cfg.List.Sort))
	order, _ := core.ParseSortOrder(firstNonEmpty(listOpts.sortOrder, cfg.List.Order))
	core.Sort(snippets, core.SortOptions{Field: field, Order: order})

	limit := listOpts.limit
	if limit == 0 {
		limit = cfg.List.Limit
	}
	if limit > 0 && len(snippets) > limit {
		snippets = snippets[:limit]
	}

	return snippets, nil
}

// lookupSnippet resolves the lookup options to a single phrase.
func lookupSnippet() (*model.Snippet, error) {
	switch {
	case listOpts.index > 0:
		snippets, err := listSnippets()
		if err != nil {
			return nil, err
		}
		sn := core.LookupByIndex(snippets, listOpts.index)
		if sn == nil {
			return nil, fmt.Errorf("phrase at index %d not found", listOpts.index)
		}
		return sn, nil
	case listOpts.id != "":
		sn := core.LookupByID(session.All(), listOpts.id)
		if sn == nil {
			return nil, fmt.Errorf("phrase with ID %s not found", listOpts.id)
		}
		return sn, nil
	default:
		sn := core.LookupByKey(session.All(), listOpts.key)
		if sn == nil {
			return nil, fmt.Errorf("no phrase with keyword %q", listOpts.key)
		}
		return sn, nil
	}
}

// resolveRef finds a phrase by index, ID or dmenu line, as shown by a plain
// "clipbox list".
func resolveRef(ref string) (*model.Snippet, error) {
	idx, id := output.ParseSelection(ref)
	if idx > 0 {
		snippets, err := listSnippets()
		if err != nil {
			return nil, err
		}
		if sn := core.LookupByIndex(snippets, idx); sn != nil {
			return sn, nil
		}
		return nil, fmt.Errorf("phrase at index %d not found", idx)
	}

	if sn := core.LookupByID(session.All(), id); sn != nil {
		return sn, nil
	}
	return nil, fmt.Errorf("phrase with ID %s not found", id)
}

func outputSingle(w io.Writer, sn *model.Snippet) error {
	if listOpts.field != "" {
		fmt.Fprintln(w, output.FormatField(sn, listOpts.field))
		return nil
	}

	// JSON by default for a single phrase
	format := listOpts.format
	if format == "" || format == "dmenu" {
		format = "json"
	}

	formatter, err := createFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(w, []model.Snippet{*sn})
}

func listFormat() string {
	return firstNonEmpty(listOpts.format, cfg.List.Format)
}

// createFormatter creates the output formatter based on options.
func createFormatter(format string) (output.Formatter, error) {
	ft, err := output.ParseFormatType(format)
	if err != nil {
		return nil, err
	}

	opts := output.DefaultFormatterOptions()
	opts.Icons = session.Icons()
	opts.ShowTime = listOpts.showTime
	opts.Template = listOpts.template

	if name, ok := strings.CutPrefix(opts.Template, "@"); ok {
		opts.Template = cfg.GetTemplate(name)
		if opts.Template == "" {
			return nil, fmt.Errorf("no template named %q", name)
		}
	}

	// Apply config defaults if available
	if opts.Template == "" {
		switch ft {
		case output.FormatDmenu:
			opts.Template = cfg.GetTemplate("dmenu")
		case output.FormatPlain:
			opts.Template = cfg.GetTemplate("plain")
		}
	}

	return output.NewFormatter(ft, opts), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
