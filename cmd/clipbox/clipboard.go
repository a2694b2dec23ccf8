package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/adapter/input"
	"github.com/jmylchreest/clipbox/internal/core"
)

var copyOpts struct {
	key   string
	stdin bool
	quiet bool
}

var copyCmd = &cobra.Command{
	Use:   "copy [index|id]",
	Short: "Copy a phrase to the clipboard",
	Long: `Copy a phrase's content to the system clipboard.

The phrase is chosen by index, ID, keyword (--key), or a dmenu line read
from stdin (--stdin).

Examples:
  clipbox copy 1
  clipbox copy --key sig
  clipbox list | fuzzel -d | clipbox copy --stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCopy,
}

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Add the clipboard text as a new phrase",
	Long: `Read the system clipboard and store its text as a new phrase in the
paste category (config: paste.type).`,
	Args: cobra.NoArgs,
	RunE: runPaste,
}

func init() {
	rootCmd.AddCommand(copyCmd, pasteCmd)

	copyCmd.Flags().StringVarP(&copyOpts.key, "key", "k", "",
		"Copy the most recent phrase with this keyword")
	copyCmd.Flags().BoolVar(&copyOpts.stdin, "stdin", false,
		"Read the selection from stdin")
	copyCmd.Flags().BoolVarP(&copyOpts.quiet, "quiet", "q", false,
		"Do not print the copied phrase")
}

func runCopy(cmd *cobra.Command, args []string) error {
	var id string

	switch {
	case copyOpts.key != "":
		sn := core.LookupByKey(session.All(), copyOpts.key)
		if sn == nil {
			return fmt.Errorf("no phrase with keyword %q", copyOpts.key)
		}
		id = sn.ID
	case copyOpts.stdin || len(args) == 0:
		data, err := input.NewStdinSourceWithReader(cmd.InOrStdin()).Read(cmd.Context())
		if err != nil {
			return err
		}
		line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
		sn, err := resolveRef(line)
		if err != nil {
			return err
		}
		id = sn.ID
	default:
		sn, err := resolveRef(args[0])
		if err != nil {
			return err
		}
		id = sn.ID
	}

	sn, err := session.Copy(cmd.Context(), id)
	if err != nil {
		return err
	}

	if !copyOpts.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "copied: %s\n", sn.ContentTruncated(60))
	}
	return nil
}

func runPaste(cmd *cobra.Command, args []string) error {
	sn, err := session.Paste(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sn.ID)
	return nil
}
