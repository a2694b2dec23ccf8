package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/adapter/input"
	"github.com/jmylchreest/clipbox/internal/app"
)

var addOpts struct {
	typ string
	key string
}

var addCmd = &cobra.Command{
	Use:   "add [content...]",
	Short: "Add a phrase",
	Long: `Add a phrase. Content is taken from the arguments, or read from stdin
when there are none (or the only argument is "-").

Examples:
  clipbox add "Kind regards, Sam" --type email
  clipbox add --type prompts --key review < prompt.txt`,
	RunE: runAdd,
}

var editOpts struct {
	content string
	typ     string
	key     string
	stdin   bool
}

var editCmd = &cobra.Command{
	Use:   "edit <index|id>",
	Short: "Edit a phrase",
	Long: `Edit a phrase's content, category or keyword. Only the given fields
change; the ID and creation time are kept.

Examples:
  clipbox edit 2 --type work
  clipbox edit 01HZ3X2J5YFMK2V3P4Q6R7S8T9 --key ""
  clipbox edit 1 --stdin < new.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var rmOpts struct {
	stdin bool
}

var rmCmd = &cobra.Command{
	Use:     "rm [index|id...]",
	Aliases: []string{"delete", "remove"},
	Short:   "Delete phrases",
	Long: `Delete phrases by index, ID or dmenu line.

Indexes refer to the default "clipbox list" order and are resolved before
anything is deleted.

Examples:
  clipbox rm 3
  clipbox list --filter "type=old" --format ids | clipbox rm --stdin`,
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(addCmd, editCmd, rmCmd)

	addCmd.Flags().StringVarP(&addOpts.typ, "type", "t", "",
		"Category")
	addCmd.Flags().StringVarP(&addOpts.key, "key", "k", "",
		"Keyword")

	editCmd.Flags().StringVarP(&editOpts.content, "content", "c", "",
		"New content")
	editCmd.Flags().StringVarP(&editOpts.typ, "type", "t", "",
		"New category (empty clears it)")
	editCmd.Flags().StringVarP(&editOpts.key, "key", "k", "",
		"New keyword (empty clears it)")
	editCmd.Flags().BoolVar(&editOpts.stdin, "stdin", false,
		"Read new content from stdin")

	rmCmd.Flags().BoolVar(&rmOpts.stdin, "stdin", false,
		"Read references from stdin, one per line")
}

func runAdd(cmd *cobra.Command, args []string) error {
	content := strings.Join(args, " ")
	if len(args) == 0 || content == "-" {
		data, err := input.NewStdinSourceWithReader(cmd.InOrStdin()).Read(cmd.Context())
		if err != nil {
			return app.NewError(app.KindEnvironment, "add", err)
		}
		content = string(data)
	}

	sn, err := session.Add(cmd.Context(), content, addOpts.typ, addOpts.key)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sn.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	sn, err := resolveRef(args[0])
	if err != nil {
		return err
	}

	content, typ, key := sn.Content, sn.Type, sn.Key
	if cmd.Flags().Changed("content") {
		content = editOpts.content
	}
	if editOpts.stdin {
		data, err := input.NewStdinSourceWithReader(cmd.InOrStdin()).Read(cmd.Context())
		if err != nil {
			return app.NewError(app.KindEnvironment, "edit", err)
		}
		content = string(data)
	}
	if cmd.Flags().Changed("type") {
		typ = editOpts.typ
	}
	if cmd.Flags().Changed("key") {
		key = editOpts.key
	}

	updated, found, err := session.Edit(cmd.Context(), sn.ID, content, typ, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("phrase with ID %s not found", sn.ID)
	}

	fmt.Fprintln(cmd.OutOrStdout(), updated.ID)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	refs := args
	if rmOpts.stdin {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				refs = append(refs, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	}

	if len(refs) == 0 {
		return fmt.Errorf("no phrases given")
	}

	// Resolve everything first so indexes do not shift between deletes.
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool)
	for _, ref := range refs {
		sn, err := resolveRef(ref)
		if err != nil {
			return err
		}
		if !seen[sn.ID] {
			seen[sn.ID] = true
			ids = append(ids, sn.ID)
		}
	}

	var deleted, failed int
	for _, id := range ids {
		if _, found, err := session.Delete(cmd.Context(), id); err != nil {
			logger.Warn("failed to delete phrase", "id", id, "error", err)
			failed++
		} else if found {
			deleted++
		}
	}

	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "deleted %d phrases, %d failed\n", deleted, failed)
		return fmt.Errorf("%d deletes failed", failed)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d phrases\n", deleted)
	return nil
}
