package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/spf13/cobra"
)

func newAddCommand(app *App) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a note locally",
		Long:  "Create a note locally. Without a title argument the first input line is the title. Content comes from --content, piped stdin or an interactive prompt.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			var title string
			if len(args) == 1 {
				title = args[0]
			} else {
				t, err := GetSimpleText(reader, "Title", cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("error reading title: %w", err)
				}
				title = t
			}

			if !cmd.Flags().Changed("content") {
				body, err := readBody(cmd.InOrStdin(), reader, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				content = body
			}

			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Add(cmd.Context(), title, content)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "note content")
	return cmd
}

func newEditCommand(app *App) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t, c *string
			if cmd.Flags().Changed("title") {
				t = &title
			}
			if cmd.Flags().Changed("content") {
				c = &content
			}
			if t == nil && c == nil {
				return errors.New("nothing to change: pass --title or --content")
			}

			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Edit(cmd.Context(), args[0], t, c)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "edited %s\n", n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

func newDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Mark a note deleted; the tombstone is pushed like any edit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "id:      %s\n", n.ID)
			fmt.Fprintf(w, "title:   %s\n", n.Title)
			fmt.Fprintf(w, "version: %d\n", n.Version)
			fmt.Fprintf(w, "updated: %s\n", formatMillis(n.UpdatedAt))
			fmt.Fprintf(w, "state:   %s\n", state(n))
			fmt.Fprintf(w, "\n%s\n", n.Content)
			return nil
		},
	}
}

func newListCommand(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List local notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			notes, err := svc.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			return printNotes(cmd.OutOrStdout(), notes)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "include deleted notes")
	return cmd
}

func printNotes(out io.Writer, notes []*models.LocalNote) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVERSION\tSTATE")
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", n.ID, n.Title, n.Version, state(n))
	}
	return w.Flush()
}

func state(n *models.LocalNote) string {
	switch {
	case n.Deleted && n.Dirty:
		return "deleted (unpushed)"
	case n.Deleted:
		return "deleted"
	case n.Dirty:
		return "modified"
	default:
		return "synced"
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
