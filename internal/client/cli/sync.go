package cli

import (
	"fmt"
	"path"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/filex"
	"github.com/dmitrijs2005/notesync/internal/netx"
	"github.com/spf13/cobra"
)

// downloadSnapshot is a seam for netx.DownloadPresignedURL.
var downloadSnapshot = netx.DownloadPresignedURL

func newPushCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Send local changes to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Push(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if r.Pushed == 0 {
				fmt.Fprintln(out, "nothing to push")
				return nil
			}
			fmt.Fprintf(out, "pushed %d notes: %d accepted, %d conflicts\n", r.Pushed, r.Accepted, r.Conflicts)
			if r.Conflicts > 0 {
				fmt.Fprintln(out, "run 'notesync conflicts' to review them")
			}
			return nil
		},
	}
}

func newPullCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Fetch server notes into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Pull(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d notes: %d updated, %d skipped with local changes\n", r.Fetched, r.Updated, r.Skipped)
			return nil
		},
	}
}

func newConflictsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List pushes the server rejected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			open, err := svc.Conflicts(cmd.Context())
			if err != nil {
				return err
			}

			if len(open) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLOCAL\tSERVER\tDETECTED")
			for _, c := range open {
				fmt.Fprintf(w, "%s\tv%d %q\tv%d %q\t%s\n", c.ID,
					c.ClientNote.Version, c.ClientNote.Title,
					c.ServerNote.Version, c.ServerNote.Title,
					formatMillis(c.DetectedAt))
			}
			return w.Flush()
		},
	}
}

func newResolveCommand(app *App) *cobra.Command {
	var keep string

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Settle a conflict by keeping the server or the local version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Resolve(cmd.Context(), args[0], models.Resolution(keep))
			if err != nil {
				return err
			}

			if n.Dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "kept local version of %s, rebased on v%d; push to apply\n", n.ID, n.Version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "kept server version of %s (v%d)\n", n.ID, n.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keep, "keep", "", "side to keep: server or client")
	_ = cmd.MarkFlagRequired("keep")
	return cmd
}

func newSnapshotCommand(app *App) *cobra.Command {
	var (
		save bool
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Ask the server to export all notes to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key: %s\nurl: %s\n", res.Key, res.URL)

			if !save {
				return nil
			}

			data, err := downloadSnapshot(cmd.Context(), res.URL)
			if err != nil {
				return fmt.Errorf("error downloading snapshot: %w", err)
			}
			target, err := filex.EnsureSubDir(dir)
			if err != nil {
				return err
			}
			saved, err := filex.WriteFile(target, path.Base(res.Key), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved: %s\n", saved)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "download the snapshot after taking it")
	cmd.Flags().StringVar(&dir, "dir", "snapshots", "directory for downloaded snapshots")
	return cmd
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server reachability and local sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.noteService(cmd.Context())
			if err != nil {
				return err
			}
			st, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}

			server := "online"
			if !st.Online {
				server = fmt.Sprintf("offline (%v)", st.PingError)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "server:    %s\n", server)
			fmt.Fprintf(w, "notes:     %d\n", st.Notes)
			fmt.Fprintf(w, "unpushed:  %d\n", st.Dirty)
			fmt.Fprintf(w, "conflicts: %d\n", st.Conflicts)
			fmt.Fprintf(w, "last push: %s\n", formatMillisString(st.LastPushAt))
			fmt.Fprintf(w, "last pull: %s\n", formatMillisString(st.LastPullAt))
			return nil
		},
	}
}

func formatMillisString(s string) string {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "never"
	}
	return formatMillis(ms)
}
