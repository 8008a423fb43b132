package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/feedtailor/feedtailor/internal/cli"
)

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List curation sessions",
		Long: `Show saved curation sessions, most recently touched first. Any of them
can be picked up again with 'feedtailor curate --session <id> <feed>'.`,
		RunE: runSessions,
	}
}

func runSessions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println(cli.SubtitleStyle.Render("No sessions found. Start one with 'feedtailor curate <feed.tsv>'."))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	fmt.Fprintln(w, strings.Join([]string{
		headerStyle.Render("ID"),
		headerStyle.Render("SOURCE"),
		headerStyle.Render("CREATED"),
		headerStyle.Render("LAST TOUCHED"),
	}, "\t"))

	for _, session := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cli.InfoStyle.Render(session.ID),
			session.SourceFile,
			session.CreatedAt.Format("2006-01-02 15:04"),
			formatRelativeTime(session.UpdatedAt),
		)
	}

	return w.Flush()
}
