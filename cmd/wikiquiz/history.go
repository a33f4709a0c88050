package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List generated quizzes, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No quizzes yet. Run `wikiquiz generate <url>` to create one.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tGENERATED\tURL")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Title, s.DateGenerated.Local().Format("2006-01-02 15:04"), s.URL)
		}
		return tw.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored quiz with its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		stored, err := a.store.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("quiz %d: %w", id, err)
		}
		printQuiz(cmd.OutOrStdout(), stored, true)
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid quiz id %q", s)
	}
	return id, nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
