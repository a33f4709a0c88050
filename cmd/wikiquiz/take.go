package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wikiquiz/backend/internal/quiz"
)

var takeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Take a stored quiz in the terminal",
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
		session, err := quiz.NewSession(stored.Quiz)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", stored.Quiz.Title)
		return runTake(cmd.InOrStdin(), cmd.OutOrStdout(), session)
	},
}

const takeHelp = "1-9 select, n next, p previous, s submit, r retake, q quit"

// runTake drives s from line-based commands read from in until the user
// quits or input ends.
func runTake(in io.Reader, out io.Writer, s *quiz.Session) error {
	scanner := bufio.NewScanner(in)
	render(out, s)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "q":
			return nil
		case "n":
			report(out, s, s.Next())
		case "p":
			report(out, s, s.Previous())
		case "r":
			s.Reset()
			fmt.Fprintln(out, "Starting over.")
		case "s":
			if _, err := s.Submit(); err != nil {
				report(out, s, err)
				continue
			}
			renderResult(out, s)
			continue
		default:
			n, err := strconv.Atoi(input)
			options := s.Current().Options
			if err != nil || n < 1 || n > len(options) {
				fmt.Fprintln(out, takeHelp)
				continue
			}
			report(out, s, s.SelectAnswer(options[n-1]))
		}

		if s.Phase() == quiz.PhaseInProgress {
			render(out, s)
		}
	}
}

func report(out io.Writer, s *quiz.Session, err error) {
	switch {
	case err == nil:
	case errors.Is(err, quiz.ErrIncompleteAttempt):
		fmt.Fprintf(out, "Answer every question first (%d of %d answered).\n", len(s.Answers()), s.Len())
	case errors.Is(err, quiz.ErrAttemptCompleted):
		fmt.Fprintln(out, "Quiz submitted. Press r to retake or q to quit.")
	default:
		fmt.Fprintln(out, err)
	}
}

func render(out io.Writer, s *quiz.Session) {
	q := s.Current()
	selected, _ := s.Answer(s.CurrentIndex())

	fmt.Fprintf(out, "\nQuestion %d of %d [%s]\n%s\n", s.CurrentIndex()+1, s.Len(), q.Difficulty, q.Text)
	for i, opt := range q.Options {
		marker := " "
		if opt == selected {
			marker = ">"
		}
		fmt.Fprintf(out, " %s %d) %s\n", marker, i+1, opt)
	}
	if s.CanSubmit() {
		fmt.Fprintln(out, "All questions answered. Press s to submit.")
	}
}

func renderResult(out io.Writer, s *quiz.Session) {
	result, err := s.Result()
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}

	fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n\n", result.Score, result.Total, result.Percentage)
	for i, o := range result.PerQuestion {
		mark := "x"
		if o.Correct {
			mark = "ok"
		}
		selected := "(unanswered)"
		if o.Selected != nil {
			selected = *o.Selected
		}
		fmt.Fprintf(out, "%2d. [%s] %s\n    your answer: %s\n", i+1, mark, o.Question, selected)
		if !o.Correct {
			fmt.Fprintf(out, "    correct answer: %s\n", o.CorrectAnswer)
		}
		if o.Explanation != "" {
			fmt.Fprintf(out, "    %s\n", o.Explanation)
		}
	}
	fmt.Fprintln(out, "\nPress r to retake or q to quit.")
}
