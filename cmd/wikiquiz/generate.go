package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/wikiquiz/backend/internal/article"
	"github.com/wikiquiz/backend/internal/generator"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/quiz"
	"github.com/wikiquiz/backend/internal/scraper"
)

var generateCmd = &cobra.Command{
	Use:   "generate <wikipedia-url>",
	Short: "Generate a quiz for an article, or reuse the stored one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := article.Parse(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.LLM.Validate(); err != nil {
			return err
		}
		llm, model, err := generator.NewClient(cmd.Context(), a.cfg.LLM, a.logger)
		if err != nil {
			return err
		}
		gen := generator.NewGenerator(llm, model, scraper.New(a.cfg.Scraper, a.logger), a.logger)
		coordinator := quiz.NewCoordinator(gen, a.store, a.logger, quiz.CoordinatorConfig{
			GenerationTimeout: a.cfg.LLM.GenerationTimeout,
		})

		fmt.Fprintf(cmd.OutOrStdout(), "Generating quiz for %s with %s...\n", ref.Title(), gen.ModelName())
		outcome, err := coordinator.Request(cmd.Context(), ref, force)
		if err != nil {
			return err
		}

		if outcome.ServedFromCache {
			fmt.Fprintln(cmd.OutOrStdout(), outcome.CacheNote)
		}
		printQuiz(cmd.OutOrStdout(), outcome.Quiz, false)
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("force", false, "Regenerate even if a quiz is already stored")
}

// printQuiz writes a readable overview of a stored quiz. Answers are only
// shown when withAnswers is set.
func printQuiz(w io.Writer, stored *models.StoredQuiz, withAnswers bool) {
	q := stored.Quiz
	fmt.Fprintf(w, "\n#%d  %s\n", stored.ID, q.Title)
	fmt.Fprintf(w, "%s\n", stored.URL)
	fmt.Fprintf(w, "Generated %s\n\n", stored.DateGenerated.Local().Format("2006-01-02 15:04"))
	if q.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", q.Summary)
	}

	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, question.Difficulty, question.Text)
		for j, opt := range question.Options {
			marker := " "
			if withAnswers && opt == question.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(w, "   %s %d) %s\n", marker, j+1, opt)
		}
		if withAnswers && question.Explanation != "" {
			fmt.Fprintf(w, "     %s\n", question.Explanation)
		}
	}

	if len(q.RelatedTopics) > 0 {
		fmt.Fprintf(w, "\nRelated topics: %s\n", joinComma(q.RelatedTopics))
	}
}
