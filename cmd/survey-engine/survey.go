// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/codecheck"
	"github.com/pdiddy/survey-engine/internal/extract"
	"github.com/pdiddy/survey-engine/internal/survey"
	"github.com/pdiddy/survey-engine/internal/topic"
)

var surveyCmd = &cobra.Command{
	Use:   "survey <paper.pdf | folder>",
	Short: "Run an LLM session over a downloaded paper",
	Long: `Survey extracts the paper's key sections (abstract, introduction,
discussion, conclusion) with pdftotext and runs an LLM session over them.

Modes: summarize writes a structured summary, explain answers questions
interactively, code-check reports whether the paper links to its code, and
custom sends your own prompt. Extracted sections and summaries are cached in
summaries.json next to the paper, so repeated sessions extract only once.

Passing a folder lists its PDFs and asks which one to survey.`,
	Args: cobra.ExactArgs(1),
	RunE: runSurvey,
}

func init() {
	surveyCmd.Flags().String("mode", "summarize", "session mode: summarize, explain, code-check, or custom")
	surveyCmd.Flags().String("prompt", "", "prompt override (the question for explain, the full prompt for custom)")
	surveyCmd.Flags().Bool("reextract", false, "ignore cached sections and re-run extraction")
	surveyCmd.Flags().String("api-key", "", "LLM API key (default from config or .secrets/)")
	surveyCmd.Flags().Bool("probe", false, "probe the reported link in code-check mode")

	rootCmd.AddCommand(surveyCmd)
}

func runSurvey(cmd *cobra.Command, args []string) error {
	paperPath := args[0]
	info, err := os.Stat(paperPath)
	if err != nil {
		return fmt.Errorf("paper %s: %w", paperPath, err)
	}
	if info.IsDir() {
		paperPath, err = pickPaper(paperPath)
		if err != nil {
			return err
		}
	}

	modeStr, _ := cmd.Flags().GetString("mode")
	prompt, _ := cmd.Flags().GetString("prompt")
	reextract, _ := cmd.Flags().GetBool("reextract")
	apiKey, _ := cmd.Flags().GetString("api-key")
	probe, _ := cmd.Flags().GetBool("probe")

	client, err := buildLLM(apiKey)
	if err != nil {
		return err
	}

	mode := survey.Mode(modeStr)
	store := survey.NewStore(filepath.Join(filepath.Dir(paperPath), topic.SummariesFile))
	sess, err := survey.NewSession(survey.SessionConfig{
		Client:    client,
		Extractor: &extract.Pdftotext{},
		Store:     store,
		PaperPath: paperPath,
		Mode:      mode,
		Reextract: reextract,
		Log:       log,
	})
	if err != nil {
		return err
	}

	if mode == survey.ModeExplain && prompt == "" {
		console := topic.NewConsole(os.Stdin, os.Stdout)
		if err := sess.RunInteractive(cmd.Context(), console.Ask, os.Stdout); err != nil {
			return err
		}
		fmt.Printf("\nTotal LLM cost: $%.4f\n", sess.CostAccumulation)
		return nil
	}

	var validator func(string) error
	if mode == survey.ModeCodeCheck {
		validator = codecheck.Validate
	}

	text, cost, err := sess.Run(cmd.Context(), prompt, validator)
	if err != nil {
		return err
	}
	fmt.Println(text)

	if probe && mode == survey.ModeCodeCheck {
		result := codecheck.Check(cmd.Context(), http.DefaultClient, text)
		fmt.Printf("verdict: %s\n", result.Verdict)
	}

	fmt.Printf("\nLLM cost: $%.4f\n", cost)
	return nil
}

// pickPaper lists the folder's PDFs and asks which one to survey.
func pickPaper(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no PDFs in %s", dir)
	}
	sort.Strings(matches)

	for i, m := range matches {
		fmt.Printf("  %d. %s\n", i+1, filepath.Base(m))
	}
	console := topic.NewConsole(os.Stdin, os.Stdout)
	answer, err := console.Ask(fmt.Sprintf("Survey which paper? [1-%d]: ", len(matches)))
	if err != nil {
		return "", err
	}
	i, err := strconv.Atoi(answer)
	if err != nil || i < 1 || i > len(matches) {
		return "", fmt.Errorf("invalid selection %q", answer)
	}
	return matches[i-1], nil
}
