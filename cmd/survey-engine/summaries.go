// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/survey-engine/internal/corpus"
	"github.com/pdiddy/survey-engine/internal/survey"
	"github.com/pdiddy/survey-engine/internal/topic"
)

var summariesCmd = &cobra.Command{
	Use:   "summaries [folder]",
	Short: "List indexed papers and their summaries",
	Long: `Summaries reads the corpus index and lists the papers recorded there, in
rank order, with their summary and code-availability status. With a folder
argument only that folder's papers are shown; without one, every indexed
folder is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummaries,
}

func init() {
	summariesCmd.Flags().Bool("full", false, "print full summaries instead of one line each")

	rootCmd.AddCommand(summariesCmd)
}

func runSummaries(cmd *cobra.Command, args []string) error {
	full, _ := cmd.Flags().GetBool("full")

	store, err := corpus.NewStore(viper.GetString("corpus.index_path"))
	if err != nil {
		return err
	}
	defer store.Close()

	folder := ""
	if len(args) == 1 {
		folder = args[0]
	}
	entries, err := store.Entries(folder)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		// An unindexed folder may still carry a summaries file from an
		// earlier run.
		if folder != "" {
			return printFolderSummaries(folder)
		}
		fmt.Println("No indexed papers.")
		return nil
	}

	if full {
		for _, e := range entries {
			fmt.Printf("=== %s (%s, rank %d, score %.3g)\n", e.Title, e.Folder, e.Rank, e.CombinedScore)
			if e.CodeVerdict != "" {
				fmt.Printf("code: %s\n", e.CodeVerdict)
			}
			if e.Summary != "" {
				fmt.Println(e.Summary)
			} else {
				fmt.Println("(no summary)")
			}
			fmt.Println()
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tFOLDER\tCODE\tTITLE")
	for _, e := range entries {
		verdict := e.CodeVerdict
		if verdict == "" {
			verdict = "-"
		}
		fmt.Fprintf(w, "%d\t%.3g\t%s\t%s\t%s\n", e.Rank, e.CombinedScore, e.Folder, verdict, e.Title)
	}
	return w.Flush()
}

// printFolderSummaries reads a folder's summaries file directly, for folders
// that were produced before the corpus index existed.
func printFolderSummaries(folder string) error {
	fstore := survey.NewStore(filepath.Join(folder, topic.SummariesFile))
	if err := fstore.Load(); err != nil {
		return err
	}
	papers := fstore.Papers()
	if len(papers) == 0 {
		fmt.Println("No indexed papers.")
		return nil
	}
	for _, p := range papers {
		fmt.Printf("=== %s\n", p)
		if summary, ok := fstore.Summary(p); ok {
			fmt.Println(summary)
		} else {
			fmt.Println("(no summary)")
		}
		fmt.Println()
	}
	return nil
}
