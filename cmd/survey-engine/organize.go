// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/organize"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var organizeCmd = &cobra.Command{
	Use:   "organize <folder>",
	Short: "Build a ranked view of a downloaded paper folder",
	Long: `Organize reads the folder's metadata, deduplicates by title keeping the
higher score, applies a rank or score threshold, and rebuilds an organized
subfolder whose file names sort in rank order. No network access; papers are
never re-downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func init() {
	organizeCmd.Flags().String("target", organize.DefaultTargetName, "organized subfolder name")
	organizeCmd.Flags().String("threshold-type", "score", `filter type: "rank" or "score"`)
	organizeCmd.Flags().Float64("score-threshold", 0, "minimum combined score to keep")
	organizeCmd.Flags().Int("rank-threshold", 0, "number of top papers to keep")
	organizeCmd.Flags().Bool("order-by-score", true, "prefix file names with rank and score")
	organizeCmd.Flags().Bool("zip", false, "archive the organized folder")

	rootCmd.AddCommand(organizeCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")
	thresholdType, _ := cmd.Flags().GetString("threshold-type")
	scoreThreshold, _ := cmd.Flags().GetFloat64("score-threshold")
	rankThreshold, _ := cmd.Flags().GetInt("rank-threshold")
	orderByScore, _ := cmd.Flags().GetBool("order-by-score")
	zipFolder, _ := cmd.Flags().GetBool("zip")

	org := &organize.Organizer{
		Cfg: types.OrganizeConfig{
			SourceFolder:   args[0],
			TargetName:     target,
			ThresholdType:  types.ThresholdType(thresholdType),
			ScoreThreshold: scoreThreshold,
			RankThreshold:  rankThreshold,
			OrderByScore:   orderByScore,
			ZipFolder:      zipFolder,
		},
		Log: log,
	}
	_, err := org.Run(os.Stdout)
	return err
}
