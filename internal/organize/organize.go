// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package organize rebuilds a ranked view of an already-downloaded folder.
// It never touches the network: the source folder's PDFs and metadata are the
// only inputs, and the organized subfolder is cleared and rebuilt on each run
// so repeated runs converge to the same layout.
package organize

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/download"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultTargetName is the organized subfolder created inside the source folder.
const DefaultTargetName = "papers_organized"

// Result reports what a run produced.
type Result struct {
	// Kept holds the surviving records in rank order, scores recomputed from
	// the metadata file.
	Kept []types.PaperRecord

	// Copied counts PDFs placed in the target folder.
	Copied int

	// Missing counts kept records whose PDF was absent from the source folder.
	Missing int

	// TargetDir is the rebuilt organized folder.
	TargetDir string

	// ArchivePath is the zip written next to the target folder, when requested.
	ArchivePath string
}

// Organizer filters and lays out a downloaded paper folder by combined score.
type Organizer struct {
	Cfg types.OrganizeConfig
	Log *zap.Logger
}

// Run reads the source folder's metadata, deduplicates by title keeping the
// higher-scoring record, sorts by score, applies the configured threshold,
// and rebuilds the target subfolder with the kept PDFs. With OrderByScore the
// copies are renamed so a directory listing reads as the ranking.
func (o *Organizer) Run(w io.Writer) (Result, error) {
	var res Result

	cfg := o.Cfg
	if cfg.SourceFolder == "" {
		return res, &types.ConfigurationError{Key: "source_folder", Reason: "no source folder"}
	}
	if cfg.TargetName == "" {
		cfg.TargetName = DefaultTargetName
	}

	metaPath := filepath.Join(cfg.SourceFolder, download.MetadataFile)
	records, err := download.ReadMetadata(metaPath)
	if err != nil {
		return res, err
	}
	if len(records) == 0 {
		return res, &types.NotFoundError{What: fmt.Sprintf("paper metadata in %s", cfg.SourceFolder)}
	}

	kept := o.filter(dedupeByScore(records), cfg)
	res.Kept = kept
	res.TargetDir = filepath.Join(cfg.SourceFolder, cfg.TargetName)

	if err := rebuildDir(res.TargetDir); err != nil {
		return res, err
	}

	fmt.Fprintf(w, "%-4s  %10s  %s\n", "rank", "score", "title")
	for i, r := range kept {
		fmt.Fprintf(w, "%-4d  %10.3g  %s\n", i+1, r.CombinedScore, r.Title)

		if r.FileName == "" {
			res.Missing++
			continue
		}
		src := filepath.Join(cfg.SourceFolder, r.FileName)
		if _, err := os.Stat(src); err != nil {
			o.logger().Warn("organized paper has no PDF on disk",
				zap.String("title", r.Title), zap.String("path", src))
			res.Missing++
			continue
		}

		name := r.FileName
		if cfg.OrderByScore {
			name = rankedName(i+1, r.CombinedScore, r.Title)
		}
		if err := copyFile(src, filepath.Join(res.TargetDir, name)); err != nil {
			return res, err
		}
		res.Copied++
	}
	fmt.Fprintf(w, "organized %d papers into %s (%d missing)\n", res.Copied, res.TargetDir, res.Missing)

	if cfg.ZipFolder {
		res.ArchivePath = res.TargetDir + ".zip"
		if err := Zip(res.TargetDir, res.ArchivePath); err != nil {
			return res, err
		}
		fmt.Fprintf(w, "archived to %s\n", res.ArchivePath)
	}
	return res, nil
}

// filter sorts by score descending and applies the configured threshold.
// Ties break on normalized title so the layout is stable across runs.
func (o *Organizer) filter(records []types.PaperRecord, cfg types.OrganizeConfig) []types.PaperRecord {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CombinedScore != records[j].CombinedScore {
			return records[i].CombinedScore > records[j].CombinedScore
		}
		return types.NormalizedTitle(records[i].Title) < types.NormalizedTitle(records[j].Title)
	})

	switch cfg.ThresholdType {
	case types.ThresholdRank:
		if cfg.RankThreshold > 0 && cfg.RankThreshold < len(records) {
			records = records[:cfg.RankThreshold]
		}
	case types.ThresholdScore:
		cut := len(records)
		for i, r := range records {
			if r.CombinedScore < cfg.ScoreThreshold {
				cut = i
				break
			}
		}
		records = records[:cut]
	}
	return records
}

func (o *Organizer) logger() *zap.Logger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop()
}

// dedupeByScore keeps one record per normalized title, preferring the higher
// combined score. Order of first appearance is preserved for the survivors.
func dedupeByScore(records []types.PaperRecord) []types.PaperRecord {
	best := make(map[string]int, len(records))
	out := make([]types.PaperRecord, 0, len(records))
	for _, r := range records {
		key := types.NormalizedTitle(r.Title)
		if key == "" {
			continue
		}
		if i, ok := best[key]; ok {
			if r.CombinedScore > out[i].CombinedScore {
				out[i] = r
			}
			continue
		}
		best[key] = len(out)
		out = append(out, r)
	}
	return out
}

// rankedName builds the "001_12.3_title.pdf" layout so a sorted directory
// listing is the ranking.
func rankedName(rank int, score float64, title string) string {
	base := download.SanitizeFilename(title)
	if base == "" {
		base = "untitled"
	}
	return fmt.Sprintf("%03d_%.3g_%s.pdf", rank, score, strings.TrimSuffix(base, ".pdf"))
}

// rebuildDir clears and recreates dir. The path must be a directory or absent.
func rebuildDir(dir string) error {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("target %s exists and is not a directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", dst, err)
	}
	return out.Close()
}

// Zip archives dir's files (flat, no recursion into subfolders) to dst.
func Zip(dir, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", dst, err)
	}
	zw := zip.NewWriter(f)

	entries, err := os.ReadDir(dir)
	if err != nil {
		f.Close()
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w, err := zw.Create(e.Name())
		if err != nil {
			f.Close()
			return fmt.Errorf("archiving %s: %w", e.Name(), err)
		}
		in, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			f.Close()
			return fmt.Errorf("opening %s: %w", e.Name(), err)
		}
		_, err = io.Copy(w, in)
		in.Close()
		if err != nil {
			f.Close()
			return fmt.Errorf("archiving %s: %w", e.Name(), err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return f.Close()
}
