// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download materializes kept paper records to disk. File names are
// derived deterministically from sanitized titles, downloads already present
// are skipped, and every batch refreshes the destination's metadata file.
package download

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of records processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Downloader fetches PDFs for kept records. It implements the search stage's
// Materializer contract.
type Downloader struct {
	Client *http.Client
	Cfg    types.DownloadConfig
	Pacer  *httputil.Pacer
	Log    *zap.Logger
}

// Fetch downloads every record's PDF into dest and returns the records with
// download state attached, in input (rank) order. A PDF already on disk is a
// skip, not an error, so re-running an identical search leaves the folder
// unchanged. Individual failures are reported through w and leave the record
// marked not-downloaded; they never abort the batch. The destination's
// metadata file is rewritten at the end to match the batch's ordering.
func (d *Downloader) Fetch(ctx context.Context, records []types.PaperRecord, dest string, w io.Writer) ([]types.PaperRecord, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination %s: %w", dest, err)
	}

	names := newNameTable()
	out := make([]types.PaperRecord, 0, len(records))
	var result BatchResult

	for _, r := range records {
		r.FileName = names.fileName(r.Title)
		path := filepath.Join(dest, r.FileName)

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", r.FileName)
			r.Downloaded = true
			r.PDFPath = path
			result.Skipped++
			out = append(out, r)
			continue
		}

		if r.SourceURL == "" && r.ArxivURL == "" {
			fmt.Fprintf(w, "no link: %s\n", r.Title)
			result.Failed++
			out = append(out, r)
			continue
		}

		err := d.fetchOne(ctx, r.SourceURL, path)
		if err != nil && r.ArxivURL != "" && r.ArxivURL != r.SourceURL {
			fmt.Fprintf(w, "retrying from arXiv link: %s\n", r.FileName)
			err = d.fetchOne(ctx, r.ArxivURL, path)
		}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", r.FileName, err)
			d.logger().Warn("download failed",
				zap.String("title", r.Title),
				zap.String("url", r.SourceURL),
				zap.Error(err))
			result.Failed++
			out = append(out, r)
			continue
		}

		fmt.Fprintf(w, "downloaded: %s\n", r.FileName)
		r.Downloaded = true
		r.PDFPath = path
		result.Downloaded++
		out = append(out, r)
	}

	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())

	if err := SaveMetadata(filepath.Join(dest, MetadataFile), out); err != nil {
		return out, err
	}
	return out, nil
}

// fetchOne downloads url to destPath using a temporary file, renaming on
// success so a partial download never shadows the real file.
func (d *Downloader) fetchOne(ctx context.Context, url, destPath string) error {
	if url == "" {
		return fmt.Errorf("no download link")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.Cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	var resp *http.Response
	if d.Pacer != nil {
		resp, err = d.Pacer.Do(ctx, d.Client, req)
	} else {
		resp, err = d.Client.Do(req)
	}
	if err != nil {
		return &types.ExternalServiceError{Service: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &types.ExternalServiceError{
			Service: "download",
			Err:     fmt.Errorf("HTTP %d from %s", resp.StatusCode, url),
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (d *Downloader) logger() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

// SanitizeFilename strips characters that are illegal in filenames on common
// filesystems and trims surrounding whitespace.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(strings.NewReplacer(
		"<", "", ">", "", ":", "", "\"", "", "/", "",
		"\\", "", "|", "", "?", "", "*", "",
	).Replace(name))
}

// nameTable assigns deterministic, collision-free PDF file names within one
// destination folder.
type nameTable struct {
	owners map[string]string // sanitized stem → normalized title that owns it
}

func newNameTable() *nameTable {
	return &nameTable{owners: make(map[string]string)}
}

// fileName returns "<sanitized title>.pdf". The same title always maps to the
// same name, so re-runs hit the skip path. When two different titles sanitize
// to the same stem, the later one gets a short hash suffix instead of silently
// overwriting the first.
func (t *nameTable) fileName(title string) string {
	stem := SanitizeFilename(title)
	if stem == "" {
		stem = "untitled"
	}
	norm := types.NormalizedTitle(title)
	if owner, taken := t.owners[stem]; taken && owner != norm {
		h := sha256.Sum256([]byte(title))
		stem = fmt.Sprintf("%s-%x", stem, h[:4])
	}
	t.owners[stem] = norm
	return stem + ".pdf"
}
