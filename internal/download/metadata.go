// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// MetadataFile is the per-destination-folder corpus metadata file name.
const MetadataFile = "metadata.json"

// SaveMetadata writes records to the folder's metadata file, merging with any
// records already there. Incoming records come first in their given (rank)
// order and replace existing entries with the same normalized title; existing
// entries for other papers are preserved after them. Saving the same records
// twice leaves the file unchanged.
func SaveMetadata(path string, records []types.PaperRecord) error {
	existing, err := ReadMetadata(path)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(records))
	merged := make([]types.PaperRecord, 0, len(records)+len(existing))
	for _, r := range records {
		key := types.NormalizedTitle(r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, r)
	}
	for _, r := range existing {
		key := types.NormalizedTitle(r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, r)
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a folder's metadata file. A missing file is an empty
// corpus, not an error.
func ReadMetadata(path string) ([]types.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	var records []types.PaperRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return records, nil
}
