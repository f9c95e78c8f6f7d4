// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes every archived run to archiveDir/export.yaml and
// returns the file path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	runs, err := s.exportRuns(ctx)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}

	path := filepath.Join(s.archiveDir, "export.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportJSON writes every archived run to archiveDir/export.json and
// returns the file path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	runs, err := s.exportRuns(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}

	path := filepath.Join(s.archiveDir, "export.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) exportRuns(ctx context.Context) ([]types.RunRecord, error) {
	summaries, err := s.ListRuns(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	runs := make([]types.RunRecord, 0, len(summaries))
	for _, sum := range summaries {
		run, err := s.GetRun(ctx, sum.ID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}
