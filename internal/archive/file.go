// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// now is stubbed in tests for deterministic filenames.
var now = time.Now

// WriteReportFile saves a report as a standalone Markdown file under
// dir, named research_report_<topic>_<unix>.md with the topic sanitized
// to filesystem-safe characters. Returns the written path.
func WriteReportFile(dir, topic, report string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	t := now()
	name := fmt.Sprintf("research_report_%s_%d.md", sanitizeTopic(topic), t.Unix())
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "Research Report: %s\n", topic)
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", t.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	b.WriteString(report)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// sanitizeTopic keeps letters, digits, hyphens, and underscores;
// spaces become underscores and everything else is dropped.
func sanitizeTopic(topic string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(topic) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
