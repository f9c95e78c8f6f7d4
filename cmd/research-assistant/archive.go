// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/archive"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse the local archive of completed research runs",
	Long: `Archive manages the local SQLite database of completed research runs.
Use subcommands to list runs, show a run's report, search reports with
full-text search, or export the archive.`,
}

// --- list subcommand ---

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived research runs, newest first",
	RunE:  runArchiveList,
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	summaries, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-50s  %-22s  %-19s  %s\n",
		"ID", "Topic", "Model", "Created", "Questions")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, s := range summaries {
		topic := s.Topic
		if len(topic) > 50 {
			topic = topic[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-50s  %-22s  %-19s  %d\n",
			s.ID, topic, s.Model, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Questions)
	}
	return nil
}

// --- show subcommand ---

var archiveShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print an archived run's report",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	if withQuestions, _ := cmd.Flags().GetBool("questions"); withQuestions {
		fmt.Printf("Topic: %s\n\n", run.Topic)
		for i, f := range run.Findings {
			marker := ""
			if f.Placeholder {
				marker = "  (no data)"
			}
			fmt.Printf("%d. %s%s\n", i+1, f.Question, marker)
		}
		return nil
	}

	fmt.Println(run.Report)
	return nil
}

// --- search subcommand ---

var archiveSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over archived topics and reports",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArchiveSearch,
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%d. [run %d] %s (%s)\n   %s\n",
			i+1, r.ID, r.Topic, r.CreatedAt.Format("2006-01-02"), r.Snippet)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive to YAML or JSON",
	RunE:  runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context())
	case "json":
		path, err = store.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return archive.NewStore(types.ArchiveConfig{
		ArchiveDir: archiveDir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	archiveCmd.PersistentFlags().String("archive-dir", "archive", "directory for the run archive database")
	archiveCmd.PersistentFlags().Int("max-results", 20, "maximum number of results")

	archiveListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use default)")
	archiveListCmd.Flags().Bool("json", false, "output as JSON")

	archiveShowCmd.Flags().Bool("questions", false, "show the run's questions instead of the report")

	archiveSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	archiveSearchCmd.Flags().Bool("json", false, "output as JSON")

	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
