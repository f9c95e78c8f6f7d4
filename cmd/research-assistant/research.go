// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/archive"
	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/gemini"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Plan, research, and synthesize a report on a topic",
	Long: `Research runs the full pipeline for one topic: the planner breaks the
topic into 3-5 questions, each question is researched with search
grounding, and the findings are synthesized into a Markdown report.

With no topic argument the command runs interactively, prompting for
topics until you type quit. Completed runs are recorded in the local
archive unless --no-archive is set.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("model", "", "Gemini model identifier")
	researchCmd.Flags().Int("max-retries", 0, "retries per model call after a transient failure (0 = default, negative = none)")
	researchCmd.Flags().Duration("backoff", 0, "base delay between retry attempts (0 = default)")
	researchCmd.Flags().Duration("question-delay", 0, "pause between research questions (0 = default, negative = none)")
	researchCmd.Flags().Bool("fallback-no-search", false, "answer from model knowledge when search grounding is unsupported")
	researchCmd.Flags().String("output-dir", "output/reports", "directory for saved report files")
	researchCmd.Flags().String("archive-dir", "archive", "directory for the run archive database")
	researchCmd.Flags().Bool("save", false, "always save the report to a file without prompting")
	researchCmd.Flags().Bool("no-archive", false, "do not record the run in the archive")
	researchCmd.Flags().Bool("skip-validation", false, "skip the startup API key validation call")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg := assistantConfigFromFlags(cmd)

	client, err := gemini.NewClient(cfg.Gemini)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if skip, _ := cmd.Flags().GetBool("skip-validation"); !skip {
		fmt.Fprintln(os.Stderr, "Validating API key...")
		if err := client.Validate(ctx); err != nil {
			return fmt.Errorf("API key validation failed: %w", err)
		}
	}

	var store *archive.Store
	if noArchive, _ := cmd.Flags().GetBool("no-archive"); !noArchive {
		store, err = archive.NewStore(cfg.Archive)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	alwaysSave, _ := cmd.Flags().GetBool("save")

	if len(args) > 0 {
		topic := strings.Join(args, " ")
		return runOnce(ctx, client, cfg, store, topic, alwaysSave)
	}

	return interactiveLoop(ctx, client, cfg, store, alwaysSave)
}

// runOnce conducts one research run, displays the report, and records it.
func runOnce(ctx context.Context, client *gemini.Client, cfg types.AssistantConfig, store *archive.Store, topic string, save bool) error {
	a := assistant.New(client, cfg, os.Stderr)

	run, err := a.ConductResearch(ctx, topic)
	if err != nil {
		return err
	}

	displayReport(run.Topic, run.Report)

	if store != nil {
		if err := store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Archived as run %d\n", run.ID)
	}

	if save {
		path, err := archive.WriteReportFile(cfg.Archive.OutputDir, run.Topic, run.Report)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved as %s\n", path)
	}

	return nil
}

// interactiveLoop prompts for topics until the user quits. A failed run
// reports its error and returns to the prompt; quitting is a normal exit.
func interactiveLoop(ctx context.Context, client *gemini.Client, cfg types.AssistantConfig, store *archive.Store, alwaysSave bool) error {
	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\nEnter a research topic (or 'quit' to exit): ")
		if !in.Scan() {
			fmt.Println()
			return in.Err()
		}

		topic := strings.TrimSpace(in.Text())
		switch strings.ToLower(topic) {
		case "quit", "exit", "q":
			return nil
		case "":
			fmt.Println("Please enter a topic to research.")
			continue
		}

		a := assistant.New(client, cfg, os.Stderr)
		run, err := a.ConductResearch(ctx, topic)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Research failed: %v\n", err)
			continue
		}

		displayReport(run.Topic, run.Report)

		if store != nil {
			if err := store.SaveRun(ctx, run); err != nil {
				fmt.Fprintf(os.Stderr, "Archiving failed: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Archived as run %d\n", run.ID)
			}
		}

		if alwaysSave || promptYesNo(in, "Save this report to a file? (y/n): ") {
			path, err := archive.WriteReportFile(cfg.Archive.OutputDir, run.Topic, run.Report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Saving report failed: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Report saved as %s\n", path)
			}
		}
	}
}

func promptYesNo(in *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}

func displayReport(topic, report string) {
	rule := strings.Repeat("=", 80)
	fmt.Println(rule)
	fmt.Println("FINAL RESEARCH REPORT")
	fmt.Println("Topic:", topic)
	fmt.Println(rule)
	fmt.Println(report)
	fmt.Println(rule)
}

// assistantConfigFromFlags layers flag values over the viper config. The
// API key comes from the config file or .secrets/gemini-api-key.
func assistantConfigFromFlags(cmd *cobra.Command) types.AssistantConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("gemini.model")
	}

	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	if maxRetries == 0 {
		maxRetries = viper.GetInt("retry.max_retries")
	}
	backoff, _ := cmd.Flags().GetDuration("backoff")
	if backoff == 0 {
		backoff = viper.GetDuration("retry.backoff_base")
	}
	retry := types.RetryConfig{MaxRetries: maxRetries, BackoffBase: backoff}

	questionDelay, _ := cmd.Flags().GetDuration("question-delay")
	if questionDelay == 0 {
		questionDelay = viper.GetDuration("research.question_delay")
	}
	fallback, _ := cmd.Flags().GetBool("fallback-no-search")

	outputDir, _ := cmd.Flags().GetString("output-dir")
	archiveDir, _ := cmd.Flags().GetString("archive-dir")

	return types.AssistantConfig{
		Gemini: types.GeminiConfig{
			Model:   model,
			APIKey:  secretDefault("gemini-api-key", viper.GetString("gemini.api_key")),
			Timeout: viper.GetDuration("gemini.timeout"),
		},
		Planner: types.PlannerConfig{RetryConfig: retry},
		Research: types.ResearchConfig{
			RetryConfig:           retry,
			QuestionDelay:         questionDelay,
			FallbackWithoutSearch: fallback,
		},
		Synthesis: types.SynthesisConfig{RetryConfig: retry},
		Archive: types.ArchiveConfig{
			ArchiveDir: archiveDir,
			OutputDir:  outputDir,
			MaxResults: viper.GetInt("archive.max_results"),
		},
	}
}
