package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"content-analyzer/internal/di"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/env"
	"content-analyzer/internal/usecase/escalation"
	"content-analyzer/internal/usecase/phaserunner"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: analyzer <posts.json>")
		os.Exit(1)
	}

	envService := env.NewEnvService()

	posts, err := loadPosts(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load posts: %v", err)
	}
	if len(posts) == 0 {
		log.Fatal("No posts to analyze")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	container, err := di.NewContainer(di.Config{
		APIKey:   envService.MustGet("OPENROUTER_API_KEY"),
		Model:    envService.MustGet("OPENROUTER_MODEL_NAME"),
		BaseURL:  envService.Get("OPENROUTER_BASE_URL"),
		Provider: envService.Get("SCORING_PROVIDER"),
		LogLevel: envService.Get("LOG_LEVEL"),
		Phase: phaserunner.Config{
			Mode:          phaserunner.Mode(envService.Get("CONCURRENCY_MODE")),
			PhaseDeadline: envService.GetDuration("PHASE_DEADLINE", phaserunner.DefaultPhaseDeadline),
		},
		Escalation:      escalation.DefaultConfig(),
		ItemConcurrency: envService.GetInt("ITEM_CONCURRENCY", 1),
	})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer container.Close()

	resultsDir := envService.Get("RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = "results"
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		log.Fatalf("Failed to create results directory: %v", err)
	}
	outPath := filepath.Join(resultsDir, fmt.Sprintf("analysis_%s.jsonl", time.Now().Format("20060102_150405")))
	outFile, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create results file: %v", err)
	}
	defer outFile.Close()

	container.Logger.Info("Batch started", "posts", len(posts), "output", outPath)
	fmt.Printf("Analyzing %d posts...\n\n", len(posts))

	enc := json.NewEncoder(outFile)
	var records []*entity.AnalysisRecord
	for record := range container.Analyzer.AnalyzeBatch(ctx, posts) {
		records = append(records, record)
		if err := enc.Encode(record); err != nil {
			container.Logger.Error("Failed to write record", "post", record.PostID, "error", err)
		}
		printRecord(record)
	}

	summary := container.Coordinator.Summary(records)
	container.Logger.Info("Batch finished",
		"items", summary.Items,
		"item_failures", summary.ItemFailures,
		"task_failures", summary.TaskFailures,
		"escalations", summary.Escalations,
		"mean_score", summary.MeanScore,
	)

	fmt.Println()
	color.Cyan("Run %s: %d posts analyzed", summary.RunID, summary.Items)
	fmt.Printf("  Mean score:    %.2f\n", summary.MeanScore)
	fmt.Printf("  Escalations:   %d\n", summary.Escalations)
	fmt.Printf("  Task failures: %d\n", summary.TaskFailures)
	if summary.ItemFailures > 0 {
		color.Red("  Item failures: %d", summary.ItemFailures)
	}
	fmt.Printf("\nResults written to %s\n", outPath)
}

func loadPosts(path string) ([]entity.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var posts []entity.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("invalid posts file: %w", err)
	}
	return posts, nil
}

func printRecord(record *entity.AnalysisRecord) {
	if record.Err != "" {
		color.Red("[%s] failed: %s", record.PostID, record.Err)
		return
	}
	line := fmt.Sprintf("[%s] score %.2f (%s, confidence %.2f) -> %s",
		record.PostID,
		record.Score.Value,
		record.Score.QualityTier,
		record.Score.Confidence,
		record.Score.Recommendation,
	)
	switch {
	case record.Escalation.Required:
		color.Yellow("%s  ESCALATED", line)
		for _, reason := range record.Escalation.Reasons {
			fmt.Printf("    - %s\n", reason)
		}
	case record.Score.Recommendation == entity.RecommendApprove:
		color.Green("%s", line)
	default:
		fmt.Println(line)
	}
}
