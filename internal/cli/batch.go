package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factline/internal/pipeline"
	"github.com/ppiankov/factline/internal/store"
	"github.com/ppiankov/factline/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noFooter, llm* and roster flags are defined in scan.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-listfile>",
	Short: "Process multiple transcripts in parallel",
	Long: `Batch processes a directory of transcripts, or a list file naming one
transcript path per line, with a configurable worker count. Each
transcript runs the full pipeline independently; roster sidecars are
picked up per file. One record pair (JSON + Markdown) is written per
transcript.

Example:
  factline batch ./calls
  factline batch calls.txt --concurrency 8 --output-dir ./records
  factline batch ./calls --db facts.db --llm --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factline-records", "output directory for records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from scan command
	batchCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to persist records (optional)")
	batchCmd.Flags().StringVar(&defaultCurrency, "default-currency", "", "ISO code assumed for bare amounts (e.g. EUR)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the record cache (force reprocessing)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Factline Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Resolve input to transcript paths
	paths, err := collectInput(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d transcripts\n", len(paths))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Processing with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	// LLM calls are the only outbound traffic; without them the limiter
	// just adds latency.
	rps, burst := 0.0, 0
	if llmEnabled {
		rps, burst = cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize
	}

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, pipeline.NewFileLoader(), concurrency, rps, burst)
	results := processor.ProcessPaths(ctx, paths)

	var db store.Store
	if dbPath != "" {
		db, err = store.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()
	}

	successCount := 0
	failureCount := 0
	reviewCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++
		rec := result.Record
		if len(rec.Contradictions) > 0 {
			reviewCount++
		}

		slug := sanitizeFilename(rec.DocumentID)
		data, err := pipeline.RenderJSON(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to render JSON: %v\n", result.Path, err)
			continue
		}
		if err := os.WriteFile(filepath.Join(outputDir, slug+".json"), []byte(data), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		md := pipeline.RenderMarkdown(rec, cfg.Output.IncludeFooter)
		if err := os.WriteFile(filepath.Join(outputDir, slug+".md"), []byte(md), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		if db != nil {
			if err := db.SaveRecord(ctx, rec); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to persist: %v\n", result.Path, err)
			}
		}

		fmt.Fprintf(os.Stderr, "✓ %s\n", pipeline.RenderSummary(rec))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d transcripts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Review:    %d (with contradictions)\n", reviewCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// collectInput resolves the batch argument: a directory yields its
// transcript files, anything else is read as a list file.
func collectInput(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input %s: %w", input, err)
	}
	if info.IsDir() {
		return worker.CollectTranscripts(input)
	}
	return worker.ReadPathsFromFile(input)
}

// sanitizeFilename sanitizes a document id for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
