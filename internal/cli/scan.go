package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/pipeline"
	"github.com/ppiankov/factline/internal/store"
)

var (
	outJSON         string
	outMD           string
	rosterPath      string
	capturedStr     string
	defaultCurrency string
	dbPath          string
	timeout         time.Duration
	noCache         bool
	noFooter        bool
	llmEnabled      bool
	llmProvider     string
	llmModel        string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <transcript>",
	Short: "Extract a fact record from a single transcript",
	Long: `Scan processes one transcript file (.txt, .md, .html) to:
- Segment the text into attributed speaker turns
- Extract amounts, percentages, dates, multiples, headcounts, names
- Normalize each span into a typed value with confidence
- Resolve mentions against the participant roster
- Cross-check the figures and flag contradictions

A roster sidecar (<name>.roster.yaml) next to the transcript supplies
participants and the capture date; --roster and --captured override it.

Example:
  factline scan call.txt
  factline scan call.txt --json record.json --md record.md
  factline scan pitch.html --roster pitch.roster.yaml --captured 2025-03-10
  factline scan call.txt --llm --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outJSON, "json", "record.json", "output JSON path")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scanCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to persist the record (optional)")

	// Input flags
	scanCmd.Flags().StringVar(&rosterPath, "roster", "", "roster YAML path (overrides the sidecar)")
	scanCmd.Flags().StringVar(&capturedStr, "captured", "", "capture date YYYY-MM-DD, anchors relative dates")
	scanCmd.Flags().StringVar(&defaultCurrency, "default-currency", "", "ISO code assumed for bare amounts (e.g. EUR)")

	scanCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the record cache (force reprocessing)")
	scanCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")

	// LLM flags
	scanCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	scanCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	scanCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", path)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	loader, err := buildLoader()
	if err != nil {
		return err
	}

	doc, err := loader.Load(path)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)
	rec, elapsed, err := p.ProcessTimed(ctx, doc)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Segmented %d turns\n", rec.Turns)
		fmt.Fprintf(os.Stderr, "✓ Extracted %d facts, %d entities\n", len(rec.Facts), len(rec.Entities))
		if len(rec.Contradictions) > 0 {
			fmt.Fprintf(os.Stderr, "✗ Flagged %d contradictions\n", len(rec.Contradictions))
		}
		if rec.LLM != nil && rec.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", rec.LLM.Provider, rec.LLM.Model)
		}
		fmt.Fprintf(os.Stderr, "✓ Done in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintln(os.Stderr)
	}

	if err := writeOutputs(rec, outJSON, outMD, cfg.Output.IncludeFooter); err != nil {
		return err
	}

	if dbPath != "" {
		s, err := store.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		if err := s.SaveRecord(ctx, rec); err != nil {
			return fmt.Errorf("persist record: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Persisted record to %s\n", dbPath)
		}
	}

	fmt.Println(pipeline.RenderSummary(rec))
	return nil
}

// buildConfig assembles the engine configuration from defaults, the
// config file, environment and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".factline", "cache")
		}
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	if defaultCurrency != "" {
		cfg.Normalize.DefaultCurrency = defaultCurrency
	}

	if !llmEnabled {
		cfg.LLM.Provider = ""
		return cfg, nil
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// buildLoader assembles the file loader from the roster flags.
func buildLoader() (*pipeline.FileLoader, error) {
	loader := pipeline.NewFileLoader()
	loader.RosterPath = rosterPath
	if capturedStr != "" {
		t, err := time.Parse("2006-01-02", capturedStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --captured date %q (want YYYY-MM-DD): %w", capturedStr, err)
		}
		loader.CapturedAt = t
	}
	return loader, nil
}

// writeOutputs renders the record to the requested files.
func writeOutputs(rec *model.Record, jsonPath, mdPath string, footer bool) error {
	if jsonPath != "" {
		data, err := pipeline.RenderJSON(rec)
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("write JSON output: %w", err)
		}
	}
	if mdPath != "" {
		md := pipeline.RenderMarkdown(rec, footer)
		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("write Markdown output: %w", err)
		}
	}
	return nil
}
