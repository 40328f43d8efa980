package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/factline/internal/model"
)

// Processor runs one document through the full pipeline. Per-document
// pipelines are independent, so documents parallelize freely.
type Processor interface {
	Process(ctx context.Context, doc *model.Document) (*model.Record, error)
}

// Loader turns a transcript path into a Document (text, roster sidecar,
// capture date).
type Loader interface {
	Load(path string) (*model.Document, error)
}

// DocumentJob is one transcript processed end to end.
type DocumentJob struct {
	Path      string
	Loader    Loader
	Processor Processor
	Limiter   *Limiter // optional pacing for LLM-annotated runs
}

// Execute loads and processes the job's transcript. A failed document
// yields an errored result; it never aborts the batch.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &DocumentResult{Path: j.Path, Error: err}
		}
	}

	doc, err := j.Loader.Load(j.Path)
	if err != nil {
		return &DocumentResult{Path: j.Path, Error: fmt.Errorf("load: %w", err)}
	}

	rec, err := j.Processor.Process(ctx, doc)
	if err != nil {
		return &DocumentResult{Path: j.Path, DocumentID: doc.ID, Error: err}
	}

	return &DocumentResult{Path: j.Path, DocumentID: doc.ID, Record: rec}
}

// DocumentResult is the per-document outcome of a batch run.
type DocumentResult struct {
	Path       string
	DocumentID string
	Record     *model.Record
	Error      error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many transcripts concurrently. The only
// state shared across pipelines is the optional rate limiter; entity
// resolution and normalization context stay inside each document's run.
type BatchProcessor struct {
	processor   Processor
	loader      Loader
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. requestsPerSecond <= 0
// disables pacing (the limiter only matters when LLM annotation is on).
func NewBatchProcessor(processor Processor, loader Loader, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}
	return &BatchProcessor{
		processor:   processor,
		loader:      loader,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessPaths processes transcript files concurrently.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*DocumentResult {
	if len(paths) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submission must not outpace result draining: both pool channels are
	// bounded, so feed jobs from a goroutine while Wait collects.
	go func() {
		for _, path := range paths {
			pool.Submit(&DocumentJob{
				Path:      path,
				Loader:    b.loader,
				Processor: b.processor,
				Limiter:   b.limiter,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	docResults := make([]*DocumentResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocumentResult)
	}

	return docResults
}

// ReadPathsFromFile reads transcript paths from a file, one per line,
// skipping blanks, comments, and duplicates.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// transcriptExts are the file types CollectTranscripts picks up.
var transcriptExts = map[string]bool{
	".txt": true, ".md": true, ".html": true, ".htm": true,
}

// CollectTranscripts lists transcript files directly under dir, sorted
// for deterministic batch order. Roster sidecars are skipped.
func CollectTranscripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".roster.yaml") || strings.HasSuffix(name, ".roster.yml") {
			continue
		}
		if transcriptExts[strings.ToLower(filepath.Ext(name))] {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
