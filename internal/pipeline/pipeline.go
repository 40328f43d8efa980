// Package pipeline orchestrates the per-document extraction stages:
// segment -> extract -> normalize -> resolve -> validate -> assemble.
// Stages run sequentially inside one document's pipeline; documents are
// independent and parallelize across workers with no shared state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/factline/internal/cache"
	"github.com/ppiankov/factline/internal/extract"
	"github.com/ppiankov/factline/internal/llm"
	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/normalize"
	"github.com/ppiankov/factline/internal/resolve"
	"github.com/ppiankov/factline/internal/segment"
	"github.com/ppiankov/factline/internal/validate"
)

// Pipeline runs the full extraction process for documents
type Pipeline struct {
	segmenter  *segment.Segmenter
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	summarizer *llm.Summarizer // Optional annotator (nil if disabled)
	recCache   cache.Cache     // Optional record cache (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	var recCache cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		recCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	} else if cfg.Cache.Enabled {
		recCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	return &Pipeline{
		segmenter:  segment.NewSegmenter(),
		extractor:  extract.NewExtractor(),
		normalizer: normalize.NewNormalizer(cfg.Normalize.DefaultCurrency),
		validator:  validate.NewValidator(),
		summarizer: summarizer,
		recCache:   recCache,
		config:     cfg,
	}
}

// Process runs one document through the pipeline and returns its
// Record. The only error it can return wraps a SegmentationError (or
// context cancellation); every extraction and normalization issue
// degrades to low-confidence facts or contradiction flags inside the
// Record, so callers always get a best-effort Record for non-empty
// input.
func (p *Pipeline) Process(ctx context.Context, doc *model.Document) (*model.Record, error) {
	key := cache.Key(doc.ID, doc.Text)
	if p.recCache != nil {
		if rec, ok := p.recCache.Get(key); ok {
			return rec, nil
		}
	}

	// 1. Segment into speaker turns.
	turns, err := p.segmenter.Segment(doc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Extract candidate spans per turn.
	var candidates []model.Candidate
	for _, turn := range turns {
		candidates = append(candidates, p.extractor.Extract(turn)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3 + 4. Normalize candidates and resolve entities. Resolution order
	// is fixed (speakers in turn order, then mentions in span order) so
	// entity creation is deterministic.
	nctx := normalize.Context{
		Anchor:      doc.CapturedAt,
		DocCurrency: normalize.InferDocumentCurrency(candidates),
	}
	session := resolve.NewSession(doc)

	// The UNATTRIBUTED sentinel stays out of the entity table; its facts
	// carry an empty speaker id.
	speakerIDs := make(map[int]string, len(turns))
	for _, turn := range turns {
		if turn.Speaker == model.UnattributedSpeaker {
			continue
		}
		if e := session.Resolve(turn.Speaker); e != nil {
			speakerIDs[turn.Index] = e.ID
		}
	}

	asm := newAssembler()
	for _, c := range candidates {
		var result normalize.Result
		if c.Kind == model.KindEntityMention {
			e := session.Resolve(c.Text)
			result = normalize.Result{
				Value:      model.FactValue{Entity: &model.EntityRef{EntityID: e.ID, Mention: c.Text}},
				Confidence: 1.0,
			}
		} else {
			result = p.normalizer.Normalize(c, nctx)
		}
		asm.add(c, result, speakerIDs[c.TurnIndex])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5 + 6. Assemble the record, then cross-check it. The validator may
	// request one bounded re-normalization pass over implicated facts.
	rec := asm.assemble(doc, len(turns), session)
	vctx := validate.Context{
		Sentences: asm.sentences(),
		Renorm:    &renormHook{pipeline: p, asm: asm, nctx: nctx},
	}
	rec.Contradictions = p.validator.Validate(rec, vctx)
	deriveDecision(rec)

	// 7. Optional LLM annotation, strictly after the facts are final.
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			rec.LLM = summary
		}
	}

	if p.recCache != nil {
		_ = p.recCache.Set(key, rec, 0)
	}

	return rec, nil
}

// renormHook is the validator's bounded retry: it re-runs normalization
// on the fact's originating candidate with the context widened from the
// span to its enclosing sentence, so a currency named near the amount
// ("committed 25 million in euros") outranks the document majority. An
// unchanged result confirms the contradiction is in the transcript, not
// the parser; a changed one supersedes the fact under a derived id.
type renormHook struct {
	pipeline *Pipeline
	asm      *assembler
	nctx     normalize.Context
	serial   int
}

func (h *renormHook) Renormalize(factID string) (model.Fact, bool) {
	c, orig, ok := h.asm.provenance(factID)
	if !ok || c.Kind == model.KindEntityMention {
		return model.Fact{}, false
	}

	nctx := h.nctx
	if cur := normalize.CurrencyIn(h.asm.sentences()[factID]); cur != "" {
		nctx.SentenceCurrency = cur
	}

	result := h.pipeline.normalizer.Normalize(c, nctx)
	if sameValue(orig, result) {
		return model.Fact{}, false
	}

	h.serial++
	nf := orig
	nf.ID = fmt.Sprintf("%s.r%d", factID, h.serial)
	nf.Value = result.Value
	nf.Confidence = result.Confidence
	nf.Notes = result.Notes
	h.asm.track(nf.ID, c, nf)
	return nf, true
}

func sameValue(f model.Fact, r normalize.Result) bool {
	a, errA := json.Marshal(f.Value)
	b, errB := json.Marshal(r.Value)
	return errA == nil && errB == nil && string(a) == string(b) && f.Confidence == r.Confidence
}

// deriveDecision fills the record's triage hint from its final facts.
func deriveDecision(rec *model.Record) {
	d := model.Decision{
		Status:         model.DecisionOK,
		Contradictions: len(rec.Contradictions),
	}
	if len(rec.Contradictions) > 0 {
		d.Status = model.DecisionReview
	}

	for _, f := range rec.Facts {
		if f.Value.Money != nil {
			if d.LargestMoney == nil || f.Value.Money.Amount > d.LargestMoney.Amount {
				v := *f.Value.Money
				d.LargestMoney = &v
			}
		}
		if f.Value.Percent != nil {
			if d.MaxGrowth == nil || f.Value.Percent.Fraction > d.MaxGrowth.Fraction {
				v := *f.Value.Percent
				d.MaxGrowth = &v
			}
		}
	}

	rec.Decision = d
}

// ProcessTimed wraps Process with wall-clock reporting for verbose
// runs. Timing stays out of the Record so reruns stay byte-identical.
func (p *Pipeline) ProcessTimed(ctx context.Context, doc *model.Document) (*model.Record, time.Duration, error) {
	start := time.Now()
	rec, err := p.Process(ctx, doc)
	return rec, time.Since(start), err
}
