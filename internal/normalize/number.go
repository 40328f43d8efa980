package normalize

import (
	"strconv"
	"strings"

	"github.com/ppiankov/factline/internal/model"
)

// normalizePercent parses to a fraction in [0, inf): growth rates over
// 100% are valid.
func normalizePercent(c model.Candidate) Result {
	span := strings.TrimSpace(c.Text)
	span = strings.TrimSuffix(span, "%")
	span = strings.TrimSuffix(strings.TrimSpace(span), "percent")
	span = strings.ReplaceAll(strings.TrimSpace(span), ",", "")

	value, err := strconv.ParseFloat(span, 64)
	if err != nil {
		return Result{
			Value:      model.FactValue{Percent: &model.PercentValue{}},
			Confidence: penalize(1.0, model.PenaltyUnparseable),
			Notes:      []string{"unparseable_percent: " + c.Text},
		}
	}

	return Result{
		Value:      model.FactValue{Percent: &model.PercentValue{Fraction: value / 100}},
		Confidence: 1.0,
	}
}

// normalizeMultiple parses "N.Nx" to a ratio.
func normalizeMultiple(c model.Candidate) Result {
	span := strings.TrimSuffix(strings.TrimSpace(c.Text), "x")

	ratio, err := strconv.ParseFloat(span, 64)
	if err != nil {
		return Result{
			Value:      model.FactValue{Multiple: &model.MultipleValue{}},
			Confidence: penalize(1.0, model.PenaltyUnparseable),
			Notes:      []string{(&model.NormalizationError{Code: model.UnparseableMultiple, Span: c.Text}).Note()},
		}
	}

	return Result{
		Value:      model.FactValue{Multiple: &model.MultipleValue{Ratio: ratio}},
		Confidence: 1.0,
	}
}

// normalizeDuration parses to a count plus unit, retained unconverted:
// forcing a single unit would round lossily.
func normalizeDuration(c model.Candidate) Result {
	fields := strings.Fields(c.Text)
	count, _ := strconv.Atoi(fields[0])
	unit := strings.ToLower(fields[len(fields)-1])
	if !strings.HasSuffix(unit, "s") {
		unit += "s"
	}

	return Result{
		Value:      model.FactValue{Duration: &model.DurationValue{Count: count, Unit: unit}},
		Confidence: 1.0,
	}
}

// normalizeHeadcount parses a bare integer adjacent to a role noun.
func normalizeHeadcount(c model.Candidate) Result {
	fields := strings.Fields(c.Text)
	count, _ := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	noun := strings.ToLower(strings.Join(fields[1:], " "))

	return Result{
		Value:      model.FactValue{Headcount: &model.HeadcountValue{Count: count, Noun: noun}},
		Confidence: 1.0,
	}
}

// InferDocumentCurrency picks the majority explicit currency across a
// document's MONEY candidates, used as the inference fallback for bare
// amounts. Ties resolve alphabetically for determinism.
func InferDocumentCurrency(candidates []model.Candidate) string {
	counts := make(map[string]int)
	for _, c := range candidates {
		if c.Kind != model.KindMoney {
			continue
		}
		if iso, ok := findCurrency(c.Text); ok {
			counts[iso]++
		}
	}

	best := ""
	for iso, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && iso < best) {
			best = iso
		}
	}
	return best
}
