package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/factline/internal/llm"
	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/normalize"
)

// RenderJSON renders a record as indented JSON.
func RenderJSON(rec *model.Record) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return string(data) + "\n", nil
}

// RenderMarkdown renders a record as a human-readable report. The LLM
// summary, when present, is appended as a clearly separated trailing
// section so the extracted facts always read first.
func RenderMarkdown(rec *model.Record, includeFooter bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Fact Record: %s\n\n", rec.DocumentID)
	fmt.Fprintf(&b, "- **Status**: %s\n", rec.Decision.Status)
	fmt.Fprintf(&b, "- **Turns**: %d\n", rec.Turns)
	fmt.Fprintf(&b, "- **Facts**: %d\n", len(rec.Facts))
	if rec.Decision.LargestMoney != nil {
		fmt.Fprintf(&b, "- **Largest amount**: %s\n", normalize.FormatMoney(*rec.Decision.LargestMoney))
	}
	if rec.Decision.MaxGrowth != nil {
		fmt.Fprintf(&b, "- **Max growth**: %.1f%%\n", rec.Decision.MaxGrowth.Fraction*100)
	}
	b.WriteString("\n")

	if len(rec.Facts) > 0 {
		b.WriteString("## Facts\n\n")
		b.WriteString("| ID | Kind | Value | Source | Speaker | Conf |\n")
		b.WriteString("|----|------|-------|--------|---------|------|\n")
		for _, f := range rec.Facts {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.2f |\n",
				f.ID, f.Kind, formatValue(f), cell(f.SourceText), speakerName(rec, f.SpeakerID), f.Confidence)
		}
		b.WriteString("\n")
	}

	if len(rec.Entities) > 0 {
		b.WriteString("## Entities\n\n")
		for _, e := range rec.Entities {
			fmt.Fprintf(&b, "- **%s** (%s)", e.Name, e.Role)
			if len(e.Aliases) > 0 {
				fmt.Fprintf(&b, " — aliases: %s", strings.Join(e.Aliases, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(rec.Contradictions) > 0 {
		b.WriteString("## Contradictions\n\n")
		for _, c := range rec.Contradictions {
			fmt.Fprintf(&b, "- **%s** (%s): %s", c.Rule, strings.Join(c.FactIDs, ", "), c.Description)
			if c.Retried {
				b.WriteString(" _(persisted after re-normalization)_")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(rec.Notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, n := range rec.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	if rec.LLM != nil {
		b.WriteString(llm.RenderSeparateMarkdown(rec.LLM))
	}

	if includeFooter {
		b.WriteString("---\n")
		b.WriteString("_Generated by factline. Facts are extracted verbatim with offsets; confidence reflects normalization certainty, not truth._\n")
	}

	return b.String()
}

// RenderSummary renders the one-line form used by batch output.
func RenderSummary(rec *model.Record) string {
	headline := "-"
	if rec.Decision.LargestMoney != nil {
		headline = normalize.FormatMoney(*rec.Decision.LargestMoney)
	}
	return fmt.Sprintf("%-30s %-8s facts=%-3d entities=%-3d flags=%-2d largest=%s",
		rec.DocumentID, rec.Decision.Status, len(rec.Facts), len(rec.Entities), len(rec.Contradictions), headline)
}

// formatValue renders a fact's typed value for the markdown table.
func formatValue(f model.Fact) string {
	v := f.Value
	switch {
	case v.Money != nil:
		return normalize.FormatMoney(*v.Money)
	case v.Percent != nil:
		return fmt.Sprintf("%.1f%%", v.Percent.Fraction*100)
	case v.Date != nil:
		if v.Date.Start == v.Date.End {
			return v.Date.Start
		}
		return fmt.Sprintf("%s..%s", v.Date.Start, v.Date.End)
	case v.Multiple != nil:
		return fmt.Sprintf("%.1fx", v.Multiple.Ratio)
	case v.Duration != nil:
		return fmt.Sprintf("%d %s", v.Duration.Count, v.Duration.Unit)
	case v.Headcount != nil:
		return fmt.Sprintf("%d %s", v.Headcount.Count, v.Headcount.Noun)
	case v.Entity != nil:
		return cell(v.Entity.Mention)
	default:
		return "-"
	}
}

func speakerName(rec *model.Record, speakerID string) string {
	if speakerID == "" {
		return "-"
	}
	if e := rec.Entity(speakerID); e != nil {
		return e.Name
	}
	return speakerID
}

// cell escapes pipe characters so source text cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
