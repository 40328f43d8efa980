package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/factline/internal/model"
)

var growthKeywords = []string{"growth", "grown", "grew", "growing", "increase", "increased", "up from"}

var teamNouns = map[string]bool{
	"people": true, "persons": true, "employees": true, "staff": true,
	"team members": true, "ftes": true, "fte": true, "engineers": true,
	"developers": true,
}

// checkGrowthConsistency is rule (a): a stated growth rate must be
// consistent with the ratio derived from some co-present before/after
// pair of MONEY facts in the same currency, within ±5% relative. With no
// money pair to check against, the rate stands unchallenged.
func checkGrowthConsistency(facts []model.Fact, sentences map[string]string) []model.Contradiction {
	var flags []model.Contradiction

	money := factsOfKind(facts, model.KindMoney)

	for _, p := range facts {
		if p.Kind != model.KindPercent || p.Value.Percent == nil {
			continue
		}
		if !mentionsAny(sentences[p.ID], growthKeywords) {
			continue
		}
		stated := p.Value.Percent.Fraction

		checked := false
		consistent := false
		var closestA, closestB model.Fact
		closestDiff := math.Inf(1)

		for i := 0; i < len(money); i++ {
			for j := i + 1; j < len(money); j++ {
				a, b := money[i], money[j]
				if a.Value.Money == nil || b.Value.Money == nil {
					continue
				}
				if a.Value.Money.Currency != b.Value.Money.Currency {
					continue
				}
				before, after := a.Value.Money.Amount, b.Value.Money.Amount
				if before <= 0 || after <= before {
					continue
				}
				derived := after/before - 1
				checked = true

				diff := math.Abs(stated-derived) / derived
				if diff <= growthTolerance {
					consistent = true
				} else if diff < closestDiff {
					closestDiff = diff
					closestA, closestB = a, b
				}
			}
		}

		if checked && !consistent {
			flags = append(flags, model.Contradiction{
				Rule:    model.RuleGrowthConsistency,
				FactIDs: []string{p.ID, closestA.ID, closestB.ID},
				Description: fmt.Sprintf(
					"stated growth %.0f%% does not match any before/after pair; closest: %s -> %s implies %.0f%%",
					stated*100, closestA.SourceText, closestB.SourceText,
					(closestB.Value.Money.Amount/closestA.Value.Money.Amount-1)*100),
			})
		}
	}

	return flags
}

// checkFundTotal is rule (b): the sum of itemized commitment amounts
// must not exceed the stated fund target by more than 1%.
func checkFundTotal(facts []model.Fact, sentences map[string]string) []model.Contradiction {
	var items []model.Fact
	var totals []model.Fact

	for _, f := range factsOfKind(facts, model.KindMoney) {
		if f.Value.Money == nil {
			continue
		}
		sentence := strings.ToLower(sentences[f.ID])
		switch {
		case strings.Contains(sentence, "commit"):
			items = append(items, f)
		case strings.Contains(sentence, "target") || strings.Contains(sentence, "fund size") || strings.Contains(sentence, "total fund"):
			totals = append(totals, f)
		}
	}

	if len(items) == 0 || len(totals) == 0 {
		return nil
	}

	var flags []model.Contradiction
	for _, total := range totals {
		sum := 0.0
		ids := []string{total.ID}
		for _, item := range items {
			if item.Value.Money.Currency != total.Value.Money.Currency {
				continue
			}
			sum += item.Value.Money.Amount
			ids = append(ids, item.ID)
		}
		if len(ids) == 1 {
			continue
		}
		if sum > total.Value.Money.Amount*(1+fundTotalSlack) {
			flags = append(flags, model.Contradiction{
				Rule:    model.RuleFundTotal,
				FactIDs: ids,
				Description: fmt.Sprintf(
					"itemized commitments sum to %.0f %s, exceeding the stated target %.0f %s by more than 1%%",
					sum, total.Value.Money.Currency,
					total.Value.Money.Amount, total.Value.Money.Currency),
			})
		}
	}

	return flags
}

// checkHeadcountMonotonic is rule (c): when both a team size and a
// partner count are present, partners must not exceed the team.
func checkHeadcountMonotonic(facts []model.Fact, sentences map[string]string) []model.Contradiction {
	var team, partners *model.Fact

	for i := range facts {
		f := facts[i]
		if f.Kind != model.KindHeadcount || f.Value.Headcount == nil {
			continue
		}
		switch {
		case f.Value.Headcount.Noun == "partners":
			if partners == nil || f.Value.Headcount.Count > partners.Value.Headcount.Count {
				partners = &facts[i]
			}
		case teamNouns[f.Value.Headcount.Noun]:
			if team == nil || f.Value.Headcount.Count > team.Value.Headcount.Count {
				team = &facts[i]
			}
		}
	}

	if team == nil || partners == nil {
		return nil
	}
	if partners.Value.Headcount.Count <= team.Value.Headcount.Count {
		return nil
	}

	return []model.Contradiction{{
		Rule:    model.RuleHeadcountMonotonic,
		FactIDs: []string{partners.ID, team.ID},
		Description: fmt.Sprintf(
			"partner count %d exceeds team size %d",
			partners.Value.Headcount.Count, team.Value.Headcount.Count),
	}}
}

func factsOfKind(facts []model.Fact, kind model.Kind) []model.Fact {
	var out []model.Fact
	for _, f := range facts {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func mentionsAny(sentence string, keywords []string) bool {
	lower := strings.ToLower(sentence)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
