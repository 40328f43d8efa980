package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/factline/internal/model"
)

// UnknownCurrency is the ISO 4217 code for "no currency": used when no
// marker is present on the span and none can be inferred.
const UnknownCurrency = "XXX"

var symbolToISO = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
}

var isoCodes = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "CHF": true,
}

// magnitudes maps magnitude words to multipliers. Single-letter suffixes
// are ambiguous notation and carry a penalty; words and "bn"/"mm" do not.
var magnitudes = map[string]struct {
	factor    float64
	ambiguous bool
}{
	"trillion": {1e12, false},
	"billion":  {1e9, false},
	"bn":       {1e9, false},
	"million":  {1e6, false},
	"mm":       {1e6, false},
	"thousand": {1e3, false},
	"b":        {1e9, true},
	"m":        {1e6, true},
	"k":        {1e3, true},
}

var moneyNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// normalizeMoney resolves magnitude words and currency markers into a
// decimal amount plus ISO code. Missing currency degrades in order:
// configured default, document majority, then UnknownCurrency with an
// ambiguous-currency note. Inference of any kind costs the currency
// penalty, so an uninferable amount lands at confidence 0.4.
func (n *Normalizer) normalizeMoney(c model.Candidate, ctx Context) Result {
	confidence := 1.0
	var notes []string

	numText := moneyNumber.FindString(c.Text)
	amount, err := strconv.ParseFloat(strings.ReplaceAll(numText, ",", ""), 64)
	if err != nil {
		// Pattern guaranteed digits; treat failure as zero-value span.
		notes = append(notes, (&model.NormalizationError{Code: model.AmbiguousCurrency, Span: c.Text}).Note())
		return Result{
			Value:      model.FactValue{Money: &model.MoneyValue{Amount: 0, Currency: UnknownCurrency}},
			Confidence: penalize(confidence, model.PenaltyUnparseable),
			Notes:      notes,
		}
	}

	if mag, ambiguous, ok := findMagnitude(c.Text); ok {
		amount *= mag
		if ambiguous {
			confidence = penalize(confidence, model.PenaltyAmbiguousMagnitude)
			notes = append(notes, "ambiguous_magnitude: "+c.Text)
		}
	}

	currency, explicit := findCurrency(c.Text)
	if !explicit {
		confidence = penalize(confidence, model.PenaltyInferredCurrency)
		switch {
		case ctx.SentenceCurrency != "":
			currency = ctx.SentenceCurrency
			notes = append(notes, "inferred_currency: sentence context "+currency)
		case n.defaultCurrency != "":
			currency = n.defaultCurrency
			notes = append(notes, "inferred_currency: configured default "+currency)
		case ctx.DocCurrency != "":
			currency = ctx.DocCurrency
			notes = append(notes, "inferred_currency: document majority "+currency)
		default:
			currency = UnknownCurrency
			notes = append(notes, (&model.NormalizationError{Code: model.AmbiguousCurrency, Span: c.Text}).Note())
		}
	}

	return Result{
		Value:      model.FactValue{Money: &model.MoneyValue{Amount: amount, Currency: currency}},
		Confidence: confidence,
		Notes:      notes,
	}
}

// findCurrency returns the ISO code for an explicit marker on the span.
func findCurrency(span string) (string, bool) {
	for sym, iso := range symbolToISO {
		if strings.Contains(span, sym) {
			return iso, true
		}
	}
	upper := strings.ToUpper(span)
	for code := range isoCodes {
		if strings.Contains(upper, code) {
			return code, true
		}
	}
	return "", false
}

var (
	currencyCodePattern = regexp.MustCompile(`\b(EUR|USD|GBP|CHF)\b`)
	currencyWordPattern = regexp.MustCompile(`\b(euros?|dollars?|pounds?|francs?)\b`)
)

// CurrencyIn returns the single currency named anywhere in the text, by
// symbol, ISO code, or currency word ("25 million in euros"). Returns ""
// when none or more than one distinct currency appears.
func CurrencyIn(text string) string {
	found := make(map[string]bool)
	for sym, iso := range symbolToISO {
		if strings.Contains(text, sym) {
			found[iso] = true
		}
	}
	for _, code := range currencyCodePattern.FindAllString(text, -1) {
		found[code] = true
	}
	for _, word := range currencyWordPattern.FindAllString(strings.ToLower(text), -1) {
		switch strings.TrimSuffix(word, "s") {
		case "euro":
			found["EUR"] = true
		case "dollar":
			found["USD"] = true
		case "pound":
			found["GBP"] = true
		case "franc":
			found["CHF"] = true
		}
	}

	if len(found) != 1 {
		return ""
	}
	for c := range found {
		return c
	}
	return ""
}

// findMagnitude returns the multiplier for a magnitude word on the span.
func findMagnitude(span string) (factor float64, ambiguous, found bool) {
	lower := strings.ToLower(span)
	// Words first so "bn" is not read as a bare "b".
	for _, word := range []string{"trillion", "billion", "million", "thousand", "bn", "mm"} {
		if strings.Contains(lower, word) {
			m := magnitudes[word]
			return m.factor, m.ambiguous, true
		}
	}
	// Single-letter suffix directly after the number: "$2.5M", "1.2B".
	trimmed := strings.TrimRight(span, " ")
	if len(trimmed) > 1 {
		if m, ok := magnitudes[strings.ToLower(trimmed[len(trimmed)-1:])]; ok {
			prev := trimmed[len(trimmed)-2]
			if prev >= '0' && prev <= '9' || prev == ' ' {
				return m.factor, m.ambiguous, true
			}
		}
	}
	return 1, false, false
}

// FormatMoney renders a money value back through the same magnitude and
// currency rules, producing a string the extractor recognizes as MONEY.
func FormatMoney(v model.MoneyValue) string {
	amount := v.Amount
	magnitude := ""
	switch {
	case amount >= 1e9:
		amount /= 1e9
		magnitude = " billion"
	case amount >= 1e6:
		amount /= 1e6
		magnitude = " million"
	case amount >= 1e3:
		amount /= 1e3
		magnitude = " thousand"
	}

	num := strconv.FormatFloat(amount, 'f', -1, 64)
	switch v.Currency {
	case "EUR":
		return "€" + num + magnitude
	case "USD":
		return "$" + num + magnitude
	case "GBP":
		return "£" + num + magnitude
	case UnknownCurrency, "":
		return num + magnitude
	default:
		return fmt.Sprintf("%s %s%s", v.Currency, num, magnitude)
	}
}
