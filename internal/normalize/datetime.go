package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/factline/internal/model"
)

const isoDate = "2006-01-02"

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	reISODate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reQuarter   = regexp.MustCompile(`^Q([1-4])\s?(\d{4})$`)
	reYearOnly  = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	reRelative  = regexp.MustCompile(`^(last|this|next)\s+(year|quarter|month)$`)
	reMonthDay  = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	reDayMonth  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})$`)
	reMonthYear = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
)

// normalizeDate resolves absolute dates directly and relative
// expressions against the document capture date. Relative resolution
// carries its fixed penalty; an unresolvable span is still emitted as a
// low-confidence fact with an unparseable-date note.
func normalizeDate(c model.Candidate, ctx Context) Result {
	span := strings.TrimSpace(c.Text)

	if v, ok := parseAbsoluteDate(span); ok {
		return Result{Value: model.FactValue{Date: v}, Confidence: 1.0}
	}

	if m := reRelative.FindStringSubmatch(span); m != nil {
		if ctx.Anchor.IsZero() {
			return unparseableDate(c)
		}
		v := resolveRelative(m[1], m[2], ctx.Anchor)
		return Result{
			Value:      model.FactValue{Date: v},
			Confidence: penalize(1.0, model.PenaltyRelativeDate),
			Notes:      []string{"relative_date: anchored to " + ctx.Anchor.Format(isoDate)},
		}
	}

	return unparseableDate(c)
}

func unparseableDate(c model.Candidate) Result {
	return Result{
		Value:      model.FactValue{Date: &model.DateValue{}},
		Confidence: penalize(1.0, model.PenaltyUnparseable),
		Notes:      []string{(&model.NormalizationError{Code: model.UnparseableDate, Span: c.Text}).Note()},
	}
}

func parseAbsoluteDate(span string) (*model.DateValue, bool) {
	if m := reISODate.FindStringSubmatch(span); m != nil {
		t, err := time.Parse(isoDate, span)
		if err != nil {
			return nil, false
		}
		return dayRange(t), true
	}

	if m := reMonthDay.FindStringSubmatch(span); m != nil {
		month, ok := months[strings.ToLower(m[1])]
		if !ok {
			return nil, false
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return dayRange(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)), true
	}

	if m := reDayMonth.FindStringSubmatch(span); m != nil {
		month, ok := months[strings.ToLower(m[2])]
		if !ok {
			return nil, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return dayRange(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)), true
	}

	if m := reQuarter.FindStringSubmatch(span); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return quarterRange(year, q), true
	}

	if m := reMonthYear.FindStringSubmatch(span); m != nil {
		month, ok := months[strings.ToLower(m[1])]
		if !ok {
			return nil, false
		}
		year, _ := strconv.Atoi(m[2])
		return monthRange(year, month), true
	}

	if reYearOnly.MatchString(span) {
		year, _ := strconv.Atoi(span)
		return yearRange(year), true
	}

	return nil, false
}

func resolveRelative(direction, unit string, anchor time.Time) *model.DateValue {
	switch unit {
	case "year":
		year := anchor.Year()
		switch direction {
		case "last":
			year--
		case "next":
			year++
		}
		return yearRange(year)
	case "quarter":
		q := (int(anchor.Month())-1)/3 + 1
		year := anchor.Year()
		switch direction {
		case "last":
			q--
			if q == 0 {
				q, year = 4, year-1
			}
		case "next":
			q++
			if q == 5 {
				q, year = 1, year+1
			}
		}
		return quarterRange(year, q)
	default: // month
		// Step from the first of the anchor's month: AddDate on the anchor
		// itself normalizes month-end days (March 31 minus a month lands in
		// March, not February).
		m := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		switch direction {
		case "last":
			m = m.AddDate(0, -1, 0)
		case "next":
			m = m.AddDate(0, 1, 0)
		}
		return monthRange(m.Year(), m.Month())
	}
}

func dayRange(t time.Time) *model.DateValue {
	d := t.Format(isoDate)
	return &model.DateValue{Start: d, End: d}
}

func monthRange(year int, month time.Month) *model.DateValue {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return &model.DateValue{Start: start.Format(isoDate), End: end.Format(isoDate)}
}

func quarterRange(year, q int) *model.DateValue {
	start := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return &model.DateValue{Start: start.Format(isoDate), End: end.Format(isoDate)}
}

func yearRange(year int) *model.DateValue {
	return &model.DateValue{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format(isoDate),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).Format(isoDate),
	}
}
