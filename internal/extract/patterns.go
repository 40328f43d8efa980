package extract

import (
	"regexp"

	"github.com/ppiankov/factline/internal/model"
)

// Pattern families per candidate kind. A kind may carry several regexes;
// the overlap policy in extract.go keeps the longest match per kind.
var (
	// MONEY: currency symbol or code adjacent to a number, optionally a
	// magnitude word. The magnitude-only form (no marker at all) is still
	// a MONEY candidate: the normalizer handles the missing currency.
	moneySymbol    = regexp.MustCompile(`[€$£]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:trillion|billion|million|thousand|bn|mm|[MBKmk]))?\b`)
	moneyCodeLead  = regexp.MustCompile(`\b(?:EUR|USD|GBP|CHF)\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:trillion|billion|million|thousand|bn|mm|[MBKmk]))?\b`)
	moneyCodeTrail = regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:trillion|billion|million|thousand|bn|mm|[MBKmk])?\s?(?:EUR|USD|GBP|CHF)\b`)
	moneyBare      = regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:trillion|billion|million|thousand|bn|mm|[MBK])\b`)

	percentPattern = regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:%|percent\b)`)

	// DATE: absolute calendar forms plus relative expressions resolved
	// later against the document capture date.
	dateMonthDay = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)
	dateDayMonth = regexp.MustCompile(`\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)
	dateMonthYear = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)
	dateISO      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	dateQuarter  = regexp.MustCompile(`\bQ[1-4]\s?\d{4}\b`)
	dateRelative = regexp.MustCompile(`\b(?:last|this|next)\s+(?:year|quarter|month)\b`)
	dateYear     = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	multiplePattern = regexp.MustCompile(`\b\d+(?:\.\d+)?x\b`)

	durationPattern = regexp.MustCompile(`\b\d+\s+(?:day|week|month|quarter|year)s?\b`)

	headcountPattern = regexp.MustCompile(`\b\d[\d,]*\s+(?:people|persons|employees|engineers|developers|partners|investors|founders|analysts|FTEs?|staff|team\s+members)\b`)

	// ENTITY_MENTION: capitalized multi-token spans (with common name
	// particles) and short all-caps initialisms.
	entityName     = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+(?:van|de|der|den|von|da|di|ter|[A-Z][a-z]+)){1,3}\b`)
	entityInitials = regexp.MustCompile(`\b[A-Z]{2,4}\b`)
)

// initialismStoplist holds all-caps tokens that are never entity
// mentions: currency codes, finance shorthand, common acronyms.
var initialismStoplist = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "CHF": true,
	"YOY": true, "QOQ": true, "ARR": true, "MRR": true, "GMV": true,
	"IRR": true, "TVPI": true, "DPI": true, "MOIC": true,
	"EBITDA": true, "CAGR": true, "NDA": true, "LOI": true, "SPV": true,
	"CEO": true, "CTO": true, "CFO": true, "COO": true,
	"AI": true, "ML": true, "API": true, "OK": true, "FTE": true, "FTES": true,
}

// kindPatterns maps each kind to its pattern family.
var kindPatterns = map[model.Kind][]*regexp.Regexp{
	model.KindMoney:         {moneySymbol, moneyCodeLead, moneyCodeTrail, moneyBare},
	model.KindPercent:       {percentPattern},
	model.KindDate:          {dateMonthDay, dateDayMonth, dateMonthYear, dateISO, dateQuarter, dateRelative, dateYear},
	model.KindMultiple:      {multiplePattern},
	model.KindDuration:      {durationPattern},
	model.KindHeadcount:     {headcountPattern},
	model.KindEntityMention: {entityName, entityInitials},
}

// numericKinds are mutually exclusive on a span: a MONEY and a PERCENT
// can never claim overlapping text. DATE and ENTITY_MENTION may overlap
// candidates of other kinds.
var numericKinds = []model.Kind{
	model.KindMoney,
	model.KindPercent,
	model.KindMultiple,
	model.KindHeadcount,
	model.KindDuration,
}

// numericPrecedence breaks exact length ties across numeric kinds.
var numericPrecedence = map[model.Kind]int{
	model.KindMoney:     0,
	model.KindPercent:   1,
	model.KindMultiple:  2,
	model.KindHeadcount: 3,
	model.KindDuration:  4,
}
