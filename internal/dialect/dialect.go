// Package dialect classifies raw label markup into a printer command language.
package dialect

import "strings"

// Dialect identifies a label markup language.
type Dialect int

const (
	Unknown Dialect = iota
	ZPL
	EPL
	CPCL
	TSPL
	DPL
)

var dialectNames = map[Dialect]string{
	Unknown: "Unknown",
	ZPL:     "ZPL",
	EPL:     "EPL",
	CPCL:    "CPCL",
	TSPL:    "TSPL",
	DPL:     "DPL",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return "Unknown"
}

// rule pairs a dialect with the predicate that recognizes it. Rules are
// evaluated in order and the first match wins; marker sets overlap between
// languages, so the order below is part of the contract.
type rule struct {
	dialect Dialect
	match   func(s string) bool
}

var rules = []rule{
	{ZPL, func(s string) bool {
		return strings.Contains(s, "^XA") || strings.Contains(s, "^FO") || strings.Contains(s, "^XZ")
	}},
	{EPL, func(s string) bool {
		return strings.HasPrefix(s, "N\r") || strings.Contains(s, `A\`) || strings.Contains(s, "EPL")
	}},
	{CPCL, func(s string) bool {
		return strings.Contains(s, "! 0 200 200") || strings.Contains(s, "TONE")
	}},
	{TSPL, func(s string) bool {
		return strings.Contains(s, "SIZE ") && strings.Contains(s, "GAP")
	}},
	{DPL, func(s string) bool {
		return strings.Contains(s, "NASC") ||
			(strings.Contains(s, "TEXT") && strings.Contains(s, "DMATRIX"))
	}},
}

// Detect classifies markup by its characteristic command markers. It is a
// total function: unrecognized or empty input yields Unknown, never an error.
func Detect(markup string) Dialect {
	s := strings.ToUpper(strings.TrimSpace(markup))
	for _, r := range rules {
		if r.match(s) {
			return r.dialect
		}
	}
	return Unknown
}
