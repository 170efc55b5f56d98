// Package tokens implements the label template engine. It substitutes
// brace-delimited placeholder tokens in raw markup with per-label values
// derived from a serial number and a timestamp.
package tokens

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which token groups Expand substitutes.
type Mode int

const (
	// ModeFull substitutes serial and date/time tokens. Used for real print jobs.
	ModeFull Mode = iota
	// ModeDateOnly substitutes date/time tokens and leaves {SERIAL*} intact,
	// for contexts where the serial is not yet meaningful.
	ModeDateOnly
	// ModePreview follows the same rules as ModeFull with a caller-supplied
	// sample serial that is never persisted.
	ModePreview
)

// Context carries the per-label values for one expansion.
type Context struct {
	Serial    int
	Timestamp time.Time
	Mode      Mode
}

// monthChars maps month 1..12 to A..L.
const monthChars = "ABCDEFGHIJKL"

// MonthChar returns the letter code for a month (1:A .. 12:L).
// Out-of-range months default to A.
func MonthChar(month int) string {
	if month < 1 || month > 12 {
		return "A"
	}
	return string(monthChars[month-1])
}

// Expand substitutes all applicable tokens in markup. It is a total function:
// unknown brace sequences are left verbatim and token-free input is returned
// unchanged. Substitution is a single textual pass; no token expansion is
// itself re-expanded.
func Expand(markup string, ctx Context) string {
	if markup == "" {
		return markup
	}

	ts := ctx.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	pairs := []string{
		"{DATE}", ts.Format("02/01/2006"),
		"{DD}", ts.Format("02"),
		"{MM}", ts.Format("01"),
		"{YYYY}", ts.Format("2006"),
		"{YY}", ts.Format("06"),
		"{CHAR_MM}", MonthChar(int(ts.Month())),
		"{TIME}", ts.Format("15:04:05"),
	}

	if ctx.Mode != ModeDateOnly {
		pairs = append(pairs,
			"{SERIAL}", fmt.Sprintf("%d", ctx.Serial),
			"{SERIAL1}", fmt.Sprintf("%02d", ctx.Serial),
			"{SERIAL2}", fmt.Sprintf("%03d", ctx.Serial),
			"{SERIAL3}", fmt.Sprintf("%04d", ctx.Serial),
			"{SERIAL4}", fmt.Sprintf("%05d", ctx.Serial),
			"{SERIAL5}", fmt.Sprintf("%06d", ctx.Serial),
		)
	}

	return strings.NewReplacer(pairs...).Replace(markup)
}

// Available returns the supported tokens and their descriptions, in a stable
// order suitable for help output.
func Available() []TokenInfo {
	return []TokenInfo{
		{"{SERIAL}", "Serial number (e.g. 1, 2, 3...)"},
		{"{SERIAL1}", "Serial number, 2-digit format (e.g. 01, 02...)"},
		{"{SERIAL2}", "Serial number, 3-digit format (e.g. 001, 002...)"},
		{"{SERIAL3}", "Serial number, 4-digit format (e.g. 0001, 0002...)"},
		{"{SERIAL4}", "Serial number, 5-digit format (e.g. 00001, 00002...)"},
		{"{SERIAL5}", "Serial number, 6-digit format (e.g. 000001, 000002...)"},
		{"{DATE}", "Date as dd/mm/yyyy"},
		{"{DD}", "Day of month, 2 digits"},
		{"{MM}", "Month, 2 digits"},
		{"{YYYY}", "Year, 4 digits"},
		{"{YY}", "Year, last 2 digits"},
		{"{CHAR_MM}", "Month letter (01:A, 02:B ... 12:L)"},
		{"{TIME}", "Time as HH:mm:ss, 24-hour"},
	}
}

// TokenInfo describes one supported token.
type TokenInfo struct {
	Token       string
	Description string
}

// ContainsTokens reports whether markup holds at least one supported token.
func ContainsTokens(markup string) bool {
	if markup == "" {
		return false
	}
	for _, info := range Available() {
		if strings.Contains(markup, info.Token) {
			return true
		}
	}
	return false
}
