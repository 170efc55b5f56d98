package tokens

import (
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2025, time.March, 9, 14, 5, 7, 0, time.UTC)

func expand(t *testing.T, markup string, serial int, mode Mode) string {
	t.Helper()
	return Expand(markup, Context{Serial: serial, Timestamp: testTime, Mode: mode})
}

func TestExpandSerialFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token  string
		serial int
		want   string
	}{
		{"{SERIAL}", 7, "7"},
		{"{SERIAL}", 123, "123"},
		{"{SERIAL1}", 7, "07"},
		{"{SERIAL2}", 7, "007"},
		{"{SERIAL3}", 7, "0007"},
		{"{SERIAL4}", 7, "00007"},
		{"{SERIAL5}", 7, "000007"},
		{"{SERIAL1}", 123, "123"}, // wider than the pad, printed as-is
		{"{SERIAL}", 0, "0"},
	}

	for _, tt := range tests {
		if got := expand(t, tt.token, tt.serial, ModeFull); got != tt.want {
			t.Errorf("Expand(%q, serial=%d) = %q, want %q", tt.token, tt.serial, got, tt.want)
		}
	}
}

func TestExpandDateTimeTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  string
	}{
		{"{DATE}", "09/03/2025"},
		{"{DD}", "09"},
		{"{MM}", "03"},
		{"{YYYY}", "2025"},
		{"{YY}", "25"},
		{"{CHAR_MM}", "C"},
		{"{TIME}", "14:05:07"},
	}

	for _, tt := range tests {
		if got := expand(t, tt.token, 1, ModeFull); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestMonthChar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month int
		want  string
	}{
		{1, "A"}, {2, "B"}, {3, "C"}, {12, "L"},
		{0, "A"}, {13, "A"}, {-4, "A"}, // invalid months default to A
	}
	for _, tt := range tests {
		if got := MonthChar(tt.month); got != tt.want {
			t.Errorf("MonthChar(%d) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestExpandIdempotentOnTokenFreeInput(t *testing.T) {
	t.Parallel()

	markup := "^XA^FO50,50^FDplain label, no substitutions^FS^XZ"
	if got := expand(t, markup, 42, ModeFull); got != markup {
		t.Errorf("token-free markup changed: %q", got)
	}
}

func TestExpandLeavesUnknownBracesVerbatim(t *testing.T) {
	t.Parallel()

	markup := "a {CUSTOM_TEXT} b {SERIAL} c {NOPE}"
	got := expand(t, markup, 5, ModeFull)
	want := "a {CUSTOM_TEXT} b 5 c {NOPE}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandDateOnlyKeepsSerialTokens(t *testing.T) {
	t.Parallel()

	markup := "serial={SERIAL3} date={DATE} time={TIME}"
	got := expand(t, markup, 9, ModeDateOnly)
	want := "serial={SERIAL3} date=09/03/2025 time=14:05:07"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandPreviewMatchesFull(t *testing.T) {
	t.Parallel()

	markup := "^FD{SERIAL2} {DATE}^FS"
	if expand(t, markup, 1, ModePreview) != expand(t, markup, 1, ModeFull) {
		t.Error("preview mode must follow the same substitution rules as full mode")
	}
}

func TestExpandFullDocument(t *testing.T) {
	t.Parallel()

	markup := "^XA\n^FD#{SERIAL} of {DATE}^FS\n^FD{SERIAL5}^FS\n^XZ"
	got := expand(t, markup, 31, ModeFull)
	if !strings.Contains(got, "#31 of 09/03/2025") || !strings.Contains(got, "000031") {
		t.Errorf("unexpected expansion: %q", got)
	}
	if strings.Contains(got, "{SERIAL") {
		t.Errorf("serial tokens left behind: %q", got)
	}
}

func TestExpandEmptyInput(t *testing.T) {
	t.Parallel()

	if got := expand(t, "", 1, ModeFull); got != "" {
		t.Errorf("empty markup should stay empty, got %q", got)
	}
}

func TestContainsTokens(t *testing.T) {
	t.Parallel()

	if !ContainsTokens("x {TIME} y") {
		t.Error("expected token to be found")
	}
	if ContainsTokens("x {time} y") {
		t.Error("tokens are case-sensitive")
	}
	if ContainsTokens("") {
		t.Error("empty markup has no tokens")
	}
}
