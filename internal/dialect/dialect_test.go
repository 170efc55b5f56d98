package dialect

import "testing"

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   Dialect
	}{
		{"zpl full job", "^XA\n^FO50,50^FDHello^FS\n^XZ", ZPL},
		{"zpl field origin only", "^FO10,10^FDX^FS", ZPL},
		{"epl newline start", "N\r\nA50,50,0,4,1,1,N,\"Hi\"\r\n", EPL},
		{"epl text command", `A\50,50,0,4,1,1,N,"Hi"`, EPL},
		{"cpcl header", "! 0 200 200 210 1\nTEXT 4 0 30 40 Hello\nPRINT", CPCL},
		{"cpcl tone", "TONE 20\nPRINT", CPCL},
		{"tspl size and gap", "SIZE 100 mm,150 mm\nGAP 3 mm,0", TSPL},
		{"dpl nasc", "NASC 850\n1911A0801000025H", DPL},
		{"dpl text dmatrix", "TEXT something\nDMATRIX 200,200", DPL},
		{"plain text", "just an ordinary string", Unknown},
		{"empty", "", Unknown},
		{"whitespace only", "  \r\n\t ", Unknown},
		{"lowercase zpl", "^xa^fo10,10^xz", ZPL},
		{"leading whitespace epl", "   N\rA50,50", EPL},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Detect(tt.markup); got != tt.want {
				t.Errorf("Detect(%q) = %v, want %v", tt.markup, got, tt.want)
			}
		})
	}
}

// TSPL markup often carries TEXT commands as well; ZPL and EPL markers may
// appear inside field data. The rule order decides those collisions, so pin it.
func TestDetectPriorityOrder(t *testing.T) {
	t.Parallel()

	// ZPL wins over TSPL when both marker sets are present.
	mixed := "^XA\nSIZE 100 mm,150 mm\nGAP 3 mm,0\n^XZ"
	if got := Detect(mixed); got != ZPL {
		t.Errorf("zpl+tspl markers: got %v, want ZPL", got)
	}

	// EPL wins over DPL.
	mixed = "EPL\nTEXT x\nDMATRIX 1,1"
	if got := Detect(mixed); got != EPL {
		t.Errorf("epl+dpl markers: got %v, want EPL", got)
	}

	// TSPL wins over DPL.
	mixed = "SIZE 4,6\nGAP 0.1\nTEXT x\nDMATRIX 1,1"
	if got := Detect(mixed); got != TSPL {
		t.Errorf("tspl+dpl markers: got %v, want TSPL", got)
	}
}

func TestDialectString(t *testing.T) {
	t.Parallel()

	if ZPL.String() != "ZPL" {
		t.Errorf("ZPL.String() = %q", ZPL.String())
	}
	if Dialect(99).String() != "Unknown" {
		t.Errorf("out-of-range dialect should stringify as Unknown")
	}
}
