package basic

import "testing"

func TestFormatUsingNumeric(t *testing.T) {
	for _, tc := range []struct {
		format string
		arg    float64
		want   string
	}{
		{"##", 5, " 5"},
		{"###", 42, " 42"},
		{"##.##", 3.456, " 3.46"},
		{"#.#", 0.26, "0.3"},
		{"+##", 7, " +7"},
		{"+##", -7, " -7"},
		{"**###", 42, "***42"},
		{"#,###,###", 1234567, "1,234,567"},
		{"X=#", 5, "X=5"},
	} {
		got := formatUsing(tc.format, []Value{NumberValue(tc.arg)})
		if got != tc.want {
			t.Errorf("formatUsing(%q, %v) = %q, want %q", tc.format, tc.arg, got, tc.want)
		}
	}
}

func TestFormatUsingDollar(t *testing.T) {
	got := formatUsing("$##.##", []Value{NumberValue(1.5)})
	if got != " $1.50" {
		t.Errorf("got %q, want %q", got, " $1.50")
	}
}

func TestFormatUsingOverflowMarker(t *testing.T) {
	got := formatUsing("##", []Value{NumberValue(12345)})
	if got != "%12345" {
		t.Errorf("got %q, want %q", got, "%12345")
	}
}

func TestFormatUsingStringFields(t *testing.T) {
	if got := formatUsing("!", []Value{TextValue("ABC")}); got != "A" {
		t.Errorf("! field = %q, want A", got)
	}
	if got := formatUsing("&", []Value{TextValue("WHOLE")}); got != "WHOLE" {
		t.Errorf("& field = %q, want WHOLE", got)
	}
	if got := formatUsing(`\  \`, []Value{TextValue("ABCDEF")}); got != "ABCD" {
		t.Errorf(`\  \ field = %q, want ABCD`, got)
	}
	if got := formatUsing(`\  \`, []Value{TextValue("XY")}); got != "XY  " {
		t.Errorf(`\  \ short value = %q, want padded XY`, got)
	}
}

func TestFormatUsingMultipleArgsRecycleFormat(t *testing.T) {
	got := formatUsing("#;", []Value{NumberValue(1), NumberValue(2), NumberValue(3)})
	if got != "1;2;3;" {
		t.Errorf("got %q, want %q", got, "1;2;3;")
	}
}

func TestFormatUsingLiteralPassThrough(t *testing.T) {
	got := formatUsing("TOTAL: ###", []Value{NumberValue(99)})
	if got != "TOTAL:  99" {
		t.Errorf("got %q, want %q", got, "TOTAL:  99")
	}
}

func TestPrintUsingStatement(t *testing.T) {
	got := mustRun(t, `10 PRINT USING "##.##"; 3.456`)
	if got != " 3.46\n" {
		t.Errorf("got %q, want %q", got, " 3.46\n")
	}
}
