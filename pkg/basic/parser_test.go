package basic

import "testing"

func parseOne(t *testing.T, src string) Stmt {
	t.Helper()
	prog, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(prog.Lines) != 1 || len(prog.Lines[0].Stmts) == 0 {
		t.Fatalf("parse %q: unexpected shape %+v", src, prog)
	}
	return prog.Lines[0].Stmts[0]
}

func TestParseLineInputVsGraphicsLine(t *testing.T) {
	if _, ok := parseOne(t, "10 LINE INPUT A$").(*LineInputStmt); !ok {
		t.Error("LINE INPUT must parse as LineInputStmt")
	}
	st, ok := parseOne(t, "10 LINE (0,0)-(10,10),2,BF").(*LineStmt)
	if !ok {
		t.Fatal("graphics LINE must parse as LineStmt")
	}
	if !st.HasP1 || !st.Box || !st.Filled {
		t.Errorf("LINE ...,BF: HasP1=%v Box=%v Filled=%v, want all true", st.HasP1, st.Box, st.Filled)
	}
	st2 := parseOne(t, "10 LINE -(10,10)").(*LineStmt)
	if st2.HasP1 {
		t.Error("LINE -(x,y) must leave HasP1 false (continues from last point)")
	}
}

func TestParseGetPutAmbiguity(t *testing.T) {
	if _, ok := parseOne(t, "10 GET (0,0)-(8,8),SPR").(*GetGraphicsStmt); !ok {
		t.Error("GET ( must parse as graphics capture")
	}
	if _, ok := parseOne(t, "10 GET #1, 2").(*GetRecordStmt); !ok {
		t.Error("GET #n must parse as random-file record read")
	}
	put, ok := parseOne(t, "10 PUT (5,5),SPR,XOR").(*PutGraphicsStmt)
	if !ok {
		t.Fatal("PUT ( must parse as graphics blit")
	}
	if put.Action != "XOR" {
		t.Errorf("PUT action = %q, want XOR", put.Action)
	}
	if _, ok := parseOne(t, "10 PUT #1").(*PutRecordStmt); !ok {
		t.Error("PUT #n must parse as random-file record write")
	}
}

func TestParseDefAmbiguity(t *testing.T) {
	fn, ok := parseOne(t, "10 DEF FN SQ(X) = X*X").(*DefFnStmt)
	if !ok {
		t.Fatal("DEF FN must parse as DefFnStmt")
	}
	if fn.Name != "SQ" || len(fn.Params) != 1 {
		t.Errorf("DEF FN parse = %+v", fn)
	}
}

func TestParseEndAmbiguity(t *testing.T) {
	if _, ok := parseOne(t, "10 END").(*EndStmt); !ok {
		t.Error("bare END must parse as EndStmt")
	}
	e, ok := parseOne(t, "10 END IF").(*EndSubFunctionStmt)
	if !ok || e.Kind != "IF" {
		t.Errorf("END IF parse = %+v", e)
	}
	if _, ok := parseOne(t, "10 END SELECT").(*EndSelectStmt); !ok {
		t.Error("END SELECT must parse as EndSelectStmt")
	}
}

func TestParseBlockIfMarker(t *testing.T) {
	if _, ok := parseOne(t, "10 IF A>0 THEN").(*BlockIfStmt); !ok {
		t.Error("IF ... THEN at end of line must be the block form")
	}
	inline, ok := parseOne(t, `10 IF A>0 THEN PRINT "Y" ELSE PRINT "N"`).(*IfStmt)
	if !ok {
		t.Fatal("inline IF must parse as IfStmt")
	}
	if len(inline.Then) != 1 || len(inline.Else) != 1 {
		t.Errorf("inline IF branches = %d/%d, want 1/1", len(inline.Then), len(inline.Else))
	}
}

func TestParseBareIdentifierForms(t *testing.T) {
	if _, ok := parseOne(t, "10 MYLABEL:").(*LabelStmt); !ok {
		t.Error("IDENT: must parse as a label")
	}
	let, ok := parseOne(t, "10 A(3) = 5").(*LetStmt)
	if !ok || len(let.Indices) != 1 {
		t.Errorf("A(3)=5 parse = %+v, want indexed LetStmt", let)
	}
	call, ok := parseOne(t, "10 DOIT 1, 2").(*CallSubStmt)
	if !ok || len(call.Args) != 2 {
		t.Errorf("bare CALL parse = %+v, want CallSubStmt with 2 args", call)
	}
}

func TestParseCompoundStatements(t *testing.T) {
	c, ok := parseOne(t, "10 A=1: B=2: C=3").(*CompoundStmt)
	if !ok {
		t.Fatal("colon-joined statements must parse as CompoundStmt")
	}
	if len(c.List) != 3 {
		t.Errorf("compound has %d statements, want 3", len(c.List))
	}
}

func TestParseLinesSortedAndIndexed(t *testing.T) {
	prog, err := ParseProgram("30 PRINT 3\n10 PRINT 1\n20 PRINT 2")
	if err != nil {
		t.Fatal(err)
	}
	nums := []int{prog.Lines[0].Number, prog.Lines[1].Number, prog.Lines[2].Number}
	if nums[0] != 10 || nums[1] != 20 || nums[2] != 30 {
		t.Errorf("lines not sorted: %v", nums)
	}
	if prog.Index[20] != 1 {
		t.Errorf("index[20] = %d, want 1", prog.Index[20])
	}
}

func TestParseAutoNumbering(t *testing.T) {
	prog, err := ParseProgram("PRINT 1\nPRINT 2")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Lines) != 2 || prog.Lines[0].Number != 10 || prog.Lines[1].Number != 20 {
		t.Errorf("auto numbering produced %+v, want lines 10 and 20", prog.Lines)
	}
}

func TestParseMissingLineNumberFails(t *testing.T) {
	// mixed sources (first line numbered, later one not) are a syntax error
	if _, err := ParseProgram("10 PRINT 1\nPRINT 2"); err == nil {
		t.Error("expected a parse error for a missing line number")
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	_, err := ParseProgram("10 PRINT 1\n20 FOR = 5")
	be, ok := err.(*BASICError)
	if !ok {
		t.Fatalf("want *BASICError, got %T", err)
	}
	if be.LineNumber == 0 {
		t.Error("parse error should carry a source line")
	}
}

func TestParseOnForms(t *testing.T) {
	oe, ok := parseOne(t, "10 ON ERROR GOTO 100").(*OnErrorStmt)
	if !ok || oe.Line != 100 {
		t.Errorf("ON ERROR GOTO parse = %+v", oe)
	}
	og, ok := parseOne(t, "10 ON X GOSUB 100, 200").(*OnGotoStmt)
	if !ok || !og.IsGosub || len(og.Targets) != 2 {
		t.Errorf("ON..GOSUB parse = %+v", og)
	}
}

func TestParseDataKeepsRawText(t *testing.T) {
	d, ok := parseOne(t, `10 DATA 1, "two", 3.5`).(*DataStmt)
	if !ok {
		t.Fatal("DATA must parse as DataStmt")
	}
	vals := splitDataLine(d.Raw)
	if len(vals) != 3 {
		t.Fatalf("DATA split into %d values, want 3: %+v", len(vals), vals)
	}
	if !vals[0].IsNumeric || vals[0].Num != 1 {
		t.Errorf("first DATA value = %+v, want number 1", vals[0])
	}
	if vals[1].IsNumeric || vals[1].Str != "two" {
		t.Errorf("second DATA value = %+v, want text two", vals[1])
	}
}
