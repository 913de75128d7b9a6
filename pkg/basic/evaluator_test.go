package basic

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// testConsole captures everything the interpreter prints and feeds
// scripted input lines back to INPUT.
type testConsole struct {
	out    strings.Builder
	inputs []string
}

func (c *testConsole) Write(text string)     { c.out.WriteString(text) }
func (c *testConsole) WriteLine(text string) { c.out.WriteString(text); c.out.WriteByte('\n') }
func (c *testConsole) Clear()                {}
func (c *testConsole) ReadKey() string       { return "" }

func (c *testConsole) ReadLine() (string, bool) {
	if len(c.inputs) == 0 {
		return "", false
	}
	line := c.inputs[0]
	c.inputs = c.inputs[1:]
	return line, true
}

func runProgram(t *testing.T, source string) (*Interp, *testConsole, error) {
	t.Helper()
	con := &testConsole{}
	it := NewInterp(con, nil)
	err := it.Execute(source)
	return it, con, err
}

func mustRun(t *testing.T, source string) string {
	t.Helper()
	_, con, err := runProgram(t, source)
	if err != nil {
		t.Fatalf("run failed: %v\noutput so far:\n%s", err, con.out.String())
	}
	return con.out.String()
}

func TestPrintHello(t *testing.T) {
	got := mustRun(t, `10 PRINT "HELLO"`)
	if got != "HELLO\n" {
		t.Errorf("got %q, want %q", got, "HELLO\n")
	}
}

func TestForLoopSum(t *testing.T) {
	src := "10 S=0\n20 FOR I=1 TO 10\n30 S=S+I\n40 NEXT I\n50 PRINT S"
	got := mustRun(t, src)
	if got != " 55 \n" {
		t.Errorf("got %q, want %q", got, " 55 \n")
	}
}

func TestGosubReturn(t *testing.T) {
	src := "10 GOSUB 100\n20 PRINT \"B\"\n30 END\n100 PRINT \"A\"\n110 RETURN"
	got := mustRun(t, src)
	if got != "A\nB\n" {
		t.Errorf("got %q, want %q", got, "A\nB\n")
	}
}

func TestDataRead(t *testing.T) {
	src := "10 DATA 1,2,3\n20 READ A,B,C\n30 PRINT A+B+C"
	got := mustRun(t, src)
	if got != " 6 \n" {
		t.Errorf("got %q, want %q", got, " 6 \n")
	}
}

func TestDataRestoreTargeted(t *testing.T) {
	src := "10 DATA 1\n20 DATA 2\n30 RESTORE 20\n40 READ A\n50 PRINT A"
	got := mustRun(t, src)
	if got != " 2 \n" {
		t.Errorf("got %q, want %q", got, " 2 \n")
	}
}

func TestReadPastEndIsFatal(t *testing.T) {
	src := "10 DATA 1\n20 READ A,B"
	_, _, err := runProgram(t, src)
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeOutOfData {
		t.Fatalf("want Out of DATA (code %d), got %v", ErrCodeOutOfData, err)
	}
}

func TestScreenPsetPoint(t *testing.T) {
	src := "10 SCREEN 9\n20 PSET (100,100),14\n30 PRINT POINT(100,100)"
	it, con, err := runProgram(t, src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := con.out.String(); got != " 14 \n" {
		t.Errorf("console got %q, want %q", got, " 14 \n")
	}
	b, g, r, _ := it.Graphics.Active().GetPixelRaw(100, 100)
	if b != 0x55 || g != 0xFF || r != 0xFF {
		t.Errorf("pixel at (100,100) = BGR %02X %02X %02X, want 55 FF FF", b, g, r)
	}
}

func TestBlockIf(t *testing.T) {
	tmpl := "10 X=%d\n20 IF X>0 THEN\n30 PRINT \"P\"\n40 ELSE\n50 PRINT \"N\"\n60 END IF"
	if got := mustRun(t, fmt.Sprintf(tmpl, 5)); got != "P\n" {
		t.Errorf("positive branch got %q, want %q", got, "P\n")
	}
	if got := mustRun(t, fmt.Sprintf(tmpl, -1)); got != "N\n" {
		t.Errorf("negative branch got %q, want %q", got, "N\n")
	}
}

func TestBlockIfElseIf(t *testing.T) {
	src := "10 X=2\n" +
		"20 IF X=1 THEN\n" +
		"30 PRINT \"one\"\n" +
		"40 ELSEIF X=2 THEN\n" +
		"50 PRINT \"two\"\n" +
		"60 ELSE\n" +
		"70 PRINT \"other\"\n" +
		"80 END IF"
	if got := mustRun(t, src); got != "two\n" {
		t.Errorf("got %q, want %q", got, "two\n")
	}
}

func TestOnErrorResumeNext(t *testing.T) {
	src := "10 ON ERROR GOTO 100\n" +
		"20 A=1/0\n" +
		"30 PRINT \"OK\"\n" +
		"40 END\n" +
		"100 PRINT \"E\";ERR\n" +
		"110 RESUME NEXT"
	got := mustRun(t, src)
	if got != "E 11 \nOK\n" {
		t.Errorf("got %q, want %q", got, "E 11 \nOK\n")
	}
}

func TestUndefinedLineNumber(t *testing.T) {
	_, _, err := runProgram(t, "10 GOTO 99")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeUndefinedLine {
		t.Fatalf("want code %d, got %v", ErrCodeUndefinedLine, err)
	}
}

func TestSubscriptOutOfRange(t *testing.T) {
	_, _, err := runProgram(t, "10 DIM A(5)\n20 A(6)=1")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeSubscriptOutOfRange {
		t.Fatalf("want code %d, got %v", ErrCodeSubscriptOutOfRange, err)
	}
}

func TestReturnWithoutGosub(t *testing.T) {
	_, _, err := runProgram(t, "10 RETURN")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeReturnWithoutGosub {
		t.Fatalf("want code %d, got %v", ErrCodeReturnWithoutGosub, err)
	}
}

func TestAutoCreatedArray(t *testing.T) {
	got := mustRun(t, "10 A(3)=7\n20 PRINT A(3)")
	if got != " 7 \n" {
		t.Errorf("got %q, want %q", got, " 7 \n")
	}
}

func TestDimGivesUpperPlusOneElements(t *testing.T) {
	it, _, err := runProgram(t, "10 DIM A(10)\n20 A(10)=1")
	if err != nil {
		t.Fatalf("A(10) on DIM A(10) must be in bounds: %v", err)
	}
	if n := len(it.arrays["A"].Elements); n != 11 {
		t.Errorf("DIM A(10) allocated %d cells, want 11", n)
	}
}

func TestRedimPreserve(t *testing.T) {
	src := "10 DIM A(3)\n20 A(2)=9\n30 REDIM PRESERVE A(5)\n40 PRINT A(2)"
	if got := mustRun(t, src); got != " 9 \n" {
		t.Errorf("got %q, want %q", got, " 9 \n")
	}
}

func TestWhileWend(t *testing.T) {
	src := "10 I=0\n20 WHILE I<3\n30 I=I+1\n40 WEND\n50 PRINT I"
	if got := mustRun(t, src); got != " 3 \n" {
		t.Errorf("got %q, want %q", got, " 3 \n")
	}
}

func TestDoLoopUntil(t *testing.T) {
	src := "10 I=0\n20 DO\n30 I=I+1\n40 LOOP UNTIL I=3\n50 PRINT I"
	if got := mustRun(t, src); got != " 3 \n" {
		t.Errorf("got %q, want %q", got, " 3 \n")
	}
}

func TestDoWhileSkipsBodyWhenFalse(t *testing.T) {
	src := "10 DO WHILE 0\n20 PRINT \"X\"\n30 LOOP\n40 PRINT \"D\""
	if got := mustRun(t, src); got != "D\n" {
		t.Errorf("got %q, want %q", got, "D\n")
	}
}

func TestSelectCase(t *testing.T) {
	tmpl := "10 A=%d\n" +
		"20 SELECT CASE A\n" +
		"30 CASE 1\n" +
		"40 PRINT \"one\"\n" +
		"50 CASE 2 TO 4\n" +
		"60 PRINT \"few\"\n" +
		"70 CASE IS >= 10\n" +
		"80 PRINT \"many\"\n" +
		"90 CASE ELSE\n" +
		"100 PRINT \"other\"\n" +
		"110 END SELECT"
	for _, tc := range []struct {
		a    int
		want string
	}{
		{1, "one\n"},
		{3, "few\n"},
		{12, "many\n"},
		{7, "other\n"},
	} {
		if got := mustRun(t, fmt.Sprintf(tmpl, tc.a)); got != tc.want {
			t.Errorf("A=%d: got %q, want %q", tc.a, got, tc.want)
		}
	}
}

func TestInlineForLoop(t *testing.T) {
	src := "10 S=0: FOR I=1 TO 4: S=S+I: NEXT I\n20 PRINT S"
	if got := mustRun(t, src); got != " 10 \n" {
		t.Errorf("got %q, want %q", got, " 10 \n")
	}
}

func TestDegenerateForRunsBodyOnce(t *testing.T) {
	src := "10 FOR I=5 TO 1\n20 PRINT \"X\"\n30 NEXT I\n40 PRINT \"D\""
	if got := mustRun(t, src); got != "X\nD\n" {
		t.Errorf("got %q, want %q", got, "X\nD\n")
	}
}

func TestGotoLabel(t *testing.T) {
	src := "10 GOTO DONE\n20 PRINT \"SKIP\"\n30 DONE:\n40 PRINT \"OK\""
	if got := mustRun(t, src); got != "OK\n" {
		t.Errorf("got %q, want %q", got, "OK\n")
	}
}

func TestCallSubNoParens(t *testing.T) {
	src := "10 GREET \"HI\"\n20 END\n30 SUB GREET(M$)\n40 PRINT M$\n50 END SUB"
	if got := mustRun(t, src); got != "HI\n" {
		t.Errorf("got %q, want %q", got, "HI\n")
	}
}

func TestFunctionReturnsNamedVariable(t *testing.T) {
	src := "10 PRINT ADDUP(2,3)\n" +
		"20 END\n" +
		"30 FUNCTION ADDUP(A,B)\n" +
		"40 ADDUP = A + B\n" +
		"50 END FUNCTION"
	if got := mustRun(t, src); got != " 5 \n" {
		t.Errorf("got %q, want %q", got, " 5 \n")
	}
}

func TestUserFunctionShadowsBuiltin(t *testing.T) {
	// built-in names are plain identifiers, not reserved words, so a
	// user FUNCTION with the same name must win
	src := "10 PRINT LEN(5)\n" +
		"20 END\n" +
		"30 FUNCTION LEN(X)\n" +
		"40 LEN = X*2\n" +
		"50 END FUNCTION"
	if got := mustRun(t, src); got != " 10 \n" {
		t.Errorf("got %q, want %q", got, " 10 \n")
	}
}

func TestDefFnShadowsBuiltin(t *testing.T) {
	src := "10 DEF FN ABS(X) = X+1\n20 PRINT FN ABS(3); ABS(3)"
	if got := mustRun(t, src); got != " 4  4 \n" {
		t.Errorf("got %q, want %q", got, " 4  4 \n")
	}
}

func TestGosubDepthCap(t *testing.T) {
	_, _, err := runProgram(t, "10 GOSUB 10")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeOutOfMemory {
		t.Fatalf("runaway GOSUB recursion: want code %d, got %v", ErrCodeOutOfMemory, err)
	}
}

func TestForDepthCap(t *testing.T) {
	// re-entering FOR via GOTO leaks a frame per pass; the cap must fault
	// instead of growing without bound
	_, _, err := runProgram(t, "10 FOR I=1 TO 2\n20 GOTO 10")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeOutOfMemory {
		t.Fatalf("runaway FOR nesting: want code %d, got %v", ErrCodeOutOfMemory, err)
	}
}

func TestDefFn(t *testing.T) {
	src := "10 DEF FN DOUBLE(X) = X*2\n20 PRINT FN DOUBLE(21)"
	if got := mustRun(t, src); got != " 42 \n" {
		t.Errorf("got %q, want %q", got, " 42 \n")
	}
}

func TestUserType(t *testing.T) {
	src := "10 TYPE POINT2\n" +
		"20 X AS INTEGER\n" +
		"30 Y AS INTEGER\n" +
		"40 END TYPE\n" +
		"50 DIM P AS POINT2\n" +
		"60 P.X = 3\n" +
		"70 P.Y = 4\n" +
		"80 PRINT P.X + P.Y"
	if got := mustRun(t, src); got != " 7 \n" {
		t.Errorf("got %q, want %q", got, " 7 \n")
	}
}

func TestPrintZones(t *testing.T) {
	got := mustRun(t, `10 PRINT "A","B"`)
	want := "A" + strings.Repeat(" ", 13) + "B\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintTrailingSemicolonSuppressesNewline(t *testing.T) {
	got := mustRun(t, "10 PRINT \"A\";\n20 PRINT \"B\"")
	if got != "AB\n" {
		t.Errorf("got %q, want %q", got, "AB\n")
	}
}

func TestInputAssignsCommaSeparatedValues(t *testing.T) {
	con := &testConsole{inputs: []string{"3,4"}}
	it := NewInterp(con, nil)
	if err := it.Execute("10 INPUT A,B\n20 PRINT A+B"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := con.out.String(); got != "?  7 \n" {
		t.Errorf("got %q, want %q", got, "?  7 \n")
	}
}

func TestSwap(t *testing.T) {
	src := "10 A=1\n20 B=2\n30 SWAP A,B\n40 PRINT A;B"
	if got := mustRun(t, src); got != " 2  1 \n" {
		t.Errorf("got %q, want %q", got, " 2  1 \n")
	}
}

func TestConstIsReadOnly(t *testing.T) {
	_, _, err := runProgram(t, "10 CONST PI = 3.14\n20 PI = 4")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeIllegalFunctionCall {
		t.Fatalf("assigning to CONST: want code %d, got %v", ErrCodeIllegalFunctionCall, err)
	}
}

func TestValStrRoundTrip(t *testing.T) {
	for _, src := range []string{
		"10 PRINT VAL(STR$(3.25))",
		"10 PRINT VAL(STR$(-17))",
		"10 PRINT VAL(STR$(0))",
	} {
		con := &testConsole{}
		it := NewInterp(con, nil)
		if err := it.Execute(src); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
	}
	if got := mustRun(t, "10 PRINT VAL(STR$(3.25))"); got != " 3.25 \n" {
		t.Errorf("got %q, want %q", got, " 3.25 \n")
	}
}

func TestChrAscRoundTrip(t *testing.T) {
	got := mustRun(t, `10 PRINT CHR$(ASC("Q"))`)
	if got != "Q\n" {
		t.Errorf("got %q, want %q", got, "Q\n")
	}
}

func TestRandomizeDeterminism(t *testing.T) {
	src := "10 RANDOMIZE 42\n20 FOR I=1 TO 5\n30 PRINT RND\n40 NEXT I"
	first := mustRun(t, src)
	second := mustRun(t, src)
	if first != second {
		t.Errorf("RANDOMIZE 42 not deterministic:\n%s\nvs\n%s", first, second)
	}
}

func TestStacksEmptyOnCleanTermination(t *testing.T) {
	src := "10 GOSUB 100\n20 FOR I=1 TO 3\n30 NEXT I\n40 END\n100 RETURN"
	it, _, err := runProgram(t, src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(it.gosubReturn) != 0 || len(it.forLoops) != 0 || len(it.subReturn) != 0 || len(it.selectStack) != 0 {
		t.Errorf("stacks not empty: gosub=%d for=%d sub=%d select=%d",
			len(it.gosubReturn), len(it.forLoops), len(it.subReturn), len(it.selectStack))
	}
}

func TestOnGotoSelector(t *testing.T) {
	src := "10 N=2\n20 ON N GOTO 100,200,300\n100 PRINT \"a\"\n110 END\n200 PRINT \"b\"\n210 END\n300 PRINT \"c\""
	if got := mustRun(t, src); got != "b\n" {
		t.Errorf("got %q, want %q", got, "b\n")
	}
}

func TestSequentialFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	src := fmt.Sprintf("10 OPEN %q FOR OUTPUT AS #1\n", path) +
		"20 WRITE #1, \"AB\", 12\n" +
		"30 CLOSE #1\n" +
		fmt.Sprintf("40 OPEN %q FOR INPUT AS #1\n", path) +
		"50 INPUT #1, A$, B\n" +
		"60 CLOSE #1\n" +
		"70 PRINT A$; B"
	if got := mustRun(t, src); got != "AB 12 \n" {
		t.Errorf("got %q, want %q", got, "AB 12 \n")
	}
}

func TestOpenCollisionIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	src := fmt.Sprintf("10 OPEN %q FOR OUTPUT AS #1\n20 OPEN %q FOR OUTPUT AS #1", path, path)
	_, _, err := runProgram(t, src)
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeFileAlreadyOpen {
		t.Fatalf("want code %d, got %v", ErrCodeFileAlreadyOpen, err)
	}
}

func TestRandomAccessRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.dat")
	src := fmt.Sprintf("10 OPEN %q FOR RANDOM AS #1 LEN = 8\n", path) +
		"20 FIELD #1, 8 AS R$\n" +
		"30 LSET R$ = \"AA\"\n" +
		"40 PUT #1, 1\n" +
		"50 LSET R$ = \"BB\"\n" +
		"60 PUT #1, 2\n" +
		"70 GET #1, 1\n" +
		"80 PRINT R$\n" +
		"90 CLOSE #1"
	got := mustRun(t, src)
	if got != "AA      \n" {
		t.Errorf("got %q, want %q", got, "AA      \n")
	}
}

func TestExecuteChunkCooperative(t *testing.T) {
	con := &testConsole{}
	it := NewInterp(con, nil)
	if err := it.Load("10 S=0\n20 FOR I=1 TO 100\n30 S=S+1\n40 NEXT I\n50 PRINT S"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := it.InitializeExecution(); err != nil {
		t.Fatalf("init: %v", err)
	}
	chunks := 0
	for {
		more, err := it.ExecuteChunk(10)
		if err != nil {
			t.Fatalf("chunk: %v", err)
		}
		chunks++
		if !more {
			break
		}
		if chunks > 1000 {
			t.Fatal("program did not terminate")
		}
	}
	if chunks < 2 {
		t.Errorf("expected multiple chunks, got %d", chunks)
	}
	if got := con.out.String(); got != " 100 \n" {
		t.Errorf("got %q, want %q", got, " 100 \n")
	}
}

func TestAutoNumberedSource(t *testing.T) {
	got := mustRun(t, "PRINT \"A\"\nPRINT \"B\"")
	if got != "A\nB\n" {
		t.Errorf("got %q, want %q", got, "A\nB\n")
	}
}

func TestStringBuiltins(t *testing.T) {
	for _, tc := range []struct{ src, want string }{
		{`10 PRINT LEFT$("HELLO",2)`, "HE\n"},
		{`10 PRINT RIGHT$("HELLO",3)`, "LLO\n"},
		{`10 PRINT MID$("HELLO",2,3)`, "ELL\n"},
		{`10 PRINT UCASE$("abc")`, "ABC\n"},
		{`10 PRINT LCASE$("AbC")`, "abc\n"},
		{`10 PRINT LEN("HELLO")`, " 5 \n"},
		{`10 PRINT INSTR("HELLO","LL")`, " 3 \n"},
		{`10 PRINT STRING$(3,42)`, "***\n"},
	} {
		if got := mustRun(t, tc.src); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	for _, tc := range []struct{ src, want string }{
		{"10 PRINT 2+3*4", " 14 \n"},
		{"10 PRINT 2^3^2", " 512 \n"}, // right-associative power
		{"10 PRINT 7 MOD 3", " 1 \n"},
		{"10 PRINT 7\\2", " 3 \n"},
		{"10 PRINT -2^2", " 4 \n"}, // unary minus binds tighter than power
		{"10 PRINT 1=1", "-1 \n"},
		{"10 PRINT 1>2", " 0 \n"},
		{"10 PRINT NOT 0", "-1 \n"},
		{"10 PRINT 6 AND 3", " 2 \n"},
		{"10 PRINT 6 OR 3", " 7 \n"},
		{"10 PRINT 6 XOR 3", " 5 \n"},
		{`10 PRINT "A"+"B"`, "AB\n"},
		{`10 PRINT "N="+STR$(5)`, "N= 5\n"}, // STR$ keeps the sign space
	} {
		if got := mustRun(t, tc.src); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	_, _, err := runProgram(t, "10 A=1/0")
	be, ok := err.(*BASICError)
	if !ok || be.Code != ErrCodeDivisionByZero {
		t.Fatalf("want code %d, got %v", ErrCodeDivisionByZero, err)
	}
}

func TestIntegerSigilTruncatesTowardZero(t *testing.T) {
	if got := mustRun(t, "10 A% = -2.7\n20 PRINT A%"); got != "-2 \n" {
		t.Errorf("got %q, want %q", got, "-2 \n")
	}
}
