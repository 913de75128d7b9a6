package basic

import (
	"math"
	"strings"
)

// ctrlSignal tells the stepping loop (driver.go) what happened to the
// program counter while executing one statement: ctrlNone means "advance
// to the next line as usual", ctrlJump means "the statement already set
// it.pc to where execution continues".
type ctrlSignal int

const (
	ctrlNone ctrlSignal = iota
	ctrlJump
)

// currentLine reports the source line number of the statement presently
// executing, or 0 outside any run (used to stamp BASICError.LineNumber).
func (it *Interp) currentLine() int {
	if it.program == nil || it.pc < 0 || it.pc >= len(it.program.Lines) {
		return 0
	}
	return it.program.Lines[it.pc].Number
}

func lineNumberAt(prog *Program, pc int) int {
	if prog == nil || pc < 0 || pc >= len(prog.Lines) {
		return 0
	}
	return prog.Lines[pc].Number
}

// soleStmt returns the first (and for boundary-marker lines, only)
// statement on a program line, or nil for a blank line.
func soleStmt(prog *Program, pc int) Stmt {
	if pc < 0 || pc >= len(prog.Lines) {
		return nil
	}
	stmts := prog.Lines[pc].Stmts
	if len(stmts) == 0 {
		return nil
	}
	if c, ok := stmts[0].(*CompoundStmt); ok {
		if len(c.List) == 0 {
			return nil
		}
		return c.List[0]
	}
	return stmts[0]
}

// execStmt executes one statement and reports how the caller should move
// the program counter.
func (it *Interp) execStmt(s Stmt) (ctrlSignal, error) {
	switch st := s.(type) {
	case *CompoundStmt:
		return it.execCompound(st.List)

	case *LetStmt:
		return ctrlNone, it.execLet(st)
	case *DimStmt:
		return ctrlNone, it.execDim(st)
	case *RedimStmt:
		return ctrlNone, it.execRedim(st)
	case *DataStmt:
		return ctrlNone, nil // fully consumed during registerProgram
	case *ReadStmt:
		return ctrlNone, it.execRead(st)
	case *RestoreStmt:
		return ctrlNone, it.execRestore(st)
	case *SwapStmt:
		return ctrlNone, it.execSwap(st)
	case *RandomizeStmt:
		return ctrlNone, it.execRandomize(st)
	case *ConstStmt:
		return ctrlNone, it.execConst(st)
	case *TypeStmt, *TypeFieldDecl:
		return ctrlNone, nil // collected into userTypes during registerProgram
	case *DefTypeStmt:
		it.setDefType(st.FromLetter, st.ToLetter, st.BasicType)
		return ctrlNone, nil
	case *DefFnStmt:
		it.userFunctions[normName(st.Name)] = st
		return ctrlNone, nil
	case *DeclareStmt:
		return ctrlNone, nil // forward declarations carry no runtime effect

	case *LabelStmt:
		return ctrlNone, nil

	case *GotoStmt, *GotoLabelStmt, *GosubStmt, *GosubLabelStmt, *ReturnStmt,
		*IfStmt, *BlockIfStmt, *ElseIfStmt, *ElseStmt,
		*ForStmt, *NextStmt, *WhileStmt, *WendStmt, *DoStmt, *LoopStmt,
		*SelectCaseStmt, *CaseClause, *EndSelectStmt, *ExitStmt,
		*OnGotoStmt, *OnErrorStmt, *ResumeStmt,
		*SubStmt, *FunctionStmt, *EndSubFunctionStmt, *CallSubStmt:
		return it.execControlFlow(s)

	case *EndStmt:
		// END inside a SUB/FUNCTION body returns to the caller; at top
		// level it stops the program.
		if len(it.subReturn) > 0 {
			return it.execExit(&ExitStmt{Scope: it.subReturn[len(it.subReturn)-1].Kind})
		}
		it.ended = true
		it.running = false
		return ctrlNone, nil
	case *StopStmt:
		it.ended = true
		it.running = false
		return ctrlNone, nil
	case *SleepStmt:
		return ctrlNone, it.execSleep(st)

	case *PrintStmt:
		return ctrlNone, it.execPrint(st)
	case *InputStmt:
		return ctrlNone, it.execInput(st)
	case *LineInputStmt:
		return ctrlNone, it.execLineInput(st)
	case *OpenStmt:
		return ctrlNone, it.execOpen(st)
	case *CloseStmt:
		return ctrlNone, it.execClose(st)
	case *WriteStmt:
		return ctrlNone, it.execWrite(st)
	case *FieldStmt:
		return ctrlNone, it.execField(st)
	case *GetRecordStmt:
		return ctrlNone, it.execGetRecord(st)
	case *PutRecordStmt:
		return ctrlNone, it.execPutRecord(st)
	case *LsetStmt:
		return ctrlNone, it.execLset(st)
	case *RsetStmt:
		return ctrlNone, it.execRset(st)
	case *KillStmt:
		return ctrlNone, it.execKill(st)
	case *NameStmt:
		return ctrlNone, it.execName(st)
	case *FilesStmt:
		return ctrlNone, it.execFiles(st)

	case *ClsStmt:
		it.Graphics.Active().Clear(0)
		return ctrlNone, nil
	case *ScreenStmt:
		return ctrlNone, it.execScreen(st)
	case *ColorStmt:
		return ctrlNone, it.execColor(st)
	case *LocateStmt:
		return ctrlNone, it.execLocate(st)
	case *PsetStmt:
		return ctrlNone, it.execPset(st)
	case *LineStmt:
		return ctrlNone, it.execLine(st)
	case *CircleStmt:
		return ctrlNone, it.execCircle(st)
	case *PaintStmt:
		return ctrlNone, it.execPaint(st)
	case *DrawStmt:
		return ctrlNone, it.execDraw(st)
	case *PaletteStmt:
		return ctrlNone, it.execPalette(st)
	case *GetGraphicsStmt:
		return ctrlNone, it.execGetGraphics(st)
	case *PutGraphicsStmt:
		return ctrlNone, it.execPutGraphics(st)
	case *BeepStmt:
		if it.console != nil {
			it.console.Write("\a")
		}
		return ctrlNone, nil
	case *SoundStmt:
		// no audio backend; the operands are evaluated for their side
		// effects only and are not range-checked
		_, err := it.evalExpr(st.Freq)
		if err == nil {
			_, err = it.evalExpr(st.Dur)
		}
		return ctrlNone, err
	case *PlayStmt:
		// partial PLAY: the macro string is parsed but notes only produce a
		// terminal bell, one per note
		v, err := it.evalExpr(st.Macro)
		if err != nil {
			return ctrlNone, err
		}
		if it.console != nil {
			for _, ch := range strings.ToUpper(valueToString(v)) {
				if ch >= 'A' && ch <= 'G' {
					it.console.Write("\a")
				}
			}
		}
		return ctrlNone, nil
	}
	return ctrlNone, nil
}

// evalExpr walks one expression tree to a Value.
func (it *Interp) evalExpr(e Expr) (Value, error) {
	switch ex := e.(type) {
	case *LiteralExpr:
		if ex.IsText {
			return TextValue(ex.Text), nil
		}
		return NumberValue(ex.Num), nil

	case *VariableExpr:
		return it.lookupVariable(ex.Name), nil

	case *GroupingExpr:
		return it.evalExpr(ex.Inner)

	case *ArrayOrCallExpr:
		return it.evalArrayOrCall(ex)

	case *FnCallExpr:
		fn, ok := it.userFunctions[normName(ex.Name)]
		if !ok {
			return Value{}, NewRuntimeError(ErrCodeUndefinedLine, "Undefined user function", it.currentLine())
		}
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			v, err := it.evalExpr(a)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return it.evalDefFn(fn, args)

	case *FieldAccessExpr:
		obj, err := it.evalExpr(ex.Obj)
		if err != nil {
			return Value{}, err
		}
		return it.fieldAccess(obj, ex.Field)

	case *UnaryExpr:
		v, err := it.evalExpr(ex.Right)
		if err != nil {
			return Value{}, err
		}
		n, err := toNumber(it, v)
		if err != nil {
			return Value{}, err
		}
		switch ex.Op {
		case "-":
			return NumberValue(-n), nil
		case "NOT":
			return NumberValue(logicalNot(n)), nil
		}
		return Value{}, NewRuntimeError(ErrCodeSyntax, "bad unary operator", it.currentLine())

	case *BinaryExpr:
		return it.evalBinary(ex)
	}
	return Value{}, NewRuntimeError(ErrCodeSyntax, "unknown expression", it.currentLine())
}

func (it *Interp) evalBinary(ex *BinaryExpr) (Value, error) {
	switch ex.Op {
	case "=", "<>", "<", "<=", ">", ">=":
		l, err := it.evalExpr(ex.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := it.evalExpr(ex.Right)
		if err != nil {
			return Value{}, err
		}
		return compareValues(it, ex.Op, l, r)
	}

	l, err := it.evalExpr(ex.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := it.evalExpr(ex.Right)
	if err != nil {
		return Value{}, err
	}

	if ex.Op == "+" && (!l.IsNumeric || !r.IsNumeric) {
		// text concatenation when either side is text, classic BASIC's '+'
		// overload.
		return TextValue(valueToString(l) + valueToString(r)), nil
	}

	ln, err := toNumber(it, l)
	if err != nil {
		return Value{}, err
	}
	rn, err := toNumber(it, r)
	if err != nil {
		return Value{}, err
	}

	switch ex.Op {
	case "+":
		return NumberValue(ln + rn), nil
	case "-":
		return NumberValue(ln - rn), nil
	case "*":
		return NumberValue(ln * rn), nil
	case "/":
		if rn == 0 {
			return Value{}, NewRuntimeError(ErrCodeDivisionByZero, "Division by zero", it.currentLine())
		}
		return NumberValue(ln / rn), nil
	case "\\":
		if rn == 0 {
			return Value{}, NewRuntimeError(ErrCodeDivisionByZero, "Division by zero", it.currentLine())
		}
		return NumberValue(float64(clampToInt64(truncateTowardZero(ln)) / clampToInt64(truncateTowardZero(rn)))), nil
	case "MOD":
		if rn == 0 {
			return Value{}, NewRuntimeError(ErrCodeDivisionByZero, "Division by zero", it.currentLine())
		}
		return NumberValue(math.Mod(roundHalfAwayFromZero(ln), roundHalfAwayFromZero(rn))), nil
	case "^":
		return NumberValue(math.Pow(ln, rn)), nil
	case "AND":
		return NumberValue(logicalAnd(ln, rn)), nil
	case "OR":
		return NumberValue(logicalOr(ln, rn)), nil
	case "XOR":
		return NumberValue(logicalXor(ln, rn)), nil
	case "EQV":
		return NumberValue(logicalEqv(ln, rn)), nil
	case "IMP":
		return NumberValue(logicalImp(ln, rn)), nil
	}
	return Value{}, NewRuntimeError(ErrCodeSyntax, "bad operator "+ex.Op, it.currentLine())
}

// evalArrayOrCall resolves the A(i) ambiguity: user FUNCTIONs and DEF FN
// bodies first (they shadow same-named built-ins, since built-in names
// are plain identifiers, not reserved words), then built-ins, then (only
// with an argument list, or as a bare variable when there is none) array
// storage.
func (it *Interp) evalArrayOrCall(ex *ArrayOrCallExpr) (Value, error) {
	argVals := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := it.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		argVals[i] = v
	}

	upper := normName(ex.Name)
	if len(ex.Args) == 0 && len(it.subReturn) > 0 && it.subReturn[len(it.subReturn)-1].Name == upper {
		// inside a FUNCTION body, the bare function name reads the
		// return variable rather than recursing
		return it.lookupVariable(ex.Name), nil
	}
	if loc, ok := it.functions[upper]; ok {
		return it.callSubroutine(upper, loc, argVals)
	}
	if fn, ok := it.userFunctions[upper]; ok {
		return it.evalDefFn(fn, argVals)
	}
	if v, ok, err := callBuiltin(it, upper, argVals); ok {
		return v, err
	}

	if len(ex.Args) == 0 {
		return it.lookupVariable(ex.Name), nil
	}

	indices := make([]int, len(argVals))
	for i, v := range argVals {
		n, err := toNumber(it, v)
		if err != nil {
			return Value{}, err
		}
		indices[i] = int(n)
	}
	return it.arrayGet(ex.Name, indices)
}

// evalDefFn evaluates a single-expression DEF FN body with its
// parameters locally shadowing any same-named global variable.
func (it *Interp) evalDefFn(fn *DefFnStmt, args []Value) (Value, error) {
	saved := make(map[string]Value, len(fn.Params))
	for i, p := range fn.Params {
		saved[p] = it.lookupVariable(p)
		if i < len(args) {
			it.setVariable(p, args[i])
		}
	}
	v, err := it.evalExpr(fn.Body)
	for p, old := range saved {
		it.variables[normName(p)] = old
	}
	return v, err
}
