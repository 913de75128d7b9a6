package basic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// Public driver surface: Load/Run for the blocking shape,
// InitializeExecution/ExecuteChunk for cooperative event-loop hosts,
// RunAsync for single-threaded UI hosts that want a periodic yield.
// Every run gets a uuid stamped onto its log lines for correlation.

// Load parses source into the line table without starting execution.
func (it *Interp) Load(source string) error {
	prog, err := ParseProgram(source)
	if err != nil {
		return err
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.program = prog
	it.pc = 0
	it.ended = false
	it.running = false
	return nil
}

// InitializeExecution prepares runtime state for stepping: it scans the
// whole program once so DATA, labels, TYPEs, SUBs/FUNCTIONs, and DEF FN
// bodies all resolve forward references.
func (it *Interp) InitializeExecution() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.program == nil {
		return NewSyntaxError("no program loaded", 0)
	}
	it.RunID = uuid.NewString()
	it.pc = 0
	it.ended = false
	it.running = true
	it.dataPool = nil
	it.dataCursor = 0
	it.dataByLine = make(map[int]int)
	it.labels = make(map[string]int)
	it.subs = make(map[string]subLoc)
	it.functions = make(map[string]subLoc)
	it.userFunctions = make(map[string]*DefFnStmt)
	it.userTypes = make(map[string]*UserType)
	it.gosubReturn = nil
	it.forLoops = nil
	it.doLoops = nil
	it.whileLoops = nil
	it.selectStack = nil
	it.subReturn = nil
	it.onErrorTarget = 0
	it.inHandler = false
	it.lastErrCode = 0
	it.lastErrLine = 0
	it.printCol = 0
	// re-read the nesting caps so a configuration loaded after NewInterp
	// (or an env override) still applies to this run
	it.maxGosubDepth = configuration.GetInt("Interpreter", "max_gosub_depth", 100)
	it.maxForDepth = configuration.GetInt("Interpreter", "max_for_loop_depth", 200)
	it.ctx, it.cancel = context.WithCancel(context.Background())
	it.registerProgram()
	logger.Info(logger.AreaInterp, "run %s: %d lines registered", it.RunID, len(it.program.Lines))
	return nil
}

// registerProgram walks the line table collecting everything that must be
// visible before the statement that defines it executes.
func (it *Interp) registerProgram() {
	prog := it.program
	for pc := range prog.Lines {
		line := prog.Lines[pc]
		for _, s := range flattenStmts(line.Stmts) {
			switch st := s.(type) {
			case *DataStmt:
				it.registerData(line.Number, st.Raw)
			case *LabelStmt:
				it.labels[normName(st.Name)] = pc
			case *DefFnStmt:
				it.userFunctions[normName(st.Name)] = st
			case *SubStmt:
				end := findTerminator(prog, pc+1, "SUB")
				st.EndLine = end
				it.subs[normName(st.Name)] = subLoc{StartPC: pc, EndLine: end, Params: st.Params, Kind: "SUB"}
			case *FunctionStmt:
				end := findTerminator(prog, pc+1, "FUNCTION")
				st.EndLine = end
				it.functions[normName(st.Name)] = subLoc{StartPC: pc, EndLine: end, Params: st.Params, Kind: "FUNCTION"}
			case *TypeStmt:
				it.collectTypeFields(st, pc)
			}
		}
	}
	it.labelsScanned = true
}

func flattenStmts(stmts []Stmt) []Stmt {
	var out []Stmt
	for _, s := range stmts {
		if c, ok := s.(*CompoundStmt); ok {
			out = append(out, flattenStmts(c.List)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// findTerminator scans forward for the END <kind> closing a SUB/FUNCTION/
// TYPE opened just before startPC. These constructs do not nest in
// classic BASIC, so no depth counter is needed here.
func findTerminator(prog *Program, startPC int, kind string) int {
	for pc := startPC; pc < len(prog.Lines); pc++ {
		if e, ok := soleStmt(prog, pc).(*EndSubFunctionStmt); ok && e.Kind == kind {
			return pc
		}
	}
	return len(prog.Lines) - 1
}

// collectTypeFields gathers the TypeFieldDecl lines between TYPE and END
// TYPE into one UserType declaration.
func (it *Interp) collectTypeFields(st *TypeStmt, pc int) {
	end := findTerminator(it.program, pc+1, "TYPE")
	var fields []UserTypeField
	for p := pc + 1; p < end; p++ {
		decl, ok := soleStmt(it.program, p).(*TypeFieldDecl)
		if !ok {
			continue
		}
		width := 0
		if decl.Width != nil {
			if lit, ok := decl.Width.(*LiteralExpr); ok && !lit.IsText {
				width = int(lit.Num)
			}
		}
		fields = append(fields, UserTypeField{Name: decl.Name, Type: decl.Type, Width: width})
	}
	it.declareType(st.Name, fields)
}

// Execute parses and runs source to completion (the blocking shape).
func (it *Interp) Execute(source string) error {
	if err := it.Load(source); err != nil {
		return err
	}
	if err := it.InitializeExecution(); err != nil {
		return err
	}
	return it.Run()
}

// Run loops until END, a fatal fault, or cancellation.
func (it *Interp) Run() error {
	for {
		more, err := it.stepLine()
		if err != nil {
			it.reportFatal(err)
			return err
		}
		if !more {
			return nil
		}
	}
}

// ExecuteChunk executes up to max statements and reports whether more
// remain — the cooperative shape for event-loop hosts. A max of 0 uses
// the configured chunk limit.
func (it *Interp) ExecuteChunk(max int) (bool, error) {
	if max <= 0 {
		max = configuration.GetInt("Interpreter", "chunk_statement_limit", 5000)
	}
	for i := 0; i < max; i++ {
		more, err := it.stepLine()
		if err != nil {
			it.reportFatal(err)
			return false, err
		}
		if !more {
			return false, nil
		}
	}
	return true, nil
}

// RunAsync runs to completion, invoking yield after every fixed number of
// statements (default ~2000) so a single-threaded UI host can pump its
// event loop. It must not be re-entered before the previous invocation
// has completed.
func (it *Interp) RunAsync(yield func()) error {
	yieldEvery := configuration.GetInt("Interpreter", "yield_statement_count", 2000)
	count := 0
	for {
		more, err := it.stepLine()
		if err != nil {
			it.reportFatal(err)
			return err
		}
		if !more {
			return nil
		}
		count++
		if count >= yieldEvery {
			count = 0
			if yield != nil {
				yield()
			}
		}
	}
}

// Cancel requests a cooperative stop; the run loop notices at the next
// per-statement check and prints Break.
func (it *Interp) Cancel() {
	if it.cancel != nil {
		it.cancel()
	}
}

func (it *Interp) cancelled() bool {
	if it.ctx == nil {
		return false
	}
	select {
	case <-it.ctx.Done():
		return true
	default:
		return false
	}
}

// stepLine executes the statement(s) of one program line. It returns
// whether execution should continue, surfacing unhandled faults as the
// error.
func (it *Interp) stepLine() (bool, error) {
	if it.program == nil || it.ended || it.pc < 0 || it.pc >= len(it.program.Lines) {
		it.running = false
		return false, nil
	}
	if it.cancelled() {
		it.emitLine("Break")
		it.ended = true
		it.running = false
		return false, nil
	}

	line := it.program.Lines[it.pc]
	if len(line.Stmts) == 0 {
		it.pc++
		return it.pc < len(it.program.Lines), nil
	}

	sig, err := it.execStmt(line.Stmts[0])
	if err != nil {
		handled, herr := it.handleRuntimeError(err)
		if !handled {
			it.ended = true
			it.running = false
			return false, herr
		}
		return true, nil
	}
	if sig == ctrlNone {
		it.pc++
	}
	if it.pc >= len(it.program.Lines) || it.ended {
		it.running = false
		return false, nil
	}
	return true, nil
}

// handleRuntimeError applies ON ERROR routing: with a handler installed
// and not already inside one, record the fault and jump to the handler;
// otherwise the fault bubbles to the driver.
func (it *Interp) handleRuntimeError(err error) (bool, error) {
	be, ok := err.(*BASICError)
	if !ok {
		return false, err
	}
	faultLine := it.currentLine()
	if be.LineNumber == 0 {
		be.LineNumber = faultLine
	}
	it.lastErrCode = be.Code
	it.lastErrLine = be.LineNumber

	if it.onErrorTarget > 0 && !it.inHandler {
		idx, found := it.program.Index[it.onErrorTarget]
		if !found {
			return false, NewRuntimeError(ErrCodeUndefinedLine, "Undefined line number", faultLine)
		}
		it.inHandler = true
		it.resumeLine = faultLine
		it.pc = idx
		logger.Debug(logger.AreaInterp, "run %s: error %d at line %d routed to handler at %d",
			it.RunID, be.Code, faultLine, it.onErrorTarget)
		return true, nil
	}
	return false, err
}

// reportFatal prints the classic ?message at line N form for an
// unhandled fault.
func (it *Interp) reportFatal(err error) {
	be, ok := err.(*BASICError)
	if !ok {
		it.emitLine(fmt.Sprintf("?%v", err))
		logger.Error(logger.AreaInterp, "run %s: host fault: %+v", it.RunID, err)
		return
	}
	if be.LineNumber > 0 {
		it.emitLine(fmt.Sprintf("?%s at line %d", be.Message, be.LineNumber))
	} else {
		it.emitLine("?" + be.Message)
	}
	logger.Error(logger.AreaInterp, "run %s: error %d: %s (line %d)", it.RunID, be.Code, be.Message, be.LineNumber)
}

// Running reports whether a program is mid-run (between
// InitializeExecution and completion).
func (it *Interp) Running() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.running
}
