package basic

import (
	"strings"
	"time"
)

// Console-facing statements: PRINT (zones, USING, file redirection),
// INPUT, LINE INPUT, SLEEP.

const printZoneWidth = 14

// emit writes text to the console and, when a graphics mode is active,
// rasterizes it onto the active page at the text cursor. Column tracking
// feeds PRINT's 14-column comma zones.
func (it *Interp) emit(s string) {
	if it.console != nil {
		it.console.Write(s)
	}
	if it.Graphics != nil && it.Graphics.Mode != 0 {
		it.Graphics.PrintText(s, it.fgColor)
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		it.printCol = len(s) - i - 1
	} else {
		it.printCol += len(s)
	}
}

func (it *Interp) emitLine(s string) {
	if it.console != nil {
		it.console.WriteLine(s)
	}
	if it.Graphics != nil && it.Graphics.Mode != 0 {
		it.Graphics.PrintText(s+"\n", it.fgColor)
	}
	it.printCol = 0
}

func (it *Interp) execPrint(st *PrintStmt) error {
	var sb strings.Builder
	col := it.printCol

	write := func(s string) {
		sb.WriteString(s)
		col += len(s)
	}

	if st.Using != nil {
		fv, err := it.evalExpr(st.Using)
		if err != nil {
			return err
		}
		vals := make([]Value, 0, len(st.Items))
		for _, item := range st.Items {
			v, err := it.evalExpr(item.Value)
			if err != nil {
				return err
			}
			vals = append(vals, v)
		}
		write(formatUsing(valueToString(fv), vals))
	} else {
		for _, item := range st.Items {
			v, err := it.evalExpr(item.Value)
			if err != nil {
				return err
			}
			write(printRepr(v))
			if item.Sep == ',' {
				next := (col/printZoneWidth + 1) * printZoneWidth
				write(strings.Repeat(" ", next-col))
			}
		}
	}

	text := sb.String()
	newline := st.Trailing == 0

	if st.FileNum != nil {
		fh, err := it.handleFor(st.FileNum)
		if err != nil {
			return err
		}
		if newline {
			text += "\r\n"
		}
		return fh.WriteString(text)
	}

	if newline {
		it.emit(text)
		it.emitLine("")
	} else {
		it.emit(text)
	}
	return nil
}

func (it *Interp) execInput(st *InputStmt) error {
	if st.FileNum != nil {
		return it.execInputFile(st)
	}

	prompt := "? "
	if st.HasPrompt {
		prompt = st.Prompt
		if st.SameLine {
			prompt += "? "
		}
	}
	it.emit(prompt)

	line := ""
	if it.console != nil {
		l, ok := it.console.ReadLine()
		if !ok {
			return NewRuntimeError(ErrCodeInputPastEnd, "Input past end", it.currentLine())
		}
		line = l
	}
	it.printCol = 0

	parts := strings.Split(line, ",")
	for i, name := range st.Vars {
		raw := ""
		if i < len(parts) {
			raw = strings.TrimSpace(parts[i])
		}
		if err := it.assignInput(name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interp) execInputFile(st *InputStmt) error {
	fh, err := it.handleFor(st.FileNum)
	if err != nil {
		return err
	}
	line, ok := fh.ReadLine()
	if !ok {
		return NewRuntimeError(ErrCodeInputPastEnd, "Input past end", it.currentLine())
	}
	parts := splitDataLine(line)
	for i, name := range st.Vars {
		if i < len(parts) {
			if err := it.setVariable(name, parts[i]); err != nil {
				return err
			}
		} else if err := it.assignInput(name, ""); err != nil {
			return err
		}
	}
	return nil
}

// assignInput converts raw typed-in text to the target's sigil type:
// string targets take the text verbatim, numeric targets parse it
// (unparsable input stores 0, the classic lenient INPUT behavior).
func (it *Interp) assignInput(name, raw string) error {
	if hasStringSigil(normName(name)) {
		return it.setVariable(name, TextValue(strings.Trim(raw, "\"")))
	}
	n, err := strToNum(raw)
	if err != nil {
		n = 0
	}
	return it.setVariable(name, NumberValue(n))
}

func (it *Interp) execLineInput(st *LineInputStmt) error {
	if st.FileNum != nil {
		fh, err := it.handleFor(st.FileNum)
		if err != nil {
			return err
		}
		line, ok := fh.ReadLine()
		if !ok {
			return NewRuntimeError(ErrCodeInputPastEnd, "Input past end", it.currentLine())
		}
		return it.setVariable(st.Var, TextValue(line))
	}

	if st.Prompt != "" {
		it.emit(st.Prompt)
	}
	line := ""
	if it.console != nil {
		l, ok := it.console.ReadLine()
		if !ok {
			return NewRuntimeError(ErrCodeInputPastEnd, "Input past end", it.currentLine())
		}
		line = l
	}
	it.printCol = 0
	return it.setVariable(st.Var, TextValue(line))
}

// execSleep blocks for n seconds (coarse, interruptible at 50ms grain),
// or with no argument waits for a key from the display or console.
func (it *Interp) execSleep(st *SleepStmt) error {
	if st.Seconds != nil {
		v, err := it.evalExpr(st.Seconds)
		if err != nil {
			return err
		}
		n, err := toNumber(it, v)
		if err != nil {
			return err
		}
		deadline := time.Now().Add(time.Duration(n * float64(time.Second)))
		for time.Now().Before(deadline) {
			if it.cancelled() {
				return nil
			}
			time.Sleep(50 * time.Millisecond)
		}
		return nil
	}

	for {
		if it.cancelled() {
			return nil
		}
		if it.display != nil && it.display.KeyAvailable() {
			it.display.ReadKey()
			return nil
		}
		if it.console != nil {
			if k := it.console.ReadKey(); k != "" {
				return nil
			}
		}
		if it.display == nil && it.console == nil {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
}
