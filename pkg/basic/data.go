package basic

import "strings"

// DATA/READ/RESTORE: an ordered value pool plus cursor. The pool is
// assembled once per run by registerProgram, in line-number order.

// splitDataLine splits one DATA statement's raw text on commas, honoring
// double quotes: quoted tokens become text verbatim, parseable tokens
// become numbers, everything else is trimmed text.
func splitDataLine(raw string) []Value {
	var out []Value
	var cur strings.Builder
	inQuotes := false
	wasQuoted := false

	flush := func() {
		s := cur.String()
		cur.Reset()
		if wasQuoted {
			out = append(out, TextValue(s))
			wasQuoted = false
			return
		}
		s = strings.TrimSpace(s)
		if n, err := strToNum(s); err == nil && s != "" {
			out = append(out, NumberValue(n))
			return
		}
		out = append(out, TextValue(s))
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch == '"':
			if inQuotes {
				inQuotes = false
			} else {
				inQuotes = true
				wasQuoted = true
				cur.Reset()
			}
		case ch == ',' && !inQuotes:
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if cur.Len() > 0 || wasQuoted || len(out) > 0 || strings.TrimSpace(raw) != "" {
		flush()
	}
	return out
}

// registerData appends one DATA statement's values to the pool, recording
// the first pool index contributed by its line for targeted RESTORE.
func (it *Interp) registerData(lineNumber int, raw string) {
	if _, seen := it.dataByLine[lineNumber]; !seen {
		it.dataByLine[lineNumber] = len(it.dataPool)
	}
	it.dataPool = append(it.dataPool, splitDataLine(raw)...)
}

func (it *Interp) execRead(st *ReadStmt) error {
	for _, target := range st.Targets {
		if it.dataCursor >= len(it.dataPool) {
			return NewRuntimeError(ErrCodeOutOfData, "Out of DATA", it.currentLine())
		}
		v := it.dataPool[it.dataCursor]
		it.dataCursor++
		if err := it.setVariable(target, v); err != nil {
			return err
		}
	}
	return nil
}

// execRestore resets the cursor, optionally to the first value produced
// at or after a specific line.
func (it *Interp) execRestore(st *RestoreStmt) error {
	if st.Line == 0 {
		it.dataCursor = 0
		return nil
	}
	best := -1
	for _, ln := range it.program.Lines {
		if ln.Number >= st.Line {
			if idx, ok := it.dataByLine[ln.Number]; ok {
				best = idx
				break
			}
		}
	}
	if best < 0 {
		return NewRuntimeError(ErrCodeUndefinedLine, "Undefined line number", it.currentLine())
	}
	it.dataCursor = best
	return nil
}
