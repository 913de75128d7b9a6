package basic

import "strings"

// Variable lookup/assignment, DEFtype defaults, and the CONST table.

func normName(name string) string { return strings.ToUpper(name) }

// lookupVariable: constants shadow variables; then variables; otherwise
// the type-default zero value for the name's sigil.
func (it *Interp) lookupVariable(name string) Value {
	n := normName(name)
	if v, ok := it.constants[n]; ok {
		return v
	}
	if v, ok := it.variables[n]; ok {
		return v
	}
	return sigilDefault(n)
}

func (it *Interp) setVariable(name string, val Value) error {
	n := normName(name)
	if _, ok := it.constants[n]; ok {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Duplicate definition", it.currentLine())
	}
	if hasStringSigil(n) && val.IsNumeric {
		val = TextValue(numToStr(val.Num))
	} else if !hasStringSigil(n) && !val.IsNumeric {
		if n2, err := strToNum(val.Str); err == nil {
			val = NumberValue(n2)
		} else {
			return NewRuntimeError(ErrCodeTypeMismatch, "Type mismatch", it.currentLine())
		}
	}
	if val.IsNumeric && isIntegerSigil(n) {
		val = NumberValue(truncateTowardZero(val.Num))
	}
	it.variables[n] = val
	return nil
}

func hasStringSigil(name string) bool {
	return len(name) > 0 && name[len(name)-1] == '$'
}
func isIntegerSigil(name string) bool {
	return len(name) > 0 && (name[len(name)-1] == '%' || name[len(name)-1] == '&')
}

func truncateTowardZero(f float64) float64 {
	if f < 0 {
		return -float64(int64(-f))
	}
	return float64(int64(f))
}

func (it *Interp) declareConst(name string, val Value) error {
	n := normName(name)
	if _, ok := it.constants[n]; ok {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Duplicate definition", it.currentLine())
	}
	it.constants[n] = val
	return nil
}

func (it *Interp) setDefType(from, to byte, basicType string) {
	for c := from; c <= to; c++ {
		it.defTypes[c] = basicType
	}
}

// coerceForName applies the sigil-driven storage conversion a plain
// variable assignment performs, reused by array-element stores.
func (it *Interp) coerceForName(name string, val Value) (Value, error) {
	n := normName(name)
	if hasStringSigil(n) && val.IsNumeric {
		return TextValue(numToStr(val.Num)), nil
	}
	if !hasStringSigil(n) && !val.IsNumeric && val.TypeRef == nil {
		n2, err := strToNum(val.Str)
		if err != nil {
			return Value{}, NewRuntimeError(ErrCodeTypeMismatch, "Type mismatch", it.currentLine())
		}
		val = NumberValue(n2)
	}
	if val.IsNumeric && isIntegerSigil(n) {
		val = NumberValue(truncateTowardZero(val.Num))
	}
	return val, nil
}

func (it *Interp) execLet(st *LetStmt) error {
	val, err := it.evalExpr(st.Value)
	if err != nil {
		return err
	}

	if len(st.Indices) == 0 && st.Field == "" {
		return it.setVariable(st.Target, val)
	}

	if len(st.Indices) == 0 {
		// a.field = value on a scalar TYPE variable
		obj := it.lookupVariable(st.Target)
		return it.fieldSet(obj, st.Field, val)
	}

	indices := make([]int, len(st.Indices))
	for i, e := range st.Indices {
		v, err := it.evalExpr(e)
		if err != nil {
			return err
		}
		n, err := toNumber(it, v)
		if err != nil {
			return err
		}
		indices[i] = int(n)
	}

	if st.Field != "" {
		elem, err := it.arrayGet(st.Target, indices)
		if err != nil {
			return err
		}
		return it.fieldSet(elem, st.Field, val)
	}

	coerced, err := it.coerceForName(st.Target, val)
	if err != nil {
		return err
	}
	return it.arraySet(st.Target, indices, coerced)
}

func (it *Interp) execSwap(st *SwapStmt) error {
	a, b := normName(st.A), normName(st.B)
	av := it.lookupVariable(a)
	bv := it.lookupVariable(b)
	it.variables[a] = bv
	it.variables[b] = av
	return nil
}

func (it *Interp) execConst(st *ConstStmt) error {
	v, err := it.evalExpr(st.Value)
	if err != nil {
		return err
	}
	return it.declareConst(st.Name, v)
}
