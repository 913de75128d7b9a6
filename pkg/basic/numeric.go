package basic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric/text coercion and classic PRINT formatting helpers.

func strToNum(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(strings.ToUpper(s), "&H") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return float64(v), err
	}
	if strings.HasPrefix(strings.ToUpper(s), "&O") {
		v, err := strconv.ParseInt(s[2:], 8, 64)
		return float64(v), err
	}
	replaced := strings.NewReplacer("D", "E", "d", "e").Replace(s)
	v, err := strconv.ParseFloat(replaced, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// numToStr renders a float the classic BASIC way: a leading space stands
// in for the sign of non-negative numbers, integral values print with no
// decimal point. Round-trips with strToNum.
func numToStr(n float64) string {
	var body string
	if math.Trunc(n) == n && math.Abs(n) < 1e15 {
		body = strconv.FormatFloat(n, 'f', -1, 64)
	} else {
		body = strconv.FormatFloat(n, 'g', -1, 64)
		body = strings.Replace(body, "e", "E", 1)
	}
	if n < 0 {
		return body
	}
	return " " + body
}

// valueToString stringifies a Value for concatenation/PRINT purposes,
// without the classic leading-space-for-PRINT convention (use
// printRepr for that).
func valueToString(v Value) string {
	if !v.IsNumeric {
		return v.Str
	}
	return strings.TrimPrefix(numToStr(v.Num), " ")
}

// printRepr is what PRINT emits for one value: numbers keep the leading
// sign space/trailing space classic BASIC convention, strings print bare.
func printRepr(v Value) string {
	if !v.IsNumeric {
		return v.Str
	}
	return numToStr(v.Num) + " "
}

// toNumber coerces a Value to float64, converting text via strToNum;
// callers surface ErrCodeTypeMismatch on failure.
func toNumber(it *Interp, v Value) (float64, error) {
	if v.IsNumeric {
		return v.Num, nil
	}
	n, err := strToNum(v.Str)
	if err != nil {
		return 0, NewRuntimeError(ErrCodeTypeMismatch, "Type mismatch", it.currentLine())
	}
	return n, nil
}

// truthy: zero is false, any nonzero number is true. Non-numeric values
// have no meaningful truthiness in classic BASIC conditionals, but a
// non-empty string is commonly treated as true by convention here.
func truthy(v Value) bool {
	if v.IsNumeric {
		return v.Num != 0
	}
	return v.Str != ""
}

func boolToBasic(b bool) Value {
	if b {
		return NumberValue(-1)
	}
	return NumberValue(0)
}

// compareValues implements relational-operator semantics: text compares
// lexicographically, else numerically; result is -1 (true) or 0 (false).
func compareValues(it *Interp, op string, l, r Value) (Value, error) {
	if !l.IsNumeric && !r.IsNumeric {
		var cmp int
		switch {
		case l.Str < r.Str:
			cmp = -1
		case l.Str > r.Str:
			cmp = 1
		}
		return boolToBasic(relResult(op, cmp)), nil
	}
	ln, err := toNumber(it, l)
	if err != nil {
		return Value{}, err
	}
	rn, err := toNumber(it, r)
	if err != nil {
		return Value{}, err
	}
	var cmp int
	switch {
	case ln < rn:
		cmp = -1
	case ln > rn:
		cmp = 1
	}
	return boolToBasic(relResult(op, cmp)), nil
}

func relResult(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func roundHalfAwayFromZero(f float64) float64 {
	if f < 0 {
		return -math.Floor(-f + 0.5)
	}
	return math.Floor(f + 0.5)
}

func clampToInt64(f float64) int64 {
	if f > math.MaxInt64 {
		return math.MaxInt64
	}
	if f < math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func fmtNum(n float64) string {
	return fmt.Sprintf("%v", n)
}
