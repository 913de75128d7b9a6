package basic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// callBuiltin dispatches the closed built-in function table. It is
// consulted after user FUNCTIONs/DEF FNs (which shadow same-named
// built-ins) and before array reads when resolving an ArrayOrCallExpr:
// calls win over array reads.
func callBuiltin(it *Interp, name string, args []Value) (Value, bool, error) {
	switch strings.ToUpper(name) {
	case "ABS":
		n, err := arg1Num(it, args)
		return NumberValue(math.Abs(n)), true, err
	case "SGN":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		switch {
		case n > 0:
			return NumberValue(1), true, nil
		case n < 0:
			return NumberValue(-1), true, nil
		}
		return NumberValue(0), true, nil
	case "INT":
		n, err := arg1Num(it, args)
		return NumberValue(math.Floor(n)), true, err
	case "FIX":
		n, err := arg1Num(it, args)
		return NumberValue(truncateTowardZero(n)), true, err
	case "SQR":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		if n < 0 {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
		}
		return NumberValue(math.Sqrt(n)), true, nil
	case "SIN":
		n, err := arg1Num(it, args)
		return NumberValue(math.Sin(n)), true, err
	case "COS":
		n, err := arg1Num(it, args)
		return NumberValue(math.Cos(n)), true, err
	case "TAN":
		n, err := arg1Num(it, args)
		return NumberValue(math.Tan(n)), true, err
	case "ATN":
		n, err := arg1Num(it, args)
		return NumberValue(math.Atan(n)), true, err
	case "LOG":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		if n <= 0 {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
		}
		return NumberValue(math.Log(n)), true, nil
	case "EXP":
		n, err := arg1Num(it, args)
		return NumberValue(math.Exp(n)), true, err
	case "RND":
		arg := 1.0
		if len(args) > 0 {
			n, err := toNumber(it, args[0])
			if err != nil {
				return Value{}, true, err
			}
			arg = n
		}
		return NumberValue(it.rnd(arg)), true, nil

	case "LEN":
		if len(args) != 1 {
			return Value{}, true, arityErr(it)
		}
		return NumberValue(float64(len(valueToString(args[0])))), true, nil
	case "ASC":
		s := valueToString(mustArg(args, 0))
		if s == "" {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
		}
		return NumberValue(float64(s[0])), true, nil
	case "CHR$":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		return TextValue(string(rune(int(n)))), true, nil
	case "STR$":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		return TextValue(numToStr(n)), true, nil
	case "VAL":
		s := valueToString(mustArg(args, 0))
		n, _ := strToNum(s)
		return NumberValue(n), true, nil
	case "LEFT$":
		s := valueToString(mustArg(args, 0))
		n := int(mustNum(it, args, 1))
		if n < 0 {
			n = 0
		}
		if n > len(s) {
			n = len(s)
		}
		return TextValue(s[:n]), true, nil
	case "RIGHT$":
		s := valueToString(mustArg(args, 0))
		n := int(mustNum(it, args, 1))
		if n < 0 {
			n = 0
		}
		if n > len(s) {
			n = len(s)
		}
		return TextValue(s[len(s)-n:]), true, nil
	case "MID$":
		s := valueToString(mustArg(args, 0))
		start := int(mustNum(it, args, 1))
		if start < 1 {
			start = 1
		}
		if start > len(s) {
			return TextValue(""), true, nil
		}
		length := len(s) - start + 1
		if len(args) >= 3 {
			length = int(mustNum(it, args, 2))
			if length < 0 {
				length = 0
			}
			if start-1+length > len(s) {
				length = len(s) - start + 1
			}
		}
		return TextValue(s[start-1 : start-1+length]), true, nil
	case "INSTR":
		var hay, needle string
		start := 1
		if len(args) == 2 {
			hay = valueToString(args[0])
			needle = valueToString(args[1])
		} else if len(args) >= 3 {
			start = int(mustNum(it, args, 0))
			hay = valueToString(args[1])
			needle = valueToString(args[2])
		} else {
			return Value{}, true, arityErr(it)
		}
		if start < 1 {
			start = 1
		}
		if start > len(hay)+1 {
			return NumberValue(0), true, nil
		}
		idx := strings.Index(hay[start-1:], needle)
		if idx < 0 {
			return NumberValue(0), true, nil
		}
		return NumberValue(float64(start + idx)), true, nil
	case "STRING$":
		n := int(mustNum(it, args, 0))
		var ch byte
		if len(args) >= 2 {
			if args[1].IsNumeric {
				ch = byte(int(args[1].Num))
			} else if len(args[1].Str) > 0 {
				ch = args[1].Str[0]
			}
		}
		return TextValue(strings.Repeat(string(ch), n)), true, nil
	case "SPACE$":
		n := int(mustNum(it, args, 0))
		if n < 0 {
			n = 0
		}
		return TextValue(strings.Repeat(" ", n)), true, nil
	case "TAB", "SPC":
		n := int(mustNum(it, args, 0))
		if n < 0 {
			n = 0
		}
		return TextValue(strings.Repeat(" ", n)), true, nil
	case "UCASE$":
		return TextValue(strings.ToUpper(valueToString(mustArg(args, 0)))), true, nil
	case "LCASE$":
		return TextValue(strings.ToLower(valueToString(mustArg(args, 0)))), true, nil
	case "HEX$":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		return TextValue(strconv.FormatInt(clampToInt64(n), 16)), true, nil
	case "OCT$":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		return TextValue(strconv.FormatInt(clampToInt64(n), 8)), true, nil

	case "CINT", "CLNG":
		n, err := arg1Num(it, args)
		return NumberValue(roundHalfAwayFromZero(n)), true, err
	case "CDBL", "CSNG":
		n, err := arg1Num(it, args)
		return NumberValue(n), true, err
	case "CVI", "CVS", "CVD":
		s := valueToString(mustArg(args, 0))
		return NumberValue(bytesToNum(s)), true, nil
	case "MKI$", "MKS$", "MKD$":
		n, err := arg1Num(it, args)
		if err != nil {
			return Value{}, true, err
		}
		return TextValue(numToBytes(n)), true, nil

	case "TIMER":
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return NumberValue(now.Sub(midnight).Seconds()), true, nil
	case "INKEY$":
		if it.console != nil {
			return TextValue(it.console.ReadKey()), true, nil
		}
		return TextValue(""), true, nil
	case "CSRLIN":
		return NumberValue(float64(it.Graphics.CursorRow + 1)), true, nil
	case "POS":
		return NumberValue(float64(it.Graphics.CursorCol + 1)), true, nil
	case "POINT":
		if len(args) < 2 {
			return Value{}, true, arityErr(it)
		}
		x := int(mustNum(it, args, 0))
		y := int(mustNum(it, args, 1))
		fb := it.Graphics.Active()
		if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
			return NumberValue(-1), true, nil
		}
		if idx, ok := fb.PaletteIndexAt(x, y); ok {
			return NumberValue(float64(idx)), true, nil
		}
		b, g, r, _ := fb.GetPixelRaw(x, y)
		return NumberValue(float64(int(r)<<16 | int(g)<<8 | int(b) | 0x01000000)), true, nil

	case "EOF":
		n := int(mustNum(it, args, 0))
		fh, ok := it.files[n]
		if !ok {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Bad file number", it.currentLine())
		}
		if fh.Eof() {
			return NumberValue(-1), true, nil
		}
		return NumberValue(0), true, nil
	case "LOF":
		n := int(mustNum(it, args, 0))
		fh, ok := it.files[n]
		if !ok {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Bad file number", it.currentLine())
		}
		return NumberValue(float64(fh.Size())), true, nil
	case "LOC":
		n := int(mustNum(it, args, 0))
		if _, ok := it.files[n]; !ok {
			return Value{}, true, NewRuntimeError(ErrCodeIllegalFunctionCall, "Bad file number", it.currentLine())
		}
		return NumberValue(0), true, nil

	case "PEEK":
		return NumberValue(0), true, nil
	case "FRE":
		return NumberValue(60000), true, nil

	case "ERR":
		return NumberValue(float64(it.lastErrCode)), true, nil
	case "ERL":
		return NumberValue(float64(it.lastErrLine)), true, nil

	case "INPUT$":
		n := int(mustNum(it, args, 0))
		if it.console == nil {
			return TextValue(""), true, nil
		}
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteString(it.console.ReadKey())
		}
		return TextValue(sb.String()), true, nil
	case "RGB":
		if len(args) < 3 {
			return Value{}, true, arityErr(it)
		}
		r := int(mustNum(it, args, 0))
		g := int(mustNum(it, args, 1))
		b := int(mustNum(it, args, 2))
		return NumberValue(float64(rgbPack(r, g, b))), true, nil
	}
	return Value{}, false, nil
}

func arg1Num(it *Interp, args []Value) (float64, error) {
	if len(args) != 1 {
		return 0, arityErr(it)
	}
	return toNumber(it, args[0])
}

func mustArg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Value{}
}

func mustNum(it *Interp, args []Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	n, _ := toNumber(it, args[i])
	return n
}

func arityErr(it *Interp) error {
	return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
}

// numToBytes/bytesToNum back MKx$/CVx with a plain decimal-string
// payload rather than packed little-endian IEEE bytes. Nothing here
// reads raw memory images produced by another BASIC, so round-tripping
// within this interpreter is the only contract.
func numToBytes(n float64) string {
	return fmt.Sprintf("%g", n)
}

func bytesToNum(s string) float64 {
	n, _ := strToNum(s)
	return n
}

func rgbPack(r, g, b int) int {
	return (r << 16) | (g << 8) | b | 0x01000000
}
