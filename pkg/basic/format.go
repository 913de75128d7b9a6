package basic

import (
	"math"
	"strconv"
	"strings"
)

// PRINT USING formatting, implementing the classic clauses: # digits
// with leading-zero suppression, decimal point, thousands comma, leading
// $ / $$, ** fill, a leading + sign, ! first-char, & whole-string, and
// \  \ fixed-width string fields. A + or - after the digits is not a sign
// clause: it passes through as a literal character. Literal characters
// pass through; the format string recycles while arguments remain.

type usingField struct {
	numeric   bool
	intDigits int
	decDigits int
	hasDot    bool
	commas    bool
	dollar    bool
	starFill  bool
	plusSign  bool
	width     int // string field width for \  \ fields; 1 for !, 0 for &
	wholeStr  bool
}

// formatUsing renders args through the format string, emitting literal
// runs verbatim and consuming one argument per field.
func formatUsing(format string, args []Value) string {
	var out strings.Builder
	argIdx := 0

	for argIdx < len(args) {
		consumed := false
		i := 0
		for i < len(format) {
			field, next, lit := scanUsingField(format, i)
			if field == nil {
				out.WriteString(lit)
				i = next
				continue
			}
			if argIdx >= len(args) {
				return out.String()
			}
			out.WriteString(renderUsingField(field, args[argIdx]))
			argIdx++
			consumed = true
			i = next
		}
		if !consumed {
			break // a format with no fields cannot consume anything
		}
	}
	return out.String()
}

// scanUsingField inspects format at position i: it returns either a
// parsed field and the position after it, or (nil, next, literal) for a
// single literal character.
func scanUsingField(format string, i int) (*usingField, int, string) {
	ch := format[i]

	switch ch {
	case '!':
		return &usingField{width: 1}, i + 1, ""
	case '&':
		return &usingField{wholeStr: true}, i + 1, ""
	case '\\':
		end := strings.IndexByte(format[i+1:], '\\')
		if end >= 0 {
			return &usingField{width: end + 2}, i + end + 2, ""
		}
		return nil, i + 1, "\\"
	}

	if ch == '#' || ch == '+' || ch == '.' ||
		(ch == '$' && i+1 < len(format) && (format[i+1] == '$' || format[i+1] == '#')) ||
		(ch == '*' && i+1 < len(format) && format[i+1] == '*') {
		f := &usingField{numeric: true}
		j := i
		if format[j] == '+' {
			f.plusSign = true
			j++
		}
		if j+1 < len(format) && format[j] == '*' && format[j+1] == '*' {
			f.starFill = true
			f.intDigits += 2
			j += 2
		}
		if j < len(format) && format[j] == '$' {
			f.dollar = true
			j++
			if j < len(format) && format[j] == '$' {
				f.intDigits++
				j++
			}
		}
		for j < len(format) {
			c := format[j]
			if c == '#' {
				if f.hasDot {
					f.decDigits++
				} else {
					f.intDigits++
				}
				j++
				continue
			}
			if c == ',' && !f.hasDot {
				f.commas = true
				f.intDigits++
				j++
				continue
			}
			if c == '.' && !f.hasDot {
				f.hasDot = true
				j++
				continue
			}
			break
		}
		if f.intDigits == 0 && !f.hasDot {
			return nil, i + 1, string(ch)
		}
		return f, j, ""
	}

	return nil, i + 1, string(ch)
}

func renderUsingField(f *usingField, v Value) string {
	if !f.numeric {
		s := valueToString(v)
		if f.wholeStr {
			return s
		}
		if len(s) > f.width {
			s = s[:f.width]
		}
		return s + strings.Repeat(" ", f.width-len(s))
	}

	n, _ := strToNum(valueToString(v))
	neg := n < 0 || math.Signbit(n)
	body := strconv.FormatFloat(math.Abs(n), 'f', f.decDigits, 64)

	intPart := body
	decPart := ""
	if dot := strings.IndexByte(body, '.'); dot >= 0 {
		intPart = body[:dot]
		decPart = body[dot+1:]
	}
	if f.commas {
		intPart = groupThousands(intPart)
	}

	var sb strings.Builder
	if f.plusSign {
		if neg {
			sb.WriteByte('-')
		} else {
			sb.WriteByte('+')
		}
	} else if neg {
		sb.WriteByte('-')
	}
	if f.dollar {
		sb.WriteByte('$')
	}
	sb.WriteString(intPart)
	if f.hasDot {
		sb.WriteByte('.')
		sb.WriteString(decPart)
	}
	s := sb.String()

	totalWidth := f.intDigits
	if f.hasDot {
		totalWidth += 1 + f.decDigits
	}
	if f.plusSign || neg {
		totalWidth++
	}
	if f.dollar {
		totalWidth++
	}
	if len(s) < totalWidth {
		fill := " "
		if f.starFill {
			fill = "*"
		}
		s = strings.Repeat(fill, totalWidth-len(s)) + s
	} else if len(s) > totalWidth {
		// field overflow prints a leading % marker, the classic signal
		s = "%" + s
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
