// Package render produces the OT-2 protocol scripts of a plan by splicing
// variable assignments into script templates.
package render

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dict is an insertion-ordered mapping written as a JSON object.
type Dict []Entry

// Entry is one key of a Dict.
type Entry struct {
	Key   string
	Value any
}

// Tuple is written as a Python tuple.
type Tuple []any

// Literal returns the Python source for v. Dicts use JSON syntax, strings are
// single-quoted and everything else follows Python's repr.
func Literal(v any) (string, error) {
	var b strings.Builder
	if err := writeLiteral(&b, v, false); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeLiteral(b *strings.Builder, v any, inJSON bool) error {
	switch x := v.(type) {
	case nil:
		if inJSON {
			b.WriteString("null")
		} else {
			b.WriteString("None")
		}
	case string:
		if inJSON {
			enc, err := json.Marshal(x)
			if err != nil {
				return err
			}
			b.Write(enc)
		} else {
			b.WriteString(pyString(x))
		}
	case bool:
		switch {
		case inJSON:
			b.WriteString(strconv.FormatBool(x))
		case x:
			b.WriteString("True")
		default:
			b.WriteString("False")
		}
	case int:
		b.WriteString(strconv.Itoa(x))
	case float64:
		s, err := pyFloat(x)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case Dict:
		b.WriteByte('{')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeLiteral(b, e.Key, true); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeLiteral(b, e.Value, true); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case Tuple:
		if inJSON {
			return writeSeq(b, []any(x), "[", "]", inJSON)
		}
		if len(x) == 1 {
			b.WriteByte('(')
			if err := writeLiteral(b, x[0], false); err != nil {
				return err
			}
			b.WriteString(",)")
			return nil
		}
		return writeSeq(b, []any(x), "(", ")", inJSON)
	case []any:
		return writeSeq(b, x, "[", "]", inJSON)
	case []string:
		return writeSeq(b, toAny(x), "[", "]", inJSON)
	case []float64:
		return writeSeq(b, toAny(x), "[", "]", inJSON)
	case []int:
		return writeSeq(b, toAny(x), "[", "]", inJSON)
	default:
		return fmt.Errorf("render: unsupported value type %T", v)
	}
	return nil
}

func writeSeq(b *strings.Builder, items []any, open, closing string, inJSON bool) error {
	b.WriteString(open)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := writeLiteral(b, item, inJSON); err != nil {
			return err
		}
	}
	b.WriteString(closing)
	return nil
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// pyFloat keeps a decimal point on integral values so they stay floats in Python.
func pyFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("render: non-finite float %v", v)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

func pyString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}
