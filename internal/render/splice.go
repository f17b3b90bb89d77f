package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoFunction is returned for templates without a top-level def line.
var ErrNoFunction = errors.New("render: template has no def line")

// Var is one module-level assignment written into a script.
type Var struct {
	Name  string
	Value any
}

// Splice writes the template lines preceding its first def line, then one
// name=value line per var and a blank line, then the template again from the
// line before the first def.
func Splice(w io.Writer, template string, vars []Var) error {
	lines := strings.SplitAfter(template, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "def") {
			start = i
			break
		}
	}
	if start < 0 {
		return ErrNoFunction
	}

	var b strings.Builder
	for _, line := range lines[:start] {
		b.WriteString(line)
	}
	for _, v := range vars {
		lit, err := Literal(v.Value)
		if err != nil {
			return fmt.Errorf("var %s: %w", v.Name, err)
		}
		b.WriteString(v.Name)
		b.WriteByte('=')
		b.WriteString(lit)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, line := range lines[max(start-1, 0):] {
		b.WriteString(line)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
