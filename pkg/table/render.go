package table

import (
	"fmt"
	"io"
	"strings"
)

// String renders the table as an aligned text grid.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

// Render writes a header, a ----+---- separator, every row, and a row count.
func (t *Table) Render(w io.Writer) error {
	cols := t.columns

	// 1) collect cells and compute widths
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c.Name)
	}
	var rows [][]string
	it := t.Iterator()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		out := make([]string, len(cols))
		for i := range cols {
			v, err := row.Get(i)
			switch {
			case err != nil:
				out[i] = "?"
			case v == nil:
				out[i] = "NULL"
			case isBytes(v):
				out[i] = fmt.Sprintf("%X", v)
			default:
				out[i] = fmt.Sprintf("%v", v)
			}
			if len(out[i]) > widths[i] {
				widths[i] = len(out[i])
			}
		}
		rows = append(rows, out)
	}
	if err := it.Err(); err != nil {
		return err
	}

	// helper to print a row
	printRow := func(values []string) error {
		var b strings.Builder
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(padRight(values[i], widths[i]))
		}
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}

	// 2) header
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = c.Name
	}
	if err := printRow(hdr); err != nil {
		return err
	}

	// 3) separator
	sep := make([]string, len(cols))
	for i := range cols {
		sep[i] = strings.Repeat("-", widths[i])
	}
	if _, err := io.WriteString(w, strings.Join(sep, "-+-")+"\n"); err != nil {
		return err
	}

	// 4) rows
	for _, r := range rows {
		if err := printRow(r); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", t.rowCount)
	return err
}

func isBytes(v any) bool {
	_, ok := v.([]byte)
	return ok
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
