package repository

import (
	"fmt"
	"strings"
)

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends a condition. Each "?" in cond is replaced by the next
// positional parameter.
func (w *whereClause) add(cond string, args ...any) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

// contains adds a case-insensitive substring match when value is not blank.
func (w *whereClause) contains(column, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	w.add(column+" ILIKE ?", "%"+escapeLike(value)+"%")
}

// next returns the placeholder for an argument appended after the conditions.
func (w *whereClause) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
