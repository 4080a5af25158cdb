package command

import (
	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/parser/ast"
)

// literalValue converts a parsed literal to the value the column expects.
// DATE columns take quoted ISO dates; a string that does not parse is
// passed through unchanged so row validation reports the mismatch.
func literalValue(lit *ast.Literal, col schema.Column) interface{} {
	if col.Type == schema.ColumnTypeDate && lit.Kind == ast.LiteralString {
		if d, err := col.Type.ParseLiteral(lit.Value.(string)); err == nil {
			return d
		}
	}
	return lit.Value
}

// buildPredicates turns OR-joined conditions into predicates. A column named
// twice cannot share one map, so it spills into the next predicate.
func buildPredicates(conds []*ast.Condition, s *schema.Schema) []data.Predicate {
	var preds []data.Predicate
	for _, cond := range conds {
		name := cond.Column.Value
		var value interface{} = cond.Value.Value
		if i, ok := s.Index(name); ok {
			value = literalValue(cond.Value, s.Column(i))
		}

		placed := false
		for _, pred := range preds {
			if _, taken := pred[name]; !taken {
				pred[name] = value
				placed = true
				break
			}
		}
		if !placed {
			preds = append(preds, data.Predicate{name: value})
		}
	}
	return preds
}

func matchesAny(row data.Row, preds []data.Predicate) bool {
	for _, pred := range preds {
		if row.Matches(pred) {
			return true
		}
	}
	return false
}

// renderRow projects a row onto the given column positions in stored form
func renderRow(row data.Row, positions []int) []interface{} {
	s := row.Schema()
	out := make([]interface{}, len(positions))
	for i, pos := range positions {
		out[i] = s.Column(pos).Type.Encode(row.At(pos))
	}
	return out
}
