package crud

import (
	"fmt"
	"strings"
	"time"
)

// Operator is one of the closed set of comparison operators the filter
// grammar supports.
type Operator string

const (
	OpEq   Operator = "="
	OpNe   Operator = "!="
	OpGt   Operator = ">"
	OpLt   Operator = "<"
	OpGte  Operator = ">="
	OpLte  Operator = "<="
	OpLike Operator = "like"
	OpIn   Operator = "in"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpLt: true,
	OpGte: true, OpLte: true, OpLike: true, OpIn: true,
}

// Condition is a single field comparison.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Query is an ordered set of conditions combined with logical AND. OR and
// nesting are deliberately unsupported.
type Query struct {
	Conditions []Condition
}

// Eq builds a single-condition equality query.
func Eq(field string, value any) *Query {
	return &Query{Conditions: []Condition{{Field: field, Op: OpEq, Value: value}}}
}

// And appends an equality condition to the query.
func (q *Query) And(field string, op Operator, value any) *Query {
	q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: value})
	return q
}

// ParseConditions turns a wire-format condition list ([[field, op, value],
// ...]) into a Query. Every triple must have exactly three elements, a known
// operator and a field declared on the descriptor; "in" requires a list
// value. Anything else fails with ErrInvalidQuery before a backend is
// touched.
func ParseConditions(desc *Descriptor, raw [][]any) (*Query, error) {
	q := &Query{}
	for _, triple := range raw {
		if len(triple) != 3 {
			return nil, InvalidQueryf("condition must have exactly 3 elements, got %d", len(triple))
		}
		field, ok := triple[0].(string)
		if !ok {
			return nil, InvalidQueryf("condition field must be a string")
		}
		opStr, ok := triple[1].(string)
		if !ok {
			return nil, InvalidQueryf("condition operator must be a string")
		}
		op := Operator(opStr)
		if !operators[op] {
			return nil, InvalidQueryf("unknown operator %q", opStr)
		}
		if _, ok := desc.Field(field); !ok {
			return nil, InvalidQueryf("unknown field %q", field)
		}
		value := triple[2]
		if op == OpIn {
			if _, ok := value.([]any); !ok {
				return nil, InvalidQueryf("operator %q requires a list value", OpIn)
			}
		}
		q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: value})
	}
	return q, nil
}

// ParseFilter turns an equality filter object ({field: value, ...}) into a
// Query, validating every key against the descriptor. Null values are
// ignored, matching the "unset means unfiltered" contract.
func ParseFilter(desc *Descriptor, filter map[string]any) (*Query, error) {
	q := &Query{}
	for _, f := range desc.Fields() {
		value, ok := filter[f.Name]
		if !ok || value == nil {
			continue
		}
		q.Conditions = append(q.Conditions, Condition{Field: f.Name, Op: OpEq, Value: value})
	}
	for key := range filter {
		if _, ok := desc.Field(key); !ok {
			if _, isRel := desc.Relation(key); !isRel && !strings.HasSuffix(key, "_refids") {
				return nil, InvalidQueryf("unknown field %q", key)
			}
		}
	}
	return q, nil
}

// Sort orders a result set by one field, descending when Desc is set.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort parses the single sort parameter: a field name, "-"-prefixed for
// descending order. Unknown fields fail with ErrInvalidQuery.
func ParseSort(desc *Descriptor, sortBy string) (*Sort, error) {
	if sortBy == "" {
		return nil, nil
	}
	s := &Sort{Field: sortBy}
	if strings.HasPrefix(sortBy, "-") {
		s.Field = sortBy[1:]
		s.Desc = true
	}
	if _, ok := desc.Field(s.Field); !ok {
		return nil, InvalidQueryf("unknown sort field %q", s.Field)
	}
	return s, nil
}

// MatchRecord evaluates a query against a raw document (wire-name keyed).
// Document backends filter client-side with this; the relational backend
// translates the same query into SQL instead.
func MatchRecord(doc map[string]any, q *Query) bool {
	if q == nil {
		return true
	}
	for _, c := range q.Conditions {
		if !matchCondition(doc[c.Field], c) {
			return false
		}
	}
	return true
}

func matchCondition(have any, c Condition) bool {
	switch c.Op {
	case OpEq:
		cmp, ok := compareValues(have, c.Value)
		return ok && cmp == 0
	case OpNe:
		cmp, ok := compareValues(have, c.Value)
		return !ok || cmp != 0
	case OpGt:
		cmp, ok := compareValues(have, c.Value)
		return ok && cmp > 0
	case OpLt:
		cmp, ok := compareValues(have, c.Value)
		return ok && cmp < 0
	case OpGte:
		cmp, ok := compareValues(have, c.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compareValues(have, c.Value)
		return ok && cmp <= 0
	case OpLike:
		s, ok := have.(string)
		if !ok {
			return false
		}
		return strings.Contains(s, toString(c.Value))
	case OpIn:
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if cmp, ok := compareValues(have, item); ok && cmp == 0 {
				return true
			}
		}
		return false
	}
	return false
}

// Compare orders two scalars of possibly different wire types. Document
// backends sort fetched records with this.
func Compare(a, b any) (int, bool) {
	return compareValues(a, b)
}

// compareValues orders two scalars of possibly different wire types.
// Numbers compare numerically, strings and times lexically/chronologically;
// anything else only supports (in)equality through string formatting.
func compareValues(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if na, aok := toFloat(a); aok {
		nb, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}
	if ta, aok := toTime(a); aok {
		tb, bok := toTime(b)
		if !bok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}
	sa, sb := toString(a), toString(b)
	switch {
	case sa < sb:
		return -1, true
	case sa > sb:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format(time.RFC3339Nano)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
