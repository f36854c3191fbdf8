package filter

import "fmt"

// MaxConditions bounds the number of conjunctive conditions in one expression.
const MaxConditions = 16

// Expression is a conjunction of numeric conditions. A condition on a
// multi-valued field holds when any of the field's values satisfies it.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition restricts one indexed field to a numeric range.
type Condition struct {
	key       string
	rangeExpr Range
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: r}, nil
}

// NewEqual creates an exact-match condition on a numeric id field.
func NewEqual(key string, v int) (Condition, error) {
	f := float64(v)
	r, err := NewRangeFilter(nil, &f, nil, &f)
	if err != nil {
		return Condition{}, err
	}
	return NewRange(key, r)
}

// Key returns the field alias.
func (c Condition) Key() string { return c.key }

// Range returns the numeric range expression.
func (c Condition) Range() Range { return c.rangeExpr }

// Holds reports whether any of values satisfies the condition.
func (c Condition) Holds(values ...float64) bool {
	for _, v := range values {
		if c.rangeExpr.Contains(v) {
			return true
		}
	}
	return false
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && v <= *r.gt:
		return false
	case r.gte != nil && v < *r.gte:
		return false
	case r.lt != nil && v >= *r.lt:
		return false
	case r.lte != nil && v > *r.lte:
		return false
	}
	return true
}
