package pred

import "fmt"

// Operator is a comparison operator of a value or join predicate.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpIn  Operator = "in"
)

var operatorSymbols = map[Operator]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
	OpIn:  "IN",
}

// Symbol returns the SQL spelling of the operator.
func (op Operator) Symbol() string {
	return operatorSymbols[op]
}

// ParseOperator accepts an operator name ("eq") or its symbol ("=").
func ParseOperator(s string) (Operator, error) {
	if _, ok := operatorSymbols[Operator(s)]; ok {
		return Operator(s), nil
	}
	for op, sym := range operatorSymbols {
		if sym == s || (op == OpNe && s == "!=") {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Logical combines child predicates.
type Logical string

const (
	And Logical = "and"
	Or  Logical = "or"
)

// ParseLogical accepts "and" or "or".
func ParseLogical(s string) (Logical, error) {
	switch Logical(s) {
	case And, Or:
		return Logical(s), nil
	default:
		return "", fmt.Errorf("unknown logical operator %q", s)
	}
}
