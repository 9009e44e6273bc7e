package query

import (
	"fmt"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
)

// bindCount binds a limit or skip operand. The value must be a
// non-negative integer.
func bindCount(name string, operand pred.Operand, values []ir.Value) (pred.Operand, error) {
	bound, err := operand.Bind(values)
	if err != nil {
		return operand, fmt.Errorf("bind %s: %w", name, err)
	}
	if err := checkCount(name, bound); err != nil {
		return operand, err
	}
	return bound, nil
}

func checkCount(name string, operand pred.Operand) error {
	v, ok := operand.Value()
	if !ok {
		return nil
	}
	n, isInt := v.(ir.Int)
	if !isInt || n < 0 {
		return fmt.Errorf("bind %s: %w: want non-negative int, got %s", name, pred.ErrBindKind, ir.Kind(v))
	}
	return nil
}

func cloneOperand(o *pred.Operand) *pred.Operand {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}
