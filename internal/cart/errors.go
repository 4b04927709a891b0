package cart

import (
	"errors"
	"fmt"
)

var ErrLineNotFound = errors.New("cart line not found")

// CapacityError is returned when a requested quantity exceeds the stock
// ceiling captured when the line was added. The ceiling is advisory, not a
// lock: the backend can still reject at submission time.
type CapacityError struct {
	Stock int
	Unit  string
}

func (e *CapacityError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("only %d %s available", e.Stock, e.Unit)
	}
	return fmt.Sprintf("only %d available", e.Stock)
}

// IsCapacity reports whether err is a stock ceiling rejection.
func IsCapacity(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
