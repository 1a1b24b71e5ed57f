package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProductNotFound reports an unknown product or material ID.
var ErrProductNotFound = errors.New("product not found")

// CycleError reports a BOM edge chain in which a product is (transitively)
// its own ancestor. Chain holds the product codes along the offending path,
// ending with the repeated product.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("BOM cycle detected: %s", strings.Join(e.Chain, " -> "))
}

// IsCycle reports whether err is (or wraps) a CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
