package severity

import (
	"fmt"
	"strconv"
	"strings"
)

// Mask is the set of error codes that are reported.
type Mask = Code

// Allows returns true if at least one bit of code is enabled in the mask.
func (c Code) Allows(code Code) bool {
	return c&code != 0
}

// ParseMask builds a mask from a list of expressions.
// Each expression is a flag name (eg. "E_WARNING") or a number (decimal, or hex with a "0x" prefix).
// Expressions prefixed with "~" remove the bits from the mask, and are applied in order.
// An empty list returns E_ALL.
func ParseMask(exprs []string) (Mask, error) {
	if len(exprs) == 0 {
		return E_ALL, nil
	}

	var mask Mask
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		remove := strings.HasPrefix(expr, "~")
		if remove {
			expr = strings.TrimSpace(expr[1:])
		}

		code, err := parseCode(expr)
		if err != nil {
			return 0, err
		}

		if remove {
			mask &^= code
		} else {
			mask |= code
		}
	}

	return mask, nil
}

// ParseCode parses a single code, either as a flag name or a number.
func ParseCode(expr string) (Code, error) {
	return parseCode(strings.TrimSpace(expr))
}

func parseCode(expr string) (Code, error) {
	if expr == "" {
		return 0, fmt.Errorf("empty error code")
	}

	code, ok := Lookup(expr)
	if ok {
		return code, nil
	}

	n, err := strconv.ParseUint(expr, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid error code '%s'", expr)
	}
	return Code(n), nil
}
