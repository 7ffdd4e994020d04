package query

import "errors"

var (
	ErrInvalidField = errors.New("query: invalid field name")
	ErrInvalidOp    = errors.New("query: unknown operator")
	ErrInvalidExpr  = errors.New("query: malformed expression")
	ErrNoTable      = errors.New("query: table name is required")
	ErrNoValues     = errors.New("query: no values to write")
)
