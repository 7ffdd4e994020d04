package model

import "errors"

var (
	ErrNotStruct       = errors.New("model: value is not a struct")
	ErrNotFound        = errors.New("model: record not found")
	ErrNoRowsAffected  = errors.New("model: no rows affected")
	ErrNoPrimaryKey    = errors.New("model: model has no primary key")
	ErrZeroPrimaryKey  = errors.New("model: primary key is not set")
	ErrMultiplePK      = errors.New("model: more than one primary key")
	ErrDuplicateColumn = errors.New("model: duplicate column")
	ErrUnsupportedType = errors.New("model: unsupported field type")
	ErrInvalidTag      = errors.New("model: invalid model tag")
	ErrUnknownColumn   = errors.New("model: unknown column")
	ErrInvalidValue    = errors.New("model: invalid value for column")
	ErrUnknownDialect  = errors.New("model: unknown sql dialect")
	ErrMigrate         = errors.New("model: failed to migrate table")
)
