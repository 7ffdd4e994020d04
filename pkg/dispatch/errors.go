package dispatch

import "errors"

var (
	ErrNoController      = errors.New("dispatch: no controller for path")
	ErrNoAction          = errors.New("dispatch: controller has no such action")
	ErrMethodNotAllowed  = errors.New("dispatch: method not allowed")
	ErrUnknownController = errors.New("dispatch: route points at unregistered controller")
	ErrInvalidRoute      = errors.New("dispatch: invalid route")
	ErrInvalidAction     = errors.New("dispatch: invalid action key")
)
