package color

import "errors"

var ErrInvalidColor = errors.New("color: invalid color")
