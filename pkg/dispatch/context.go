package dispatch

import "github.com/dmitrymomot/ultralight"

type matchKey struct{}

// CurrentMatch returns the match that routed the request to this action.
func CurrentMatch(c ultralight.Context) (Match, bool) {
	m, ok := c.Get(matchKey{}).(Match)
	return m, ok
}

// Args returns the positional arguments of the current action: the path
// segments after the action name, or the pattern parameters of an explicit
// route in pattern order.
func Args(c ultralight.Context) []string {
	m, _ := CurrentMatch(c)
	return m.Args
}

// Arg returns the i-th argument, or "" when there are fewer arguments.
func Arg(c ultralight.Context, i int) string {
	args := Args(c)
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i]
}
