package middlewares

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/ultralight/internal"
	"github.com/dmitrymomot/ultralight/pkg/form"
)

// MethodOverrideHeader is checked when the form carries no _method field.
const MethodOverrideHeader = "X-HTTP-Method-Override"

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes. A POST
// request whose _method field (or X-HTTP-Method-Override header) names one of
// those methods is routed as that method. It must be registered with
// WithMiddleware so it runs before route matching.
func MethodOverride() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost {
				return next(c)
			}

			m := req.Header.Get(MethodOverrideHeader)
			if m == "" {
				m = req.PostFormValue(form.MethodField)
			}
			switch m = strings.ToUpper(strings.TrimSpace(m)); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				req.Method = m
			}
			return next(c)
		}
	}
}
