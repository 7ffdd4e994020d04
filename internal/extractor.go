package internal

// ExtractorSource reads one value from a request, reporting false when it
// is absent or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor returns the value of the first source that has one. CSRF uses
// it to accept the token from the form or a header.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) { return v, v != "" }

func presentErr(v string, err error) (string, bool) {
	if err != nil {
		return "", false
	}
	return present(v)
}

func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Header(name)) }
}

func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Query(name)) }
}

func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Param(name)) }
}

func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Form(name)) }
}

func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) { return presentErr(c.Cookie(name)) }
}

func FromCookieSigned(name string) ExtractorSource {
	return func(c Context) (string, bool) { return presentErr(c.CookieSigned(name)) }
}

func FromCookieEncrypted(name string) ExtractorSource {
	return func(c Context) (string, bool) { return presentErr(c.CookieEncrypted(name)) }
}
