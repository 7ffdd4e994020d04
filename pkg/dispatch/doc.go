// Package dispatch routes requests to controller actions by path convention.
//
// A controller is any type returning a map of named actions:
//
//	type Articles struct{ Repo *model.Repository[Article] }
//
//	func (a *Articles) Actions() map[string]ultralight.HandlerFunc {
//	    return map[string]ultralight.HandlerFunc{
//	        "index":       a.list,
//	        "show":        a.show,
//	        "POST save":   a.save,
//	        "GET|POST edit": a.edit,
//	    }
//	}
//
// Registered at /articles, the dispatcher resolves:
//
//	/articles              -> index
//	/articles/show/42      -> show, Args = ["42"]
//	/articles/2024/go      -> index, Args = ["2024", "go"]
//	/articles/admin/list   -> the /articles/admin controller if registered
//
// The longest registered controller path wins and "/" catches everything
// else. Action names are case-insensitive and "-" maps to "_".
//
// # Route tables
//
// Explicit routes use chi patterns and take precedence over prefix lookup.
// They are usually kept in YAML:
//
//	routes:
//	  - pattern: /blog/{year}/{slug}
//	    controller: /articles
//	    action: show
//
//	routes, err := dispatch.LoadRoutesFile(assets, "routes.yaml")
//	d := dispatch.New(dispatch.WithRoutes(routes...), dispatch.WithControllers(articles))
//	app := ultralight.New(ultralight.WithHandlers(d))
//
// Inside an action, Args, Arg and CurrentMatch expose what was matched.
// Unresolved paths become 404 responses and disallowed methods 405.
package dispatch
