// Package routes implements the navigation protection policy. The decision
// is pure: it depends only on the path and token presence, never on profile
// data, so it can run before any view logic.
package routes

// Known paths.
const (
	PathHome     = "/"
	PathProjects = "/projects"
	PathLogin    = "/login"
	PathRegister = "/register"
)

// route classifies one path. A path is exactly one of protected or
// public-only; unlisted paths are implicitly allowed.
type route struct {
	path       string
	protected  bool
	publicOnly bool
}

var table = []route{
	{path: PathHome, protected: true},
	{path: PathProjects, protected: true},
	{path: PathLogin, publicOnly: true},
	{path: PathRegister, publicOnly: true},
}

// Decision is the outcome of a guard check.
type Decision struct {
	// Target is the redirect destination, or "" to allow the navigation.
	Target string
}

// Allowed reports whether the navigation may proceed as requested.
func (d Decision) Allowed() bool { return d.Target == "" }

// Decide maps (path, token presence) to allow or redirect. Protected paths
// without a token redirect to login; public-only paths with a token redirect
// home; everything else is allowed, including unknown paths (default-allow).
func Decide(path string, hasToken bool) Decision {
	for _, r := range table {
		if r.path != path {
			continue
		}
		if r.protected && !hasToken {
			return Decision{Target: PathLogin}
		}
		if r.publicOnly && hasToken {
			return Decision{Target: PathHome}
		}
		return Decision{}
	}
	return Decision{}
}
