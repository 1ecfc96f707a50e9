package urlhttp

import "strings"

// SchemeMask identifies which header whitelist a request path is parsed
// and generated under.
type SchemeMask uint8

const (
	HTTPReq SchemeMask = 1 << iota
	HTTPResp
	WSReq
	WSResp
)

type route struct {
	pattern string
	mask    SchemeMask
}

// Router is an ordered (path, SchemeMask) table consulted during
// ParseRequest to decide which headers a given request path retains.
// Routes must be registered with Add before the first parse; Router is
// not safe for concurrent Add/Scheme calls.
type Router struct {
	routes []route
}

// Add appends a route. Earlier routes take precedence over later ones
// with the same pattern.
func (r *Router) Add(pathPattern string, mask SchemeMask) {
	r.routes = append(r.routes, route{pattern: pathPattern, mask: mask})
}

// Scheme looks up the scheme mask for path, stripping a trailing
// "index.<ext>" path segment (together with its preceding slash) before
// matching. Matching is an exact whole-path string comparison against
// routes in registration order; the first match wins. HTTPReq is
// returned when nothing matches.
func (r *Router) Scheme(path string) SchemeMask {
	path = stripIndexSuffix(path)
	for _, rt := range r.routes {
		if rt.pattern == path {
			return rt.mask
		}
	}
	return HTTPReq
}

func stripIndexSuffix(path string) string {
	lastSlash := strings.LastIndexByte(path, '/')
	if lastSlash < 0 {
		return path
	}
	base := path[lastSlash+1:]
	if !strings.HasPrefix(base, "index.") {
		return path
	}
	if base == "index." {
		return path
	}
	stripped := path[:lastSlash]
	if stripped == "" {
		stripped = "/"
	}
	return stripped
}
