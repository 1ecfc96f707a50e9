// Package urlhttp parses and serializes URLs, HTTP request lines and
// header fields, and applies a path-based routing table that decides
// which headers a given request path is allowed to retain.
package urlhttp

import "github.com/cristidbr/aircore"

func malformedRequestError(op, msg string) *aircore.Error {
	return aircore.NewError(op, aircore.CodeMalformedRequest, msg)
}

func truncatedError(op string) *aircore.Error {
	return aircore.NewError(op, aircore.CodeTruncated, "input ends mid-parse")
}
