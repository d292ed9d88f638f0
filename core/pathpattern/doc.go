// Package pathpattern compiles route patterns into matchers.
//
// It is the pattern compiler used by the dispatch package. A pattern is a
// string template, a raw *regexp.Regexp or any value implementing Matcher.
// Compiling produces a Matcher and the ordered list of named parameters the
// matcher captures.
//
// # Templates
//
// Templates use the same syntax as the foundation router:
//
//	/users/{id}               // id matches one path segment
//	/users/{id:[0-9]+}        // id restricted by a regular expression
//	/files/*                  // catch-all, exposed as "*"
//
// Templates are anchored at both ends. Matching is case-insensitive unless
// Options.CaseSensitive is set, and a single trailing slash is optional
// unless Options.Strict is set:
//
//	m, params, err := pathpattern.Compile("/shop/{id}", pathpattern.Options{})
//	if err != nil {
//		return err
//	}
//	values, ok := m.Match("/shop/42/")
//	// ok == true, params[0].Name == "id", values[params[0].Index] == "42"
//
// # Raw expressions
//
// A *regexp.Regexp is used unchanged. Its capture groups become parameters:
// named groups keep their names, unnamed groups are named by their
// zero-based position ("0", "1", ...).
package pathpattern
