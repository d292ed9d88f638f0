package pathpattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Options controls how templates are turned into matchers.
type Options struct {
	// CaseSensitive disables the (?i) flag on compiled templates.
	CaseSensitive bool
	// Strict requires the trailing slash of the candidate path to match the
	// template exactly. Without it a single trailing slash is optional.
	Strict bool
}

// Param describes a named capture produced by a compiled pattern.
type Param struct {
	// Name is the parameter key, "*" for a catch-all and the group index
	// for unnamed groups of raw regular expressions.
	Name string
	// Index is the position of the capture in the slice returned by Match.
	Index int
}

// Matcher tests a candidate path and reports its captured values in group order.
type Matcher interface {
	Match(path string) ([]string, bool)
}

// Compiler turns a pattern into a matcher and its ordered parameter list.
// Compile is the default implementation.
type Compiler func(pattern any, opts Options) (Matcher, []Param, error)

// Compile accepts a string template, a *regexp.Regexp or a ready Matcher.
//
// Template syntax:
//
//	/users              static text
//	/users/{id}         one path segment captured as "id"
//	/users/{id:[0-9]+}  capture restricted by a regular expression
//	/files/*            catch-all, captured as "*"; must be last
//
// Raw regular expressions are used as given. Their capture groups become
// parameters named after the group name, or after the zero-based group
// index when the group is unnamed. A Matcher is passed through with no
// parameters.
func Compile(pattern any, opts Options) (Matcher, []Param, error) {
	switch p := pattern.(type) {
	case string:
		return compileTemplate(p, opts)
	case *regexp.Regexp:
		if p == nil {
			return nil, nil, ErrNilPattern
		}
		return compileRegexp(p)
	case Matcher:
		return p, nil, nil
	case nil:
		return nil, nil, ErrNilPattern
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrUnsupportedPattern, pattern)
	}
}

// MatchAll returns a matcher that accepts every path and captures nothing.
func MatchAll() Matcher {
	return matchAll
}

var matchAll = &regexpMatcher{re: regexp.MustCompile(`.*`)}

// regexpMatcher is the Matcher produced for templates and raw expressions.
type regexpMatcher struct {
	re *regexp.Regexp
}

// Match implements Matcher.
func (m *regexpMatcher) Match(path string) ([]string, bool) {
	sm := m.re.FindStringSubmatch(path)
	if sm == nil {
		return nil, false
	}
	return sm[1:], true
}

// String returns the underlying regular expression.
func (m *regexpMatcher) String() string {
	return m.re.String()
}

func compileRegexp(re *regexp.Regexp) (Matcher, []Param, error) {
	names := re.SubexpNames()
	params := make([]Param, 0, re.NumSubexp())
	for i := 1; i < len(names); i++ {
		name := names[i]
		if name == "" {
			name = strconv.Itoa(i - 1)
		}
		params = append(params, Param{Name: name, Index: i - 1})
	}
	return &regexpMatcher{re: re}, params, nil
}

func compileTemplate(pattern string, opts Options) (Matcher, []Param, error) {
	var (
		b      strings.Builder
		params []Param
		group  int
	)

	pat := pattern
	for len(pat) > 0 {
		seg, err := nextSegment(pat)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: '%s'", err, pattern)
		}

		b.WriteString(regexp.QuoteMeta(pat[:seg.start]))

		if seg.typ == segStatic {
			pat = pat[seg.end:]
			continue
		}

		for _, p := range params {
			if p.Name == seg.key {
				return nil, nil, fmt.Errorf("%w: '%s' has duplicate key '%s'", ErrDuplicateParam, pattern, seg.key)
			}
		}
		params = append(params, Param{Name: seg.key, Index: group})
		group++

		switch seg.typ {
		case segParam:
			b.WriteString(`([^/]+)`)
		case segRegexp:
			rex, err := regexp.Compile(seg.rexpat)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: '%s' in '%s': %v", ErrInvalidRegexp, seg.rexpat, pattern, err)
			}
			b.WriteString("(" + seg.rexpat + ")")
			// Inner groups of a custom expression shift the following captures.
			group += rex.NumSubexp()
		case segCatchAll:
			b.WriteString(`(.*)`)
		}

		pat = pat[seg.end:]
	}

	body := b.String()
	if !opts.Strict {
		body = strings.TrimSuffix(body, "/") + "/?"
	}

	expr := "^" + body + "$"
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: '%s': %v", ErrInvalidRegexp, pattern, err)
	}

	return &regexpMatcher{re: re}, params, nil
}
