package pathpattern

import "strings"

type segmentTyp uint8

const (
	segStatic   segmentTyp = iota // /home
	segRegexp                     // /{id:[0-9]+}
	segParam                      // /{user}
	segCatchAll                   // /api/v1/*
)

// segment describes the next dynamic part of a template. Everything in
// front of start is static text.
type segment struct {
	typ    segmentTyp
	key    string
	rexpat string
	start  int
	end    int
}

// nextSegment returns the next segment details from a template.
func nextSegment(pattern string) (segment, error) {
	ps := strings.Index(pattern, "{")
	ws := strings.Index(pattern, "*")

	if ps < 0 && ws < 0 {
		return segment{typ: segStatic, start: len(pattern), end: len(pattern)}, nil
	}

	if ps >= 0 && ws >= 0 && ws < ps {
		return segment{}, ErrWildcardPosition
	}

	if ps >= 0 {
		// Read to closing } taking into account opens and closes in curl count (cc)
		cc := 0
		pe := ps
		for i, c := range pattern[ps:] {
			if c == '{' {
				cc++
			} else if c == '}' {
				cc--
				if cc == 0 {
					pe = ps + i
					break
				}
			}
		}
		if pe == ps {
			return segment{}, ErrParamDelimiter
		}

		key := pattern[ps+1 : pe]
		pe++

		key, rexpat, isRegexp := strings.Cut(key, ":")
		if key == "" {
			return segment{}, ErrEmptyParamName
		}

		typ := segParam
		if isRegexp && rexpat != "" {
			typ = segRegexp
			rexpat = strings.TrimPrefix(rexpat, "^")
			rexpat = strings.TrimSuffix(rexpat, "$")
		}

		return segment{typ: typ, key: key, rexpat: rexpat, start: ps, end: pe}, nil
	}

	// Wildcard pattern as finale
	if ws < len(pattern)-1 {
		return segment{}, ErrWildcardPosition
	}
	return segment{typ: segCatchAll, key: "*", start: ws, end: len(pattern)}, nil
}
