package urlhttp

import (
	"strings"
)

// QueryParam is one name/value pair in a Query.
type QueryParam struct {
	Name  string
	Value string
}

// Query is an ordered list of query parameters, unique case-insensitively
// by name. Add keeps the first value seen for a given name rather than
// the C source's overwrite-in-place behavior, matching this port's
// policy for query parameters (see DESIGN.md).
type Query []QueryParam

// Add appends name/value unless name is already present (case-insensitive
// match), in which case the existing entry is left untouched.
func (q *Query) Add(name, value string) {
	for _, p := range *q {
		if strings.EqualFold(p.Name, name) {
			return
		}
	}
	*q = append(*q, QueryParam{Name: name, Value: value})
}

// Get returns the value for the first entry matching name
// case-insensitively, and whether it was found.
func (q Query) Get(name string) (string, bool) {
	for _, p := range q {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the query string form: name=value pairs joined by '&',
// percent-encoded per the unreserved set [A-Za-z0-9_.~-], space as '+'.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncode(p.Name))
		b.WriteByte('=')
		b.WriteString(percentEncode(p.Value))
	}
	return b.String()
}

// ParseQuery splits a query string on '&' and '=', percent-decoding each
// name and value, with first-add-wins on duplicate names. A token whose
// decoded name or value is empty is discarded rather than added.
func ParseQuery(s string) (Query, error) {
	var q Query
	if s == "" {
		return q, nil
	}
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		name := pair
		value := ""
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			name = pair[:idx]
			value = pair[idx+1:]
		}
		decodedName, err := percentDecode(name)
		if err != nil {
			return nil, malformedRequestError("urlhttp.ParseQuery", "bad percent-encoding in query name")
		}
		decodedValue, err := percentDecode(value)
		if err != nil {
			return nil, malformedRequestError("urlhttp.ParseQuery", "bad percent-encoding in query value")
		}
		if decodedName == "" || decodedValue == "" {
			continue
		}
		q.Add(decodedName, decodedValue)
	}
	return q, nil
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '~':
		return true
	}
	return false
}

func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c):
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigit(c >> 4))
			b.WriteByte(hexDigit(c & 0x0F))
		}
	}
	return b.String()
}

func hexDigit(n byte) byte {
	switch {
	case n < 10:
		return '0' + n
	default:
		return 'A' + (n - 10)
	}
}

func percentDecode(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 >= len(s) {
				return "", truncatedError("urlhttp.percentDecode")
			}
			hi, ok1 := hexValue(s[i+1])
			lo, ok2 := hexValue(s[i+2])
			if !ok1 || !ok2 {
				return "", malformedRequestError("urlhttp.percentDecode", "invalid percent escape")
			}
			b.WriteByte(hi<<4 | lo)
			i += 2
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
