package urlhttp

import (
	"fmt"
	"strconv"
	"strings"
)

// Method is the HTTP request method. Anything other than GET or POST
// parses as MethodNone.
type Method byte

const (
	MethodNone Method = iota
	MethodGet
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "NONE"
	}
}

func parseMethod(token string) Method {
	switch strings.ToUpper(token) {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	default:
		return MethodNone
	}
}

// Request is a parsed or about-to-be-generated HTTP request.
type Request struct {
	Method        Method
	URL           *URL
	Headers       HeaderList
	ContentLength int
	Protocol      Protocol

	// KeepAlive steers Generate's default Connection header and HTTP
	// version selection (a Protocol of ProtoWS selects Connection:
	// Upgrade instead); ParseRequest never sets it.
	KeepAlive bool

	// ExplicitBody, when non-nil, overrides Generate's automatic
	// POST-query body entirely — the caller is responsible for any
	// matching Content-Type.
	ExplicitBody []byte
}

// ParseRequest parses a raw HTTP request head (and, when Content-Length
// indicates a form body, the body) per the routing table's header
// retention rules. On a malformed request line it still returns a
// request with Method set to MethodNone and an empty URL, alongside the
// error, so a caller can inspect whatever was recoverable.
func ParseRequest(raw string, router *Router) (*Request, error) {
	lineEnd := strings.Index(raw, "\r\n")
	if lineEnd < 0 {
		return &Request{Method: MethodNone, URL: &URL{}}, truncatedError("urlhttp.ParseRequest")
	}
	requestLine := raw[:lineEnd]
	rest := raw[lineEnd+2:]

	fields := strings.Fields(requestLine)
	if len(fields) < 2 {
		return &Request{Method: MethodNone, URL: &URL{}}, malformedRequestError("urlhttp.ParseRequest", "missing request target")
	}

	method := parseMethod(fields[0])
	u, err := Parse(fields[1])
	if err != nil {
		return &Request{Method: MethodNone, URL: &URL{}}, malformedRequestError("urlhttp.ParseRequest", "unparseable request target")
	}

	scheme := HTTPReq
	if router != nil {
		scheme = router.Scheme(u.Path)
	}

	headers, bodyStart, err := parseHeaderBlock(rest, scheme)
	if err != nil {
		return &Request{Method: method, URL: u, Headers: headers}, err
	}

	req := &Request{Method: method, URL: u, Headers: headers}

	if cl, ok := headers.Get("Content-Length"); ok {
		if n, convErr := strconv.Atoi(cl); convErr == nil {
			req.ContentLength = n
		}
	}
	if host, ok := headers.Get("Host"); ok {
		u.Hostname = host
		u.HasIP = false
	}

	if req.ContentLength > 0 {
		body := rest[bodyStart:]
		if len(body) < req.ContentLength {
			return req, truncatedError("urlhttp.ParseRequest")
		}
		bodyQuery, qErr := ParseQuery(body[:req.ContentLength])
		if qErr == nil {
			for _, p := range bodyQuery {
				u.Query.Add(p.Name, p.Value)
			}
		}
	}

	req.Protocol = ProtoHTTP
	if scheme&WSReq != 0 {
		if _, ok := headers.Get("Sec-WebSocket-Key"); ok {
			req.Protocol = ProtoWS
		}
	}
	u.Protocol = req.Protocol

	return req, nil
}

func isRetainedHeader(name string, scheme SchemeMask) bool {
	if strings.EqualFold(name, "Host") || strings.EqualFold(name, "Content-Length") {
		return true
	}
	if scheme&WSReq != 0 {
		switch {
		case strings.EqualFold(name, "Upgrade"),
			strings.EqualFold(name, "Sec-WebSocket-Key"),
			strings.EqualFold(name, "Sec-WebSocket-Version"):
			return true
		}
	}
	if scheme&WSResp != 0 {
		switch {
		case strings.EqualFold(name, "Upgrade"),
			strings.EqualFold(name, "Sec-WebSocket-Accept"):
			return true
		}
	}
	return false
}

// parseHeaderBlock reads header lines from s until a blank line,
// returning the retained headers and the byte offset in s where the
// body (if any) begins.
func parseHeaderBlock(s string, scheme SchemeMask) (HeaderList, int, error) {
	var headers HeaderList
	lastRetainedIdx := -1
	pos := 0

	for {
		idx := strings.Index(s[pos:], "\r\n")
		if idx < 0 {
			return headers, pos, truncatedError("urlhttp.parseHeaderBlock")
		}
		line := s[pos : pos+idx]
		lineEnd := pos + idx + 2

		if line == "" {
			return headers, lineEnd, nil
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastRetainedIdx >= 0 {
				headers[lastRetainedIdx].Value += " " + strings.TrimSpace(line)
			}
			pos = lineEnd
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			lastRetainedIdx = -1
			pos = lineEnd
			continue
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if isRetainedHeader(name, scheme) {
			headers.Add(name, value)
			lastRetainedIdx = len(headers) - 1
		} else {
			lastRetainedIdx = -1
		}
		pos = lineEnd
	}
}

// Generate renders r as a textual HTTP request: the method line, default
// headers not already present in r.Headers, the user headers, and a
// body. A POST with a non-empty URL query auto-generates a
// form-urlencoded body and Content-Length unless ExplicitBody is set, in
// which case ExplicitBody is used verbatim.
func (r *Request) Generate() []byte {
	out := make(HeaderList, 0, len(r.Headers)+4)

	connection := "close"
	if r.Protocol == ProtoWS {
		connection = "Upgrade"
	} else if r.KeepAlive {
		connection = "keep-alive"
	}
	if v, ok := r.Headers.Get("Connection"); ok {
		connection = v
	}

	version := "HTTP/1.0"
	if strings.EqualFold(connection, "keep-alive") || strings.EqualFold(connection, "Upgrade") || r.Protocol == ProtoWS {
		version = "HTTP/1.1"
	}

	if !r.Headers.Has("Host") {
		out.Add("Host", hostOnly(r.URL))
	}
	if !r.Headers.Has("Connection") {
		out.Add("Connection", connection)
	}
	if !r.Headers.Has("User-Agent") {
		out.Add("User-Agent", "aircore/1.0")
	}
	if !r.Headers.Has("Accept") {
		out.Add("Accept", "*/*")
	}
	for _, h := range r.Headers {
		out.Add(h.Name, h.Value)
	}

	var body []byte
	switch {
	case r.ExplicitBody != nil:
		body = r.ExplicitBody
	case r.Method == MethodPost && len(r.URL.Query) > 0:
		body = []byte(r.URL.Query.Encode())
		if !out.Has("Content-Type") {
			out.Add("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if body != nil && !out.Has("Content-Length") {
		out.Add("Content-Length", strconv.Itoa(len(body)))
	}

	target := r.URL.Path
	if target == "" {
		target = "/"
	}
	if r.Method == MethodGet && len(r.URL.Query) > 0 {
		target += "?" + r.URL.Query.Encode()
	}

	var b strings.Builder
	b.WriteString(r.Method.String())
	b.WriteByte(' ')
	b.WriteString(target)
	b.WriteByte(' ')
	b.WriteString(version)
	b.WriteString("\r\n")
	b.WriteString(out.Output())
	b.WriteString("\r\n")

	result := []byte(b.String())
	if body != nil {
		result = append(result, body...)
	}
	return result
}

func hostOnly(u *URL) string {
	var b strings.Builder
	if u.HasIP {
		fmt.Fprintf(&b, "%d.%d.%d.%d", u.HostIP[0], u.HostIP[1], u.HostIP[2], u.HostIP[3])
	} else {
		b.WriteString(u.Hostname)
	}
	if u.Port != 0 {
		fmt.Fprintf(&b, ":%d", u.Port)
	}
	return b.String()
}
