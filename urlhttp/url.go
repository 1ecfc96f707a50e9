package urlhttp

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol identifies a URL's scheme.
type Protocol byte

const (
	ProtoNone Protocol = iota
	ProtoHTTP
	ProtoHTTPS
	ProtoWS
	ProtoWSS
)

func (p Protocol) String() string {
	switch p {
	case ProtoHTTP:
		return "http"
	case ProtoHTTPS:
		return "https"
	case ProtoWS:
		return "ws"
	case ProtoWSS:
		return "wss"
	default:
		return ""
	}
}

func parseProtocol(token string) (Protocol, bool) {
	switch strings.ToLower(token) {
	case "http":
		return ProtoHTTP, true
	case "https":
		return ProtoHTTPS, true
	case "ws":
		return ProtoWS, true
	case "wss":
		return ProtoWSS, true
	default:
		return ProtoNone, false
	}
}

// URL is the parsed form of a URL as accepted by Parse. Hostname and
// HostIP are mutually exclusive: a dotted-quad host is stored as HostIP
// with Hostname left empty, everything else is stored as Hostname.
type URL struct {
	Protocol Protocol
	Hostname string
	HostIP   [4]byte
	HasIP    bool
	Port     int
	Path     string
	Query    Query
}

// Parse accepts `[//][scheme://][user@]host[:port][/path][?query][#fragment]`.
// The fragment, if any, is stripped and not stored. A dotted-quad
// hostname is recognized and stored as HostIP instead of Hostname.
func Parse(raw string) (*URL, error) {
	s := raw
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		s = s[:idx]
	}

	u := &URL{}

	if idx := strings.Index(s, "://"); idx >= 0 {
		if proto, ok := parseProtocol(s[:idx]); ok {
			u.Protocol = proto
			s = s[idx+3:]
		}
	} else if strings.HasPrefix(s, "//") {
		s = s[2:]
	}

	if at := strings.IndexByte(s, '@'); at >= 0 {
		if slash := strings.IndexByte(s, '/'); slash == -1 || at < slash {
			s = s[at+1:]
		}
	}

	hostport := s
	rest := ""
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		hostport = s[:idx]
		rest = s[idx:]
	}

	path := rest
	queryStr := ""
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		path = rest[:idx]
		queryStr = rest[idx+1:]
	}
	u.Path = path

	host := hostport
	if idx := strings.LastIndexByte(hostport, ':'); idx >= 0 {
		if port, err := strconv.Atoi(hostport[idx+1:]); err == nil {
			u.Port = port
			host = hostport[:idx]
		}
	}
	if ip, ok := parseDottedQuad(host); ok {
		u.HostIP = ip
		u.HasIP = true
	} else {
		u.Hostname = host
	}

	q, err := ParseQuery(queryStr)
	if err != nil {
		return nil, err
	}
	u.Query = q

	return u, nil
}

func parseDottedQuad(host string) ([4]byte, bool) {
	var ip [4]byte
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return ip, false
	}
	for i, p := range parts {
		if p == "" {
			return ip, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return ip, false
		}
		ip[i] = byte(n)
	}
	return ip, true
}

// String serializes the URL back to text. Port is emitted only when
// showPort is true and Port is non-zero.
func (u *URL) String(showPort bool) string {
	var b strings.Builder
	if u.Protocol != ProtoNone {
		b.WriteString(u.Protocol.String())
		b.WriteString("://")
	}
	if u.HasIP {
		fmt.Fprintf(&b, "%d.%d.%d.%d", u.HostIP[0], u.HostIP[1], u.HostIP[2], u.HostIP[3])
	} else if u.Hostname != "" {
		b.WriteString(u.Hostname)
	}
	if showPort && u.Port != 0 {
		fmt.Fprintf(&b, ":%d", u.Port)
	}
	b.WriteString(u.Path)
	if len(u.Query) > 0 {
		b.WriteByte('?')
		b.WriteString(u.Query.Encode())
	}
	return b.String()
}
