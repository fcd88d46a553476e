package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolvePath reconstructs the upstream path for an inbound request. The
// catch-all segments are the primary source; when they are absent the raw
// request URL is parsed instead. Both forms yield the same decoded,
// slash-joined path, and an empty remainder resolves to "/".
func ResolvePath(prefix string, segments []string, rawURL string) (string, error) {
	if len(segments) > 0 {
		return "/" + strings.Join(segments, "/"), nil
	}
	return pathFromURL(prefix, rawURL)
}

// QueryString returns everything from the first '?' in rawURL, verbatim.
// It returns "" when there is no query.
func QueryString(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[i:]
	}
	return ""
}

// SplitSegments turns a router catch-all value such as "api/auth/signin"
// into decoded path segments. An empty value yields nil.
func SplitSegments(param string) ([]string, error) {
	if param == "" {
		return nil, nil
	}
	parts := strings.Split(param, "/")
	for i, p := range parts {
		decoded, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("decode path segment %q: %w", p, err)
		}
		parts[i] = decoded
	}
	return parts, nil
}

func pathFromURL(prefix, rawURL string) (string, error) {
	raw := rawURL
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse request url: %w", err)
		}
		raw = u.EscapedPath()
	}

	p, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode request path: %w", err)
	}

	prefix = strings.TrimRight(prefix, "/")
	switch {
	case prefix == "":
	case p == prefix:
		p = ""
	case strings.HasPrefix(p, prefix+"/"):
		p = p[len(prefix):]
	}

	if p == "" {
		return "/", nil
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, nil
}

// escapePath re-encodes a decoded path for use in an outbound URL.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
