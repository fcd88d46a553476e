package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// forwardedHeaders is the only inbound header subset relayed upstream.
var forwardedHeaders = []string{"Content-Type", "Authorization"}

// Request describes one forwarded call. It is built at request entry and
// consumed once by Forward.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	// Body is nil when no body is forwarded. It is always nil for GET and HEAD.
	Body []byte
}

// NewRequest builds a forwarded request descriptor. Only Content-Type and
// Authorization survive from header. body may be a string, []byte,
// json.RawMessage, or any value that is serialized to JSON exactly once.
func NewRequest(method, path, query string, header http.Header, body any) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Header: filterHeaders(header),
	}
	if req.Path == "" {
		req.Path = "/"
	}

	if !allowsBody(method) {
		return req, nil
	}

	encoded, err := EncodeBody(body)
	if err != nil {
		return nil, err
	}
	if len(encoded) > 0 {
		req.Body = encoded
	}
	return req, nil
}

// URL returns the absolute upstream URL for the request.
func (r *Request) URL(origin string) string {
	return origin + escapePath(r.Path) + r.Query
}

// bodyReader returns the body as a reader, or nil when there is none.
func (r *Request) bodyReader() io.Reader {
	if r.Body == nil {
		return nil
	}
	return bytes.NewReader(r.Body)
}

// EncodeBody renders a body for forwarding. Text bodies pass through
// unchanged; structured values are marshalled to JSON.
func EncodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		return data, nil
	}
}

func allowsBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

func filterHeaders(in http.Header) http.Header {
	out := make(http.Header, len(forwardedHeaders))
	for _, name := range forwardedHeaders {
		if v := in.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	return out
}
