package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewDevProxy returns a transparent reverse proxy to upstream for local
// development, where clients call /api/* same-origin instead of going
// through the gateway prefix. The outbound Host is rewritten to the upstream.
func NewDevProxy(upstream string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute", upstream)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("Dev proxy error", "method", r.Method, "path", r.URL.Path, "error", err)
			http.Error(w, "Service unavailable", http.StatusBadGateway)
		},
	}, nil
}
