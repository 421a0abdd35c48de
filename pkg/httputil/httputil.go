// Package httputil holds the JSON request/response helpers shared by the
// handler and middleware packages.
package httputil

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"vx-landing/pkg/errors"
)

// DefaultMaxBodyBytes caps JSON request bodies when no explicit limit is given
const DefaultMaxBodyBytes int64 = 1 << 20

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes the {ok:false, error} envelope for appErr
func WriteError(w http.ResponseWriter, appErr *errors.AppError) error {
	return WriteJSON(w, appErr.StatusCode, errors.ErrorResponse{OK: false, Error: appErr.Message})
}

// DecodeJSON reads at most maxBytes of the request body into dst. Oversized
// bodies map to a 413 AppError and malformed JSON to a 400 AppError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) *errors.AppError {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewPayloadTooLargeError(err)
		}
		return errors.NewMalformedBodyError(err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.NewMalformedBodyError(err)
	}
	return nil
}

type clientIPKey struct{}

// WithClientIP stores the resolved caller address on ctx
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the caller address resolved by the client IP middleware,
// or the socket address when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

// ResolveClientIP picks the caller address behind trustedHops reverse
// proxies. Each trusted proxy appends the address it received the request
// from to X-Forwarded-For, so the client is the entry trustedHops from the
// right. Entries further left are supplied by the client and ignored.
func ResolveClientIP(r *http.Request, trustedHops int) string {
	if trustedHops <= 0 {
		return remoteHost(r)
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, entry := range strings.Split(header, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				hops = append(hops, entry)
			}
		}
	}
	if len(hops) == 0 {
		return remoteHost(r)
	}

	i := len(hops) - trustedHops
	if i < 0 {
		i = 0
	}
	if net.ParseIP(hops[i]) == nil {
		return remoteHost(r)
	}
	return hops[i]
}

func remoteHost(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
