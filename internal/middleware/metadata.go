package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Metadata is the `_metadata` envelope every internal API response carries:
// a fresh request id, the time the request was received, and the caller.
type Metadata struct {
	RequestID   uuid.UUID `json:"requestId"`
	RequestTime time.Time `json:"requestTime"`
	Actor       Actor     `json:"actor"`
}

// Actor identifies the caller of an API request.
type Actor struct {
	IP string `json:"ip,omitempty"`
}

type contextKey string

const metadataKey contextKey = "metadata"

// ResponseMetadata builds the response metadata for each request and
// stores it in the request context for handlers to embed in their
// envelopes.
func ResponseMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// RealIP middleware may have already stripped the port.
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		md := Metadata{
			RequestID:   uuid.New(),
			RequestTime: time.Now().UTC(),
			Actor:       Actor{IP: ip},
		}

		ctx := context.WithValue(r.Context(), metadataKey, md)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MetadataFromContext returns the metadata stored by ResponseMetadata.
// The zero value means the middleware did not run for this request.
func MetadataFromContext(ctx context.Context) Metadata {
	md, _ := ctx.Value(metadataKey).(Metadata)
	return md
}
