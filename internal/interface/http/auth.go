package http

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/pulsepath/social-feed-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRODUCER AUTHENTICATION
// The ingest endpoint is for trusted upstream producers only. Producers send
// their ID and plaintext key; the server compares against a stored bcrypt
// hash. Viewer endpoints stay unauthenticated.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// HeaderProducerID carries the producer's key identifier.
	HeaderProducerID = "X-Producer-ID"

	// HeaderProducerKey carries the producer's plaintext key.
	HeaderProducerKey = "X-Producer-Key"
)

// KeyHashLookup resolves a producer ID to its stored bcrypt hash.
// Implementations return an error for unknown or disabled producers.
type KeyHashLookup interface {
	GetKeyHash(ctx context.Context, id string) (string, error)
}

// StaticKeys is a KeyHashLookup backed by a fixed map of producer ID to
// bcrypt hash, loaded from configuration.
type StaticKeys map[string]string

// GetKeyHash implements KeyHashLookup.
func (k StaticKeys) GetKeyHash(_ context.Context, id string) (string, error) {
	hash, ok := k[id]
	if !ok {
		return "", ErrUnknownProducer
	}
	return hash, nil
}

// ErrUnknownProducer indicates a producer ID with no stored key.
var ErrUnknownProducer = errUnknownProducer{}

type errUnknownProducer struct{}

func (errUnknownProducer) Error() string { return "http: unknown producer" }

// ProducerAuth verifies producer credentials on the ingest endpoint.
type ProducerAuth struct {
	keys KeyHashLookup
}

// NewProducerAuth creates a ProducerAuth backed by the given lookup.
func NewProducerAuth(keys KeyHashLookup) *ProducerAuth {
	return &ProducerAuth{keys: keys}
}

// Verify checks the producer's credentials. The bcrypt comparison makes a
// stored-hash leak useless on its own; plaintext keys never touch disk.
func (a *ProducerAuth) Verify(ctx context.Context, producerID, key string) bool {
	if producerID == "" || key == "" {
		return false
	}

	hash, err := a.keys.GetKeyHash(ctx, producerID)
	if err != nil {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// requireProducer guards a handler with producer authentication. When no
// ProducerAuth is configured the guard is a pass-through (development mode).
func (s *Server) requireProducer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.ProducerAuth == nil {
			next(w, r)
			return
		}

		producerID := r.Header.Get(HeaderProducerID)
		key := r.Header.Get(HeaderProducerKey)

		if !s.deps.ProducerAuth.Verify(r.Context(), producerID, key) {
			s.logger.Warn("producer authentication failed",
				logger.String("producer_id", producerID),
				logger.String("ip", getClientIP(r)),
			)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid producer credentials")
			return
		}

		next(w, r)
	}
}
