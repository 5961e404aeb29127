package postgres

import (
	"context"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRODUCER KEY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ProducerKey identifies an event producer allowed to publish into the feed.
// KeyHash is a bcrypt hash; the plaintext key is never stored.
type ProducerKey struct {
	ID        string
	Name      string
	KeyHash   string
	Disabled  bool
	CreatedAt time.Time
}

// ProducerKeyRepository manages producer API keys in PostgreSQL.
type ProducerKeyRepository struct {
	conn *Connection
}

// NewProducerKeyRepository creates a new ProducerKeyRepository.
func NewProducerKeyRepository(conn *Connection) *ProducerKeyRepository {
	return &ProducerKeyRepository{conn: conn}
}

// Create inserts a producer key.
func (r *ProducerKeyRepository) Create(ctx context.Context, key *ProducerKey) error {
	query := `
		INSERT INTO producer_keys (id, name, key_hash, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	createdAt := key.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.conn.Exec(ctx, query,
		key.ID, key.Name, key.KeyHash, key.Disabled, createdAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("producer key %q already exists", key.ID)
		}
		return fmt.Errorf("failed to create producer key: %w", err)
	}

	return nil
}

// GetKeyHash returns the bcrypt hash for an active producer key.
// Returns ErrNoRows when the key is unknown or disabled.
func (r *ProducerKeyRepository) GetKeyHash(ctx context.Context, id string) (string, error) {
	query := `
		SELECT key_hash FROM producer_keys
		WHERE id = $1 AND disabled = FALSE
	`

	var hash string
	if err := r.conn.QueryRow(ctx, query, id).Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

// Disable deactivates a producer key. Unknown IDs are a no-op.
func (r *ProducerKeyRepository) Disable(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx,
		"UPDATE producer_keys SET disabled = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to disable producer key: %w", err)
	}
	return nil
}
