package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// sessionKey is the row key for the single interactive session.
const sessionKey = "session"

// TokenRepository persists the bearer token in SQLite.
//
// Every process pointed at the same database file observes the same token,
// so a login in one terminal is visible to a watcher in another. It doubles
// as the gateway's token source.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Load returns the stored token.
// An empty string with no error means no token is stored.
func (r *TokenRepository) Load() (string, error) {
	var token string
	err := r.db.QueryRow("SELECT token FROM session_tokens WHERE key = ?", sessionKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session token: %w", err)
	}
	return token, nil
}

// Save upserts the token, stamping updated_at so watchers can detect churn.
func (r *TokenRepository) Save(token string) error {
	query := `
		INSERT INTO session_tokens (key, token, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, sessionKey, token); err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session_tokens WHERE key = ?", sessionKey); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// Token implements the gateway's token source.
// Storage errors are treated as "no token held": an outbound request without
// credentials fails loudly at the backend, which is the safer failure mode.
func (r *TokenRepository) Token() (string, bool) {
	token, err := r.Load()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
