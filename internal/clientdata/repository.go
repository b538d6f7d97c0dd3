// Package clientdata provides persistent caching for upstream API responses.
// Payloads are stored as msgpack blobs with fetch and expiration timestamps
// for cache-first behavior with a stale fallback.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Namespaces lists every namespace stored in client_data
var Namespaces = []string{
	NamespaceCalendar,
}

const (
	// NamespaceCalendar holds economic calendar feeds keyed by feed URL
	NamespaceCalendar = "calendar"
)

var validNamespaces = func() map[string]bool {
	m := make(map[string]bool, len(Namespaces))
	for _, ns := range Namespaces {
		m[ns] = true
	}
	return m
}()

// Entry is a cached payload with its timestamps
type Entry struct {
	FetchedAt time.Time
	ExpiresAt time.Time
	payload   []byte
}

// Fresh reports whether the entry has not expired at now
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Decode unpacks the payload into out
func (e *Entry) Decode(out interface{}) error {
	if err := msgpack.Unmarshal(e.payload, out); err != nil {
		return fmt.Errorf("failed to decode cached payload: %w", err)
	}
	return nil
}

// Repository provides cache operations on the client_data table
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new client data repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func validateNamespace(ns string) error {
	if !validNamespaces[ns] {
		return fmt.Errorf("invalid cache namespace: %s", ns)
	}
	return nil
}

// Store saves data with expiration = now + ttl, replacing any previous entry
func (r *Repository) Store(namespace, key string, data interface{}, ttl time.Duration) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	payload, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	now := r.now()
	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO client_data (namespace, key, payload, fetched_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		namespace, key, payload, now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Get returns the entry regardless of expiration, or nil when absent.
// Use it as the fallback when an upstream call fails.
func (r *Repository) Get(namespace, key string) (*Entry, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	var (
		payload   []byte
		fetchedAt int64
		expiresAt int64
	)
	err := r.db.QueryRow(
		`SELECT payload, fetched_at, expires_at FROM client_data WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&payload, &fetchedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", namespace, key, err)
	}

	return &Entry{
		FetchedAt: time.Unix(fetchedAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
		payload:   payload,
	}, nil
}

// GetIfFresh returns the entry only if it has not expired, nil otherwise
func (r *Repository) GetIfFresh(namespace, key string) (*Entry, error) {
	entry, err := r.Get(namespace, key)
	if err != nil || entry == nil {
		return nil, err
	}
	if !entry.Fresh(r.now()) {
		return nil, nil
	}
	return entry, nil
}

// Delete removes a specific entry
func (r *Repository) Delete(namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	if _, err := r.db.Exec(`DELETE FROM client_data WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// DeleteExpired removes entries of namespace whose expires_at has passed and
// returns the number of rows deleted
func (r *Repository) DeleteExpired(namespace string) (int64, error) {
	if err := validateNamespace(namespace); err != nil {
		return 0, err
	}

	result, err := r.db.Exec(`DELETE FROM client_data WHERE namespace = ? AND expires_at < ?`, namespace, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", namespace, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", namespace, err)
	}
	return deleted, nil
}

// DeleteAllExpired removes expired entries from every namespace.
// Returns a map of namespace to number of rows deleted.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, ns := range Namespaces {
		deleted, err := r.DeleteExpired(ns)
		if err != nil {
			return results, err
		}
		results[ns] = deleted
	}
	return results, nil
}
