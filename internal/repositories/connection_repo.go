package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/p2p60/intake-bot/internal/database"
	"github.com/p2p60/intake-bot/internal/models"
	"github.com/p2p60/intake-bot/internal/security"
)

type ConnectionRepo struct {
	db     *database.DB
	cipher *security.Cipher
}

// NewConnectionRepo builds a connection store. cipher may be nil, in which
// case identifiers are stored in plaintext.
func NewConnectionRepo(db *database.DB, cipher *security.Cipher) *ConnectionRepo {
	return &ConnectionRepo{db: db, cipher: cipher}
}

// SaveConnection inserts a new connection. There is no uniqueness rule: a
// user may register any number of exchanges and wallets.
func (r *ConnectionRepo) SaveConnection(conn models.Connection) (int64, error) {
	identifier := conn.Identifier
	if r.cipher != nil {
		encrypted, err := r.cipher.Encrypt(identifier)
		if err != nil {
			return 0, fmt.Errorf("failed to encrypt identifier: %w", err)
		}
		identifier = encrypted
	}

	query := `
		INSERT INTO connections (tg_user_id, tg_username, kind, exchange_name, network, identifier)
		VALUES (?,?,?,?,?,?)
	`

	result, err := r.db.Exec(query,
		conn.TgUserID,
		conn.TgUsername,
		string(conn.Kind),
		conn.ExchangeName,
		conn.Network,
		identifier,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert connection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get connection ID: %w", err)
	}
	return id, nil
}

// ListConnections returns a user's connections, newest first.
func (r *ConnectionRepo) ListConnections(tgUserID string) ([]models.Connection, error) {
	query := `
		SELECT id, created_at, tg_user_id, tg_username, kind, exchange_name, network, identifier
		FROM connections
		WHERE tg_user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query, tgUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var connections []models.Connection
	for rows.Next() {
		var conn models.Connection
		var createdAt string
		err := rows.Scan(
			&conn.ID,
			&createdAt,
			&conn.TgUserID,
			&conn.TgUsername,
			&conn.Kind,
			&conn.ExchangeName,
			&conn.Network,
			&conn.Identifier,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conn.CreatedAt, _ = time.Parse(timestampLayout, createdAt)

		if r.cipher != nil {
			decrypted, err := r.cipher.Decrypt(conn.Identifier)
			if err != nil {
				// Rows written before the key changed stay listed, just unreadable.
				slog.Warn("Failed to decrypt connection identifier", "connection_id", conn.ID, "error", err)
				conn.Identifier = ""
			} else {
				conn.Identifier = decrypted
			}
		}
		connections = append(connections, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}
	return connections, nil
}
