package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/p2p60/intake-bot/internal/database"
	"github.com/p2p60/intake-bot/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

type RequestRepo struct {
	db *database.DB
}

func NewRequestRepo(db *database.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

// SaveRequest inserts a request keyed by its normalized phone. When a row
// with the same phone already exists, every mutable field is updated in
// place, duplicate_count is incremented and the existing id is returned with
// isDuplicate=true. Concurrent submissions racing on the same phone resolve
// through the UNIQUE constraint: the loser of the insert race lands on the
// update path.
func (r *RequestRepo) SaveRequest(req models.ExchangeRequest) (int64, bool, error) {
	insertQuery := `
		INSERT INTO requests (
			tg_user_id, tg_username, direction_key, direction_label,
			from_currency, to_currency, amount_text, amount_value,
			payment_method, city, urgency_key, urgency_label, phone,
			priority, raw_payload
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`

	result, err := r.db.Exec(insertQuery,
		req.TgUserID,
		req.TgUsername,
		req.DirectionKey,
		req.DirectionLabel,
		req.FromCurrency,
		req.ToCurrency,
		req.AmountText,
		nullFloat(req.AmountValue),
		req.PaymentMethod,
		req.City,
		req.UrgencyKey,
		req.UrgencyLabel,
		req.Phone,
		string(req.Priority),
		req.RawPayload,
	)
	if err == nil {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to get request ID: %w", err)
		}
		return id, false, nil
	}
	if !isUniqueViolation(err) {
		return 0, false, fmt.Errorf("failed to insert request: %w", err)
	}

	updateQuery := `
		UPDATE requests
		SET updated_at=CURRENT_TIMESTAMP,
			tg_user_id=?,
			tg_username=?,
			direction_key=?,
			direction_label=?,
			from_currency=?,
			to_currency=?,
			amount_text=?,
			amount_value=?,
			payment_method=?,
			city=?,
			urgency_key=?,
			urgency_label=?,
			priority=?,
			duplicate_count=duplicate_count+1,
			raw_payload=?
		WHERE phone=?
	`

	_, err = r.db.Exec(updateQuery,
		req.TgUserID,
		req.TgUsername,
		req.DirectionKey,
		req.DirectionLabel,
		req.FromCurrency,
		req.ToCurrency,
		req.AmountText,
		nullFloat(req.AmountValue),
		req.PaymentMethod,
		req.City,
		req.UrgencyKey,
		req.UrgencyLabel,
		string(req.Priority),
		req.RawPayload,
		req.Phone,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to update duplicate request: %w", err)
	}

	var id int64
	err = r.db.QueryRow(`SELECT id FROM requests WHERE phone=?`, req.Phone).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve duplicate request ID: %w", err)
	}
	return id, true, nil
}

// GetRequest returns a single request by id.
func (r *RequestRepo) GetRequest(id int64) (models.ExchangeRequest, error) {
	query := `
		SELECT id, created_at, updated_at, tg_user_id, tg_username,
		       direction_key, direction_label, from_currency, to_currency,
		       amount_text, amount_value, payment_method, city,
		       urgency_key, urgency_label, phone, priority,
		       duplicate_count, raw_payload
		FROM requests
		WHERE id = ?
	`

	row := r.db.QueryRow(query, id)
	req, err := scanRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ExchangeRequest{}, fmt.Errorf("request %d not found", id)
		}
		return models.ExchangeRequest{}, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

type Stats struct {
	Total        int64
	HighPriority int64
}

// Stats returns aggregate request counts.
func (r *RequestRepo) Stats() (Stats, error) {
	var stats Stats
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM requests`).Scan(&stats.Total); err != nil {
		return Stats{}, fmt.Errorf("failed to count requests: %w", err)
	}
	err := r.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE priority='high'`).Scan(&stats.HighPriority)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count high priority requests: %w", err)
	}
	return stats, nil
}

// ExportRow is the fixed operator-facing projection of a request.
type ExportRow struct {
	CreatedAt     string
	Direction     string
	FromCurrency  string
	ToCurrency    string
	Amount        string
	PaymentMethod string
	City          string
	Urgency       string
	Phone         string
	Priority      string
}

// ExportRange returns requests created within [start, end] inclusive by
// calendar date, ascending by creation time.
func (r *RequestRepo) ExportRange(start, end time.Time) ([]ExportRow, error) {
	query := `
		SELECT created_at, direction_label, from_currency, to_currency,
		       amount_text, payment_method, city, urgency_label, phone, priority
		FROM requests
		WHERE date(created_at) BETWEEN date(?) AND date(?)
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query export range: %w", err)
	}
	defer rows.Close()

	var exportRows []ExportRow
	for rows.Next() {
		var row ExportRow
		err := rows.Scan(
			&row.CreatedAt,
			&row.Direction,
			&row.FromCurrency,
			&row.ToCurrency,
			&row.Amount,
			&row.PaymentMethod,
			&row.City,
			&row.Urgency,
			&row.Phone,
			&row.Priority,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		exportRows = append(exportRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export rows: %w", err)
	}
	return exportRows, nil
}

func scanRequest(row *sql.Row) (models.ExchangeRequest, error) {
	var req models.ExchangeRequest
	var createdAt, updatedAt string
	var amountValue sql.NullFloat64

	err := row.Scan(
		&req.ID,
		&createdAt,
		&updatedAt,
		&req.TgUserID,
		&req.TgUsername,
		&req.DirectionKey,
		&req.DirectionLabel,
		&req.FromCurrency,
		&req.ToCurrency,
		&req.AmountText,
		&amountValue,
		&req.PaymentMethod,
		&req.City,
		&req.UrgencyKey,
		&req.UrgencyLabel,
		&req.Phone,
		&req.Priority,
		&req.DuplicateCount,
		&req.RawPayload,
	)
	if err != nil {
		return models.ExchangeRequest{}, err
	}

	req.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	req.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt)
	if amountValue.Valid {
		req.AmountValue = &amountValue.Float64
	}
	return req, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
