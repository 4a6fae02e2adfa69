package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/balance"
)

// Repository handles settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement
func (r *Repository) Create(ctx context.Context, fromUserID, toUserID int64, amount decimal.Decimal, currencyCode string, settledOn time.Time, note *string) (*Settlement, error) {
	query := `
		INSERT INTO settlements (from_user_id, to_user_id, amount, currency_code, settled_on, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, from_user_id, to_user_id, amount, currency_code, settled_on, note, created_at
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, fromUserID, toUserID, amount, currencyCode, settledOn, note).Scan(
		&s.ID,
		&s.FromUserID,
		&s.ToUserID,
		&s.Amount,
		&s.CurrencyCode,
		&s.SettledOn,
		&s.Note,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return s, nil
}

// GetByID retrieves a settlement by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `
		SELECT s.id, s.from_user_id, s.to_user_id, s.amount, s.currency_code, s.settled_on, s.note, s.created_at,
		       fu.username, tu.username
		FROM settlements s
		JOIN users fu ON s.from_user_id = fu.id
		JOIN users tu ON s.to_user_id = tu.id
		WHERE s.id = $1
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.FromUserID,
		&s.ToUserID,
		&s.Amount,
		&s.CurrencyCode,
		&s.SettledOn,
		&s.Note,
		&s.CreatedAt,
		&s.FromUsername,
		&s.ToUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return s, nil
}

// ListByUserID retrieves settlements the user sent or received, newest first
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Settlement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE from_user_id = $1 OR to_user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := `
		SELECT s.id, s.from_user_id, s.to_user_id, s.amount, s.currency_code, s.settled_on, s.note, s.created_at,
		       fu.username, tu.username
		FROM settlements s
		JOIN users fu ON s.from_user_id = fu.id
		JOIN users tu ON s.to_user_id = tu.id
		WHERE s.from_user_id = $1 OR s.to_user_id = $1
		ORDER BY s.settled_on DESC, s.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	if err != nil {
		return nil, 0, err
	}

	return settlements, total, nil
}

// ListBetween retrieves every settlement between two users, oldest first so
// balance replay is deterministic
func (r *Repository) ListBetween(ctx context.Context, userID, otherUserID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.from_user_id, s.to_user_id, s.amount, s.currency_code, s.settled_on, s.note, s.created_at,
		       fu.username, tu.username
		FROM settlements s
		JOIN users fu ON s.from_user_id = fu.id
		JOIN users tu ON s.to_user_id = tu.id
		WHERE (s.from_user_id = $1 AND s.to_user_id = $2)
		   OR (s.from_user_id = $2 AND s.to_user_id = $1)
		ORDER BY s.settled_on, s.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	return scanSettlements(rows)
}

func scanSettlements(rows *sql.Rows) ([]*Settlement, error) {
	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(
			&s.ID,
			&s.FromUserID,
			&s.ToUserID,
			&s.Amount,
			&s.CurrencyCode,
			&s.SettledOn,
			&s.Note,
			&s.CreatedAt,
			&s.FromUsername,
			&s.ToUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settlements: %w", err)
	}
	return settlements, nil
}

// Counterparts finds everyone the user shares any history with: a settlement
// in either direction, or a transaction both are involved in.
func (r *Repository) Counterparts(ctx context.Context, userID int64) ([]balance.Member, error) {
	query := `
		WITH involvement AS (
			SELECT t.id AS transaction_id, x.user_id
			FROM transactions t
			JOIN LATERAL (
				SELECT t.payer_id AS user_id
				UNION
				SELECT pc.user_id FROM payer_contributions pc WHERE pc.transaction_id = t.id
				UNION
				SELECT ps.user_id FROM participant_splits ps WHERE ps.transaction_id = t.id
			) x ON true
		)
		SELECT u.id, u.username
		FROM users u
		WHERE u.id <> $1
		  AND (
			EXISTS (
				SELECT 1 FROM settlements s
				WHERE (s.from_user_id = $1 AND s.to_user_id = u.id)
				   OR (s.from_user_id = u.id AND s.to_user_id = $1)
			)
			OR EXISTS (
				SELECT 1
				FROM involvement a
				JOIN involvement b ON a.transaction_id = b.transaction_id
				WHERE a.user_id = $1 AND b.user_id = u.id
			)
		  )
		ORDER BY u.username, u.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get counterparts: %w", err)
	}
	defer rows.Close()

	var members []balance.Member
	for rows.Next() {
		var m balance.Member
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, fmt.Errorf("failed to scan counterpart: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read counterparts: %w", err)
	}

	return members, nil
}
