package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles transaction data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithSplits inserts a transaction together with its contributions and
// splits in a single database transaction. Either everything is stored or
// nothing is.
func (r *Repository) CreateWithSplits(ctx context.Context, payerID int64, t *Transaction, contributions []*PayerContribution, splits []*ParticipantSplit) (*TransactionWithDetails, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (group_id, payer_id, description, amount, currency_code, split_method, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(ctx, query,
		t.GroupID, payerID, t.Description, t.Amount, t.CurrencyCode, t.SplitMethod, t.OccurredOn,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	t.PayerID = payerID

	if err := insertDetails(ctx, tx, t.ID, contributions, splits); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &TransactionWithDetails{
		Transaction:   t,
		Contributions: contributions,
		Splits:        splits,
	}, nil
}

func insertDetails(ctx context.Context, tx *sql.Tx, transactionID int64, contributions []*PayerContribution, splits []*ParticipantSplit) error {
	contribQuery := `
		INSERT INTO payer_contributions (transaction_id, user_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, c := range contributions {
		c.TransactionID = transactionID
		if err := tx.QueryRowContext(ctx, contribQuery, transactionID, c.UserID, c.Amount).Scan(&c.ID); err != nil {
			return fmt.Errorf("failed to create contribution: %w", err)
		}
	}

	splitQuery := `
		INSERT INTO participant_splits (transaction_id, user_id, amount, percentage, shares, adjustment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for _, s := range splits {
		s.TransactionID = transactionID
		err := tx.QueryRowContext(ctx, splitQuery, transactionID, s.UserID, s.Amount, s.Percentage, s.Shares, s.Adjustment).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	query := `
		SELECT t.id, t.group_id, t.payer_id, t.description, t.amount, t.currency_code,
		       t.split_method, t.occurred_on, t.created_at, u.username
		FROM transactions t
		JOIN users u ON t.payer_id = u.id
		WHERE t.id = $1
	`

	t := &Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.GroupID,
		&t.PayerID,
		&t.Description,
		&t.Amount,
		&t.CurrencyCode,
		&t.SplitMethod,
		&t.OccurredOn,
		&t.CreatedAt,
		&t.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// GetContributions retrieves the payer contributions for a transaction
func (r *Repository) GetContributions(ctx context.Context, transactionID int64) ([]*PayerContribution, error) {
	query := `
		SELECT pc.id, pc.transaction_id, pc.user_id, pc.amount, u.username
		FROM payer_contributions pc
		JOIN users u ON pc.user_id = u.id
		WHERE pc.transaction_id = $1
		ORDER BY pc.id
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*PayerContribution
	for rows.Next() {
		c := &PayerContribution{}
		if err := rows.Scan(&c.ID, &c.TransactionID, &c.UserID, &c.Amount, &c.Username); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}

	return contributions, nil
}

// GetSplits retrieves the participant splits for a transaction
func (r *Repository) GetSplits(ctx context.Context, transactionID int64) ([]*ParticipantSplit, error) {
	query := `
		SELECT ps.id, ps.transaction_id, ps.user_id, ps.amount, ps.percentage, ps.shares, ps.adjustment, u.username
		FROM participant_splits ps
		JOIN users u ON ps.user_id = u.id
		WHERE ps.transaction_id = $1
		ORDER BY ps.id
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*ParticipantSplit
	for rows.Next() {
		s := &ParticipantSplit{}
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.UserID, &s.Amount, &s.Percentage, &s.Shares, &s.Adjustment, &s.Username); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}

	return splits, nil
}

// ListByGroupID retrieves transactions for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Transaction, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM transactions WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT t.id, t.group_id, t.payer_id, t.description, t.amount, t.currency_code,
		       t.split_method, t.occurred_on, t.created_at, u.username
		FROM transactions t
		JOIN users u ON t.payer_id = u.id
		WHERE t.group_id = $1
		ORDER BY t.occurred_on DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func scanTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(
			&t.ID,
			&t.GroupID,
			&t.PayerID,
			&t.Description,
			&t.Amount,
			&t.CurrencyCode,
			&t.SplitMethod,
			&t.OccurredOn,
			&t.CreatedAt,
			&t.PayerUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

// involvedClause matches transactions the given user takes part in, as payer,
// contributor, or split participant.
const involvedClause = `(t.payer_id = %[1]s
		OR EXISTS (SELECT 1 FROM payer_contributions pc WHERE pc.transaction_id = t.id AND pc.user_id = %[1]s)
		OR EXISTS (SELECT 1 FROM participant_splits ps WHERE ps.transaction_id = t.id AND ps.user_id = %[1]s))`

// ListMutual retrieves every transaction both users are involved in, oldest
// first so balance replay is deterministic
func (r *Repository) ListMutual(ctx context.Context, userID, otherUserID int64) ([]*Transaction, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.group_id, t.payer_id, t.description, t.amount, t.currency_code,
		       t.split_method, t.occurred_on, t.created_at, u.username
		FROM transactions t
		JOIN users u ON t.payer_id = u.id
		WHERE %s AND %s
		ORDER BY t.occurred_on, t.id
	`, fmt.Sprintf(involvedClause, "$1"), fmt.Sprintf(involvedClause, "$2"))

	rows, err := r.db.QueryContext(ctx, query, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mutual transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListGroupTransactions retrieves every transaction in a group, oldest first
func (r *Repository) ListGroupTransactions(ctx context.Context, groupID int64) ([]*Transaction, error) {
	query := `
		SELECT t.id, t.group_id, t.payer_id, t.description, t.amount, t.currency_code,
		       t.split_method, t.occurred_on, t.created_at, u.username
		FROM transactions t
		JOIN users u ON t.payer_id = u.id
		WHERE t.group_id = $1
		ORDER BY t.occurred_on, t.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// AttachDetails loads contributions and splits for a batch of transactions
// in two queries instead of two per transaction
func (r *Repository) AttachDetails(ctx context.Context, transactions []*Transaction) ([]*TransactionWithDetails, error) {
	out := make([]*TransactionWithDetails, len(transactions))
	byID := make(map[int64]*TransactionWithDetails, len(transactions))
	ids := make([]int64, len(transactions))
	for i, t := range transactions {
		out[i] = &TransactionWithDetails{Transaction: t}
		byID[t.ID] = out[i]
		ids[i] = t.ID
	}
	if len(ids) == 0 {
		return out, nil
	}

	contribQuery := `
		SELECT pc.id, pc.transaction_id, pc.user_id, pc.amount, u.username
		FROM payer_contributions pc
		JOIN users u ON pc.user_id = u.id
		WHERE pc.transaction_id = ANY($1)
		ORDER BY pc.id
	`
	rows, err := r.db.QueryContext(ctx, contribQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &PayerContribution{}
		if err := rows.Scan(&c.ID, &c.TransactionID, &c.UserID, &c.Amount, &c.Username); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		if td, ok := byID[c.TransactionID]; ok {
			td.Contributions = append(td.Contributions, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}

	splitQuery := `
		SELECT ps.id, ps.transaction_id, ps.user_id, ps.amount, ps.percentage, ps.shares, ps.adjustment, u.username
		FROM participant_splits ps
		JOIN users u ON ps.user_id = u.id
		WHERE ps.transaction_id = ANY($1)
		ORDER BY ps.id
	`
	splitRows, err := r.db.QueryContext(ctx, splitQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		s := &ParticipantSplit{}
		if err := splitRows.Scan(&s.ID, &s.TransactionID, &s.UserID, &s.Amount, &s.Percentage, &s.Shares, &s.Adjustment, &s.Username); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if td, ok := byID[s.TransactionID]; ok {
			td.Splits = append(td.Splits, s)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}

	return out, nil
}

// UpdateWithSplits rewrites a transaction and replaces its contributions and
// splits atomically
func (r *Repository) UpdateWithSplits(ctx context.Context, t *Transaction, contributions []*PayerContribution, splits []*ParticipantSplit) (*TransactionWithDetails, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE transactions
		SET description = $2, amount = $3, split_method = $4, occurred_on = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, t.ID, t.Description, t.Amount, t.SplitMethod, t.OccurredOn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payer_contributions WHERE transaction_id = $1`, t.ID); err != nil {
		return nil, fmt.Errorf("failed to clear contributions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participant_splits WHERE transaction_id = $1`, t.ID); err != nil {
		return nil, fmt.Errorf("failed to clear splits: %w", err)
	}

	if err := insertDetails(ctx, tx, t.ID, contributions, splits); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &TransactionWithDetails{
		Transaction:   t,
		Contributions: contributions,
		Splits:        splits,
	}, nil
}

// UpdateMeta changes the description or date without touching the splits
func (r *Repository) UpdateMeta(ctx context.Context, id int64, description *string, occurredOn *string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET description = COALESCE($2, description),
		    occurred_on = COALESCE($3::date, occurred_on)
		WHERE id = $1
		RETURNING id, group_id, payer_id, description, amount, currency_code, split_method, occurred_on, created_at
	`

	t := &Transaction{}
	err := r.db.QueryRowContext(ctx, query, id, description, occurredOn).Scan(
		&t.ID,
		&t.GroupID,
		&t.PayerID,
		&t.Description,
		&t.Amount,
		&t.CurrencyCode,
		&t.SplitMethod,
		&t.OccurredOn,
		&t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return t, nil
}

// Delete removes a transaction; contributions and splits cascade
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction not found")
	}

	return nil
}
