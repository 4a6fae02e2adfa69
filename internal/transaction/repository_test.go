package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumns = []string{
	"id", "group_id", "payer_id", "description", "amount", "currency_code",
	"split_method", "occurred_on", "created_at", "username",
}

func transactionRow(rows *sqlmock.Rows, id int64, description string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, int64(10), int64(1), description, "50.00", "USD", "EQUAL", now, now, "alice")
}

func TestListGroupTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	rows := sqlmock.NewRows(transactionColumns)
	transactionRow(rows, 1, "Dinner")
	transactionRow(rows, 2, "Taxi")
	mock.ExpectQuery("FROM transactions").WithArgs(int64(10)).WillReturnRows(rows)

	got, err := repo.ListGroupTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dinner", got[0].Description)
	assert.Equal(t, "Taxi", got[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGroupTransactionsRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	// A driver error mid-iteration must surface instead of silently
	// truncating the history a balance is replayed from.
	rows := sqlmock.NewRows(transactionColumns)
	transactionRow(rows, 1, "Dinner")
	transactionRow(rows, 2, "Taxi")
	rows.RowError(1, errors.New("connection reset"))
	mock.ExpectQuery("FROM transactions").WithArgs(int64(10)).WillReturnRows(rows)

	got, err := repo.ListGroupTransactions(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read transactions")
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
