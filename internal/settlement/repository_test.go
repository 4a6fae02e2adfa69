package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settlementColumns = []string{
	"id", "from_user_id", "to_user_id", "amount", "currency_code",
	"settled_on", "note", "created_at", "from_username", "to_username",
}

func settlementRow(rows *sqlmock.Rows, id int64, amount string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, int64(1), int64(2), amount, "USD", now, nil, now, "alice", "bob")
}

func TestListBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	rows := sqlmock.NewRows(settlementColumns)
	settlementRow(rows, 1, "25.00")
	settlementRow(rows, 2, "10.00")
	mock.ExpectQuery("FROM settlements").WithArgs(int64(1), int64(2)).WillReturnRows(rows)

	got, err := repo.ListBetween(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].FromUsername)
	assert.Equal(t, "bob", got[0].ToUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBetweenRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	// A dropped settlement would overstate the remaining debt, so a driver
	// error mid-iteration must fail the read.
	rows := sqlmock.NewRows(settlementColumns)
	settlementRow(rows, 1, "25.00")
	settlementRow(rows, 2, "10.00")
	rows.RowError(1, errors.New("connection reset"))
	mock.ExpectQuery("FROM settlements").WithArgs(int64(1), int64(2)).WillReturnRows(rows)

	got, err := repo.ListBetween(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read settlements")
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
