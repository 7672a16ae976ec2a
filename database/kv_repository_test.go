package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestGet_ReturnsStoredValue(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery(`SELECT value FROM kv_store WHERE key = \$1`).
		WithArgs("scheduledPosts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[]`))

	v, ok, err := d.Get(context.Background(), "scheduledPosts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_MissingKeyIsNotAnError(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery(`SELECT value FROM kv_store`).
		WithArgs("credentials").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := d.Get(context.Background(), "credentials")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_PropagatesQueryErrors(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery(`SELECT value FROM kv_store`).
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, _, err := d.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestSet_Upserts(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO kv_store \(key, value, updated_at\)\s+VALUES \(\$1, \$2, NOW\(\)\)\s+ON CONFLICT \(key\)`).
		WithArgs("scheduledPosts", `[{"id":"1"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, d.Set(context.Background(), "scheduledPosts", `[{"id":"1"}]`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTables(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, d.createTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
