package sqldb

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/newsroom/core"
)

var errBoom = errors.New("boom")

// expectTopicPrepares expects the statements of NewTopicDB in their order.
func expectTopicPrepares(mock sqlmock.Sqlmock) map[string]*sqlmock.ExpectedPrepare {
	var prepares = map[string]*sqlmock.ExpectedPrepare{}
	for _, p := range []struct{ name, query string }{
		{"count", `SELECT COUNT\(\*\) FROM topic`},
		{"delete", `DELETE FROM topic WHERE id`},
		{"get", `SELECT name FROM topic WHERE id`},
		{"getAll", `SELECT id, name FROM topic ORDER BY id`},
		{"insert", `INSERT INTO topic`},
		{"search", `SELECT id, name FROM topic WHERE .* LIMIT`},
		{"unlink", `DELETE FROM newspaper_topic WHERE topic`},
		{"update", `UPDATE topic SET name`},
	} {
		prepares[p.name] = mock.ExpectPrepare(p.query)
	}
	return prepares
}

func TestDeleteTopicRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock, prepares map[string]*sqlmock.ExpectedPrepare)
		wantErr error
	}{
		{
			name: "unlink fails",
			setup: func(mock sqlmock.Sqlmock, prepares map[string]*sqlmock.ExpectedPrepare) {
				mock.ExpectBegin()
				prepares["unlink"].ExpectExec().WithArgs(3).WillReturnError(errBoom)
				mock.ExpectRollback()
			},
			wantErr: errBoom,
		},
		{
			name: "no such topic",
			setup: func(mock sqlmock.Sqlmock, prepares map[string]*sqlmock.ExpectedPrepare) {
				mock.ExpectBegin()
				prepares["unlink"].ExpectExec().WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
				prepares["delete"].ExpectExec().WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: core.ErrNotFound,
		},
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock, prepares map[string]*sqlmock.ExpectedPrepare) {
				mock.ExpectBegin()
				prepares["unlink"].ExpectExec().WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 2))
				prepares["delete"].ExpectExec().WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = sqlDB.Close() }()

			prepares := expectTopicPrepares(mock)
			topicDB := NewTopicDB(sqlDB)
			tt.setup(mock, prepares)

			err = topicDB.DeleteTopic(3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetTopicErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	prepares := expectTopicPrepares(mock)
	topicDB := NewTopicDB(sqlDB)

	prepares["get"].ExpectQuery().WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"name"}))
	prepares["get"].ExpectQuery().WithArgs(2).WillReturnError(errBoom)

	_, err = topicDB.GetTopic(1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = topicDB.GetTopic(2)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, errors.Is(err, core.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchemaError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS redactor`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS topic \(\s*id INTEGER PRIMARY KEY AUTO_INCREMENT`).WillReturnError(errBoom)

	err = CreateSchema(sqlDB, "mysql")
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "creating schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
