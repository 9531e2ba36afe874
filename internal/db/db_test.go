package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInClause(t *testing.T) {
	placeholders, args := inClause([]string{"old_event", "old_speaker", "page"})
	assert.Equal(t, "?, ?, ?", placeholders)
	assert.Equal(t, []any{"old_event", "old_speaker", "page"}, args)

	placeholders, args = inClause([]string{"post"})
	assert.Equal(t, "?", placeholders)
	assert.Len(t, args, 1)
}

func TestPing(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	db, err := New(conn, "wp_")
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("server has gone away"))
	assert.Error(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose(t *testing.T) {
	assert.NoError(t, (&DB{}).Close())

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	db, err := New(conn, "wp_")
	require.NoError(t, err)
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_InvalidDSN(t *testing.T) {
	_, err := Connect(context.Background(), "not a dsn", "wp_")
	assert.ErrorContains(t, err, "failed to parse database DSN")
}
