package schedule

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanatsumi/rakuyomi/config"
	"github.com/hanatsumi/rakuyomi/database"
	"github.com/hanatsumi/rakuyomi/sourcemanager"
)

func TestRunUpdateCheck_EmptyLibrary_IsANoop(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`SELECT source_id, manga_id FROM manga_library`).
		WillReturnRows(sqlmock.NewRows([]string{"source_id", "manga_id"}))

	db := database.New(conn)
	manager := sourcemanager.New(t.TempDir(), config.New())

	err = runUpdateCheck(context.Background(), db, manager)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunUpdateCheck_SkipsMangaWithNoLoadedSource(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	rows := sqlmock.NewRows([]string{"source_id", "manga_id"}).AddRow("missing-source", "manga-1")
	mock.ExpectQuery(`SELECT source_id, manga_id FROM manga_library`).WillReturnRows(rows)

	db := database.New(conn)
	manager := sourcemanager.New(t.TempDir(), config.New())

	err = runUpdateCheck(context.Background(), db, manager)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFloat32PtrToFloat64Ptr(t *testing.T) {
	assert.Nil(t, float32PtrToFloat64Ptr(nil))

	var f float32 = 12.5
	got := float32PtrToFloat64Ptr(&f)
	require.NotNil(t, got)
	assert.InDelta(t, 12.5, *got, 0.0001)
}
