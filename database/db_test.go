package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/hanatsumi/rakuyomi/model"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn: conn}, mock
}

func TestDB_AddToLibrary(t *testing.T) {
	db, mock := newMockDB(t)
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga-1")

	mock.ExpectExec(`INSERT OR IGNORE INTO manga_library`).
		WithArgs("src", "manga-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.AddToLibrary(context.Background(), mangaID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ListLibrary(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"source_id", "manga_id"}).
		AddRow("src", "manga-1").
		AddRow("src", "manga-2")
	mock.ExpectQuery(`SELECT source_id, manga_id FROM manga_library`).WillReturnRows(rows)

	got, err := db.ListLibrary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []model.MangaId{
		model.NewMangaId(model.NewSourceId("src"), "manga-1"),
		model.NewMangaId(model.NewSourceId("src"), "manga-2"),
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_IsChapterRead_NotFoundIsFalse(t *testing.T) {
	db, mock := newMockDB(t)
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga-1")
	chapterID := model.NewChapterId(mangaID, "chapter-1")

	mock.ExpectQuery(`SELECT read FROM chapter_state`).
		WithArgs("src", "manga-1", "chapter-1").
		WillReturnRows(sqlmock.NewRows([]string{"read"}))

	read, err := db.IsChapterRead(context.Background(), chapterID)
	assert.NoError(t, err)
	assert.False(t, read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_SetChapterRead(t *testing.T) {
	db, mock := newMockDB(t)
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga-1")
	chapterID := model.NewChapterId(mangaID, "chapter-1")

	mock.ExpectExec(`INSERT INTO chapter_state`).
		WithArgs("src", "manga-1", "chapter-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.SetChapterRead(context.Background(), chapterID, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
