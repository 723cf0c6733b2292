// Package database is the SQLite-backed persistence layer: the tracked
// manga library, cached manga/chapter metadata, and per-manga/chapter
// read state.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS manga_library (
	source_id TEXT NOT NULL,
	manga_id TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source_id, manga_id)
);

CREATE TABLE IF NOT EXISTS manga_informations (
	source_id TEXT NOT NULL,
	manga_id TEXT NOT NULL,
	title TEXT,
	author TEXT,
	artist TEXT,
	cover_url TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source_id, manga_id)
);

CREATE TABLE IF NOT EXISTS chapter_informations (
	source_id TEXT NOT NULL,
	manga_id TEXT NOT NULL,
	chapter_id TEXT NOT NULL,
	manga_order INTEGER NOT NULL,
	title TEXT,
	scanlator TEXT,
	chapter_number REAL,
	volume_number REAL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source_id, manga_id, chapter_id)
);

CREATE TABLE IF NOT EXISTS manga_state (
	source_id TEXT NOT NULL,
	manga_id TEXT NOT NULL,
	preferred_scanlator TEXT,
	PRIMARY KEY (source_id, manga_id)
);

CREATE TABLE IF NOT EXISTS chapter_state (
	source_id TEXT NOT NULL,
	manga_id TEXT NOT NULL,
	chapter_id TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_id, manga_id, chapter_id)
);
`

// DB wraps the underlying *sql.DB with the domain operations the rest
// of the application needs. Every method takes a context so a caller
// (an HTTP-equivalent CLI command, a scheduled job) can bound how long
// it's willing to wait on a query.
type DB struct {
	conn *sql.DB
}

// Open creates (if necessary) and opens the SQLite database at path,
// enables WAL mode for concurrent readers during a writer's
// transaction, and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, rerr.New(rerr.Other, fmt.Errorf("opening database: %w", err))
	}

	if _, err := conn.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		conn.Close()
		return nil, rerr.New(rerr.Other, fmt.Errorf("enabling WAL mode: %w", err))
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		conn.Close()
		return nil, rerr.New(rerr.Other, fmt.Errorf("enabling foreign keys: %w", err))
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, rerr.New(rerr.Other, fmt.Errorf("applying schema: %w", err))
	}

	return &DB{conn: conn}, nil
}

// New wraps an already-open connection, skipping the pragmas and
// schema application Open does. Used by tests that hand in a sqlmock
// connection and by embedders that manage their own connection pool.
func New(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Ping verifies the connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.conn.PingContext(ctx); err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) AddToLibrary(ctx context.Context, mangaID model.MangaId) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO manga_library (source_id, manga_id) VALUES (?, ?)`,
		mangaID.SourceId().Value(), mangaID.Value(),
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) RemoveFromLibrary(ctx context.Context, mangaID model.MangaId) error {
	_, err := d.conn.ExecContext(ctx,
		`DELETE FROM manga_library WHERE source_id = ? AND manga_id = ?`,
		mangaID.SourceId().Value(), mangaID.Value(),
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) ListLibrary(ctx context.Context) ([]model.MangaId, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT source_id, manga_id FROM manga_library ORDER BY added_at`)
	if err != nil {
		return nil, rerr.New(rerr.Other, err)
	}
	defer rows.Close()

	var out []model.MangaId
	for rows.Next() {
		var sourceID, mangaID string
		if err := rows.Scan(&sourceID, &mangaID); err != nil {
			return nil, rerr.New(rerr.Other, err)
		}
		out = append(out, model.NewMangaId(model.NewSourceId(sourceID), mangaID))
	}
	if err := rows.Err(); err != nil {
		return nil, rerr.New(rerr.Other, err)
	}
	return out, nil
}

func (d *DB) UpsertMangaInformation(ctx context.Context, info model.MangaInformation) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO manga_informations (source_id, manga_id, title, author, artist, cover_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (source_id, manga_id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			artist = excluded.artist,
			cover_url = excluded.cover_url,
			updated_at = CURRENT_TIMESTAMP`,
		info.Id.SourceId().Value(), info.Id.Value(), info.Title, info.Author, info.Artist, info.CoverURL,
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) UpsertChapterInformation(ctx context.Context, info model.ChapterInformation) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO chapter_informations
			(source_id, manga_id, chapter_id, manga_order, title, scanlator, chapter_number, volume_number, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (source_id, manga_id, chapter_id) DO UPDATE SET
			manga_order = excluded.manga_order,
			title = excluded.title,
			scanlator = excluded.scanlator,
			chapter_number = excluded.chapter_number,
			volume_number = excluded.volume_number,
			updated_at = CURRENT_TIMESTAMP`,
		info.Id.SourceId().Value(), info.Id.MangaId().Value(), info.Id.Value(),
		info.MangaOrder, info.Title, info.Scanlator, info.ChapterNumber, info.VolumeNumber,
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

// GetMangaInformation looks up a manga's cached metadata. The second
// return value is false if nothing has been cached for it yet.
func (d *DB) GetMangaInformation(ctx context.Context, mangaID model.MangaId) (model.MangaInformation, bool, error) {
	var title, author, artist, coverURL *string
	err := d.conn.QueryRowContext(ctx,
		`SELECT title, author, artist, cover_url FROM manga_informations WHERE source_id = ? AND manga_id = ?`,
		mangaID.SourceId().Value(), mangaID.Value(),
	).Scan(&title, &author, &artist, &coverURL)
	if err == sql.ErrNoRows {
		return model.MangaInformation{}, false, nil
	}
	if err != nil {
		return model.MangaInformation{}, false, rerr.New(rerr.Other, err)
	}
	return model.MangaInformation{
		Id:       mangaID,
		Title:    title,
		Author:   author,
		Artist:   artist,
		CoverURL: coverURL,
	}, true, nil
}

func (d *DB) ListChapterInformations(ctx context.Context, mangaID model.MangaId) ([]model.ChapterInformation, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT chapter_id, manga_order, title, scanlator, chapter_number, volume_number
		 FROM chapter_informations
		 WHERE source_id = ? AND manga_id = ?
		 ORDER BY manga_order`,
		mangaID.SourceId().Value(), mangaID.Value(),
	)
	if err != nil {
		return nil, rerr.New(rerr.Other, err)
	}
	defer rows.Close()

	var out []model.ChapterInformation
	for rows.Next() {
		var chapterID string
		var order int
		var title, scanlator *string
		var chapterNumber, volumeNumber *float64
		if err := rows.Scan(&chapterID, &order, &title, &scanlator, &chapterNumber, &volumeNumber); err != nil {
			return nil, rerr.New(rerr.Other, err)
		}
		out = append(out, model.ChapterInformation{
			Id:            model.NewChapterId(mangaID, chapterID),
			MangaOrder:    order,
			Title:         title,
			Scanlator:     scanlator,
			ChapterNumber: chapterNumber,
			VolumeNumber:  volumeNumber,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, rerr.New(rerr.Other, err)
	}
	return out, nil
}

func (d *DB) SetChapterRead(ctx context.Context, chapterID model.ChapterId, read bool) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO chapter_state (source_id, manga_id, chapter_id, read) VALUES (?, ?, ?, ?)
		 ON CONFLICT (source_id, manga_id, chapter_id) DO UPDATE SET read = excluded.read`,
		chapterID.SourceId().Value(), chapterID.MangaId().Value(), chapterID.Value(), boolToInt(read),
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) IsChapterRead(ctx context.Context, chapterID model.ChapterId) (bool, error) {
	var read int
	err := d.conn.QueryRowContext(ctx,
		`SELECT read FROM chapter_state WHERE source_id = ? AND manga_id = ? AND chapter_id = ?`,
		chapterID.SourceId().Value(), chapterID.MangaId().Value(), chapterID.Value(),
	).Scan(&read)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, rerr.New(rerr.Other, err)
	}
	return read != 0, nil
}

func (d *DB) SetPreferredScanlator(ctx context.Context, mangaID model.MangaId, scanlator *string) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO manga_state (source_id, manga_id, preferred_scanlator) VALUES (?, ?, ?)
		 ON CONFLICT (source_id, manga_id) DO UPDATE SET preferred_scanlator = excluded.preferred_scanlator`,
		mangaID.SourceId().Value(), mangaID.Value(), scanlator,
	)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	return nil
}

func (d *DB) PreferredScanlator(ctx context.Context, mangaID model.MangaId) (*string, error) {
	var scanlator *string
	err := d.conn.QueryRowContext(ctx,
		`SELECT preferred_scanlator FROM manga_state WHERE source_id = ? AND manga_id = ?`,
		mangaID.SourceId().Value(), mangaID.Value(),
	).Scan(&scanlator)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, rerr.New(rerr.Other, err)
	}
	return scanlator, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
