// Package model holds the data shapes shared by the Source Runtime, the
// database adapter, and the batch orchestrator: identifiers, immutable
// metadata entities, and the mutable state the host tracks per chapter and
// manga.
package model

import "fmt"

// SourceId identifies an installed source by its manifest id.
type SourceId struct {
	value string
}

// NewSourceId wraps a raw source id string.
func NewSourceId(value string) SourceId { return SourceId{value: value} }

// Value returns the underlying string.
func (s SourceId) Value() string { return s.value }

func (s SourceId) String() string { return s.value }

// MangaId identifies a manga within a source.
type MangaId struct {
	sourceId SourceId
	value    string
}

// NewMangaId builds a MangaId from its source and the source-local id.
func NewMangaId(sourceId SourceId, value string) MangaId {
	return MangaId{sourceId: sourceId, value: value}
}

func (m MangaId) SourceId() SourceId { return m.sourceId }
func (m MangaId) Value() string      { return m.value }

func (m MangaId) String() string {
	return fmt.Sprintf("%s/%s", m.sourceId.value, m.value)
}

// ChapterId identifies a chapter within a manga.
type ChapterId struct {
	mangaId MangaId
	value   string
}

// NewChapterId builds a ChapterId from its manga and the source-local id.
func NewChapterId(mangaId MangaId, value string) ChapterId {
	return ChapterId{mangaId: mangaId, value: value}
}

func (c ChapterId) MangaId() MangaId   { return c.mangaId }
func (c ChapterId) SourceId() SourceId { return c.mangaId.sourceId }
func (c ChapterId) Value() string      { return c.value }

func (c ChapterId) String() string {
	return fmt.Sprintf("%s/%s", c.mangaId.String(), c.value)
}
