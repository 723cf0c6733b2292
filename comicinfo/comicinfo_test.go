package comicinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanatsumi/rakuyomi/model"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestBuild_TitleAndSummary_FullInformation(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{
		Title:         strPtr("Start"),
		ChapterNumber: numPtr(12),
	}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "Ch. 12 - Start - X", doc.Title)
	assert.Equal(t, "X", doc.Series)
	assert.Equal(t, "12", doc.Number)
	assert.Equal(t, "Chapter 12 - X", doc.Summary)
}

func TestBuild_Title_MissingChapterTitle(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{ChapterNumber: numPtr(3)}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "Ch. 3 - X", doc.Title)
	assert.Equal(t, "Chapter 3 - X", doc.Summary)
}

func TestBuild_Title_MissingChapterNumber(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{Title: strPtr("Prologue")}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "Prologue - X", doc.Title)
	assert.Empty(t, doc.Summary)
}

func TestBuild_Title_SeriesOnly(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "X", doc.Title)
	assert.Empty(t, doc.Summary)
}

func TestBuild_WholeChapterNumber_HasNoTrailingZero(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{ChapterNumber: numPtr(12)}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "12", doc.Number)
}

func TestBuild_FractionalChapterNumber_KeepsDecimal(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{ChapterNumber: numPtr(12.5)}

	doc := Build(manga, chapter, "en", 0)

	assert.Equal(t, "12.5", doc.Number)
}

func TestBuild_WriterAndPencillerFromAuthorArtist(t *testing.T) {
	manga := model.MangaInformation{
		Title:  strPtr("X"),
		Author: strPtr("Eiichiro Oda"),
		Artist: strPtr("Eiichiro Oda"),
	}

	doc := Build(manga, model.ChapterInformation{}, "en", 0)

	assert.Equal(t, "Eiichiro Oda", doc.Writer)
	assert.Equal(t, "Eiichiro Oda", doc.Penciller)
}

func TestMarshal_IncludesXMLHeader(t *testing.T) {
	doc := Build(model.MangaInformation{Title: strPtr("X")}, model.ChapterInformation{}, "en", 3)

	out, err := Marshal(doc)

	assert.NoError(t, err)
	assert.Contains(t, string(out), `<?xml version="1.0"`)
	assert.Contains(t, string(out), "<ComicInfo>")
	assert.Contains(t, string(out), "<PageCount>3</PageCount>")
}
