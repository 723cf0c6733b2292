// Package comicinfo builds the ComicInfo.xml metadata file every
// downloaded chapter's CBZ archive carries as its first entry, so that
// comic readers that understand the ComicRack schema can show proper
// series/chapter/summary information without re-deriving it from
// filenames.
package comicinfo

import (
	"encoding/xml"
	"fmt"

	"github.com/hanatsumi/rakuyomi/model"
)

// Document is the subset of the ComicInfo schema this project
// populates. Fields other than PageCount are left as strings even where
// the schema allows a numeric type, since ComicRack readers are tolerant of either and it
// keeps the formatting (e.g. "12.5" vs "12") entirely in Go's control.
type Document struct {
	XMLName     xml.Name `xml:"ComicInfo"`
	Title       string   `xml:"Title"`
	Series      string   `xml:"Series"`
	Number      string   `xml:"Number,omitempty"`
	Volume      string   `xml:"Volume,omitempty"`
	Summary     string   `xml:"Summary,omitempty"`
	Writer      string   `xml:"Writer,omitempty"`
	Penciller   string   `xml:"Penciller,omitempty"`
	Genre       string   `xml:"Genre,omitempty"`
	Web         string   `xml:"Web,omitempty"`
	PageCount   int      `xml:"PageCount"`
	LanguageISO string   `xml:"LanguageISO,omitempty"`
	Manga       string   `xml:"Manga,omitempty"`
}

// Build assembles a Document for one chapter. Title and Summary follow
// the original's exact composition ("Ch. N - chapter_title - series"
// and "Chapter N - series") rather than a Go-native reformulation, so
// that a chapter carrying the same number/title/series as before
// produces byte-identical ComicInfo.xml. Number is formatted without a
// trailing ".0" for whole chapter numbers.
func Build(manga model.MangaInformation, chapter model.ChapterInformation, lang string, pageCount int) Document {
	series := derefOr(manga.Title, "")

	doc := Document{
		Series:      series,
		PageCount:   pageCount,
		LanguageISO: lang,
		Manga:       "YesAndRightToLeft",
	}

	if manga.Author != nil {
		doc.Writer = *manga.Author
	}
	if manga.Artist != nil {
		doc.Penciller = *manga.Artist
	}

	var number string
	if chapter.ChapterNumber != nil {
		number = formatNumber(*chapter.ChapterNumber)
		doc.Number = number
	}
	if chapter.VolumeNumber != nil {
		doc.Volume = formatNumber(*chapter.VolumeNumber)
	}

	chapterTitle := derefOr(chapter.Title, "")

	switch {
	case number != "" && chapterTitle != "":
		doc.Title = fmt.Sprintf("Ch. %s - %s - %s", number, chapterTitle, series)
	case number != "":
		doc.Title = fmt.Sprintf("Ch. %s - %s", number, series)
	case chapterTitle != "":
		doc.Title = fmt.Sprintf("%s - %s", chapterTitle, series)
	default:
		doc.Title = series
	}

	if number != "" && series != "" {
		doc.Summary = fmt.Sprintf("Chapter %s - %s", number, series)
	}

	return doc
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// Marshal renders doc as the bytes that should be written as
// ComicInfo.xml, including the XML declaration ComicRack expects.
func Marshal(doc Document) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
