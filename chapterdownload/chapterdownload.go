// Package chapterdownload orchestrates fetching every page of a chapter
// from its source, assembling them into a CBZ archive alongside a
// ComicInfo.xml, and handing the result to chapterstorage to persist.
package chapterdownload

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hanatsumi/rakuyomi/chapterstorage"
	"github.com/hanatsumi/rakuyomi/comicinfo"
	"github.com/hanatsumi/rakuyomi/metrics"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
	"github.com/hanatsumi/rakuyomi/source"
	"github.com/hanatsumi/rakuyomi/value"
)

func decodeBase64Image(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, rerr.New(rerr.ProtocolViolation, fmt.Errorf("decoding inline page data: %w", err))
	}
	return data, nil
}

// maxConcurrentPageFetches bounds how many of a chapter's pages are
// downloaded at once, so a chapter with eighty pages doesn't open
// eighty simultaneous connections to one host.
const maxConcurrentPageFetches = 4

// EnsureChapterIsInStorage returns the local path to chapter's CBZ,
// downloading and assembling it first if it isn't already cached.
func EnsureChapterIsInStorage(
	ctx context.Context,
	src *source.Source,
	storage *chapterstorage.Storage,
	manga model.MangaInformation,
	chapter model.ChapterInformation,
	lang string,
) (string, error) {
	sourceID := chapter.Id.SourceId().Value()
	mangaID := chapter.Id.MangaId().Value()
	chapterID := chapter.Id.Value()

	if path, ok := storage.Resolve(sourceID, mangaID, chapterID); ok {
		return path, nil
	}

	pages, err := src.ListPages(ctx, mangaID, chapterID)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", rerr.Newf(rerr.ProtocolViolation, "chapter %s has no pages", chapterID)
	}

	images, err := fetchPages(ctx, src, pages)
	if err != nil {
		return "", err
	}

	archive, err := buildArchive(manga, chapter, lang, images)
	if err != nil {
		return "", err
	}

	path, err := storage.Store(ctx, sourceID, mangaID, chapterID, bytes.NewReader(archive))
	if err != nil {
		return "", err
	}

	metrics.ChaptersDownloadedTotal.Inc()
	return path, nil
}

// fetchPages downloads every page's image (or decodes its inline
// base64 payload, if the source provided one instead of a URL) with at
// most maxConcurrentPageFetches requests in flight, preserving page
// order in the returned slice regardless of completion order. The
// first page to fail cancels the group, per errgroup.WithContext.
func fetchPages(ctx context.Context, src *source.Source, pages []value.Page) ([][]byte, error) {
	images := make([][]byte, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPageFetches)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			img, err := fetchPage(ctx, src, page)
			if err != nil {
				return fmt.Errorf("fetching page %d: %w", i, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func fetchPage(ctx context.Context, src *source.Source, page value.Page) ([]byte, error) {
	if page.Base64 != nil {
		return decodeBase64Image(*page.Base64)
	}
	if page.ImageURL == nil {
		return nil, rerr.Newf(rerr.ProtocolViolation, "page %d has neither an image url nor inline data", page.Index)
	}

	req, err := src.GetImageRequest(ctx, *page.ImageURL)
	if err != nil {
		return nil, err
	}
	if err := req.Send(ctx); err != nil {
		return nil, err
	}
	defer req.Close()

	status, err := req.StatusCode()
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, rerr.Newf(rerr.NetworkFailure, "page %d: image request returned HTTP %d", page.Index, status)
	}

	return req.ResponseBody()
}

// buildArchive zips ComicInfo.xml first, then each page in order,
// using the Store method (no deflate) since page images are already
// compressed and re-compressing them would only cost CPU.
func buildArchive(manga model.MangaInformation, chapter model.ChapterInformation, lang string, images [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	doc := comicinfo.Build(manga, chapter, lang, len(images))
	xmlBytes, err := comicinfo.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := writeStored(w, "ComicInfo.xml", xmlBytes); err != nil {
		return nil, err
	}

	for i, data := range images {
		name := fmt.Sprintf("%04d%s", i, imageExtension(data))
		if err := writeStored(w, name, data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeStored(w *zip.Writer, name string, data []byte) error {
	header := &zip.FileHeader{Name: name, Method: zip.Store}
	entry, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, bytes.NewReader(data))
	return err
}

func imageExtension(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return ".png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xff, 0xd8, 0xff}):
		return ".jpg"
	case len(data) >= 4 && string(data[:4]) == "RIFF":
		return ".webp"
	default:
		return ".jpg"
	}
}
