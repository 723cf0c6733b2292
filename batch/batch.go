// Package batch drives downloading several chapters of a manga in one
// operation, reporting progress as it goes and honoring cancellation
// between chapters.
package batch

import (
	"context"

	"github.com/hanatsumi/rakuyomi/chapterdownload"
	"github.com/hanatsumi/rakuyomi/chapterstorage"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
	"github.com/hanatsumi/rakuyomi/source"
)

// FilterKind discriminates the ways a caller can select which of a
// manga's chapters a batch download should cover.
type FilterKind int

const (
	// AllUnread downloads every chapter not marked read.
	AllUnread FilterKind = iota
	// NextUnread downloads up to N chapters starting at the first
	// unread one, in reading order.
	NextUnread
	// ByScanlator downloads unread chapters from one scanlation group,
	// optionally capped at N chapters.
	ByScanlator
	// Explicit downloads exactly the chapter ids listed, regardless of
	// read state.
	Explicit
)

// Filter selects which chapters a batch download covers. Only the
// fields relevant to Kind are read.
type Filter struct {
	Kind       FilterKind
	Count      int    // NextUnread, optional cap for ByScanlator (0 = no cap)
	Scanlator  string // ByScanlator
	ChapterIDs []string
}

// Select narrows allChapters (already sorted in reading order) down to
// what f asks for, using isRead to look up each chapter's read state.
func Select(f Filter, allChapters []model.ChapterInformation, isRead func(model.ChapterId) bool) []model.ChapterInformation {
	switch f.Kind {
	case AllUnread:
		return filterUnread(allChapters, isRead, 0)
	case NextUnread:
		return filterUnread(allChapters, isRead, f.Count)
	case ByScanlator:
		var matching []model.ChapterInformation
		for _, c := range allChapters {
			if isRead(c.Id) {
				continue
			}
			if c.ScanlatorOrUnknown() != f.Scanlator {
				continue
			}
			matching = append(matching, c)
			if f.Count > 0 && len(matching) >= f.Count {
				break
			}
		}
		return matching
	case Explicit:
		wanted := make(map[string]bool, len(f.ChapterIDs))
		for _, id := range f.ChapterIDs {
			wanted[id] = true
		}
		var matching []model.ChapterInformation
		for _, c := range allChapters {
			if wanted[c.Id.Value()] {
				matching = append(matching, c)
			}
		}
		return matching
	default:
		return nil
	}
}

func filterUnread(allChapters []model.ChapterInformation, isRead func(model.ChapterId) bool, limit int) []model.ChapterInformation {
	var matching []model.ChapterInformation
	for _, c := range allChapters {
		if isRead(c.Id) {
			continue
		}
		matching = append(matching, c)
		if limit > 0 && len(matching) >= limit {
			break
		}
	}
	return matching
}

// ProgressKind discriminates the events Run emits as a batch download
// proceeds.
type ProgressKind int

const (
	Progressing ProgressKind = iota
	Finished
	Cancelled
	Errored
)

// Progress is one event in a batch download's progress stream.
type Progress struct {
	Kind         ProgressKind
	Downloaded   int
	Total        int
	ErrorKind    rerr.Kind
	ErrorMessage string
}

// Run downloads every chapter Select returned, in order, reporting
// progress after each one through onProgress. It stops as soon as ctx
// is cancelled, reporting Cancelled rather than continuing to drain the
// remaining chapters, and stops as soon as one chapter's download
// fails, reporting Errored with that chapter's error classified by
// rerr.Kind.
func Run(
	ctx context.Context,
	src *source.Source,
	storage *chapterstorage.Storage,
	manga model.MangaInformation,
	chapters []model.ChapterInformation,
	lang string,
	onProgress func(Progress),
) {
	total := len(chapters)
	for i, chapter := range chapters {
		select {
		case <-ctx.Done():
			onProgress(Progress{Kind: Cancelled, Downloaded: i, Total: total})
			return
		default:
		}

		if _, err := chapterdownload.EnsureChapterIsInStorage(ctx, src, storage, manga, chapter, lang); err != nil {
			kind := rerr.KindOf(err)
			onProgress(Progress{
				Kind:         Errored,
				Downloaded:   i,
				Total:        total,
				ErrorKind:    kind,
				ErrorMessage: err.Error(),
			})
			return
		}

		onProgress(Progress{Kind: Progressing, Downloaded: i + 1, Total: total})
	}

	onProgress(Progress{Kind: Finished, Downloaded: total, Total: total})
}
