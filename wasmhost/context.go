package wasmhost

import "context"

// OperationContextKind distinguishes what a guest call's create_chapter
// or create_page is allowed to attach its result to: nothing in
// particular, a manga being listed for chapters, or a chapter being
// listed for pages.
type OperationContextKind int

const (
	OperationContextNone OperationContextKind = iota
	OperationContextManga
	OperationContextChapter
)

// OperationContext mirrors the guest call currently in flight: a
// cancellation signal plus the id of the object (manga or chapter) the
// call was made under, so that aidoku.create_chapter/create_page can
// recover a manga/chapter id the ABI doesn't pass as an explicit
// parameter.
type OperationContext struct {
	CancellationToken context.Context
	Kind              OperationContextKind
	ObjectID          string
}

// PushMangaContext sets the Operation Context to the given manga id for
// the duration of a get_chapter_list call, returning a function that
// restores the previous context.
func (h *Host) PushMangaContext(ctx context.Context, mangaID string) func() {
	previous := h.context
	h.context = OperationContext{CancellationToken: ctx, Kind: OperationContextManga, ObjectID: mangaID}
	return func() { h.context = previous }
}

// PushChapterContext sets the Operation Context to the given chapter id
// for the duration of a get_page_list call, returning a function that
// restores the previous context.
func (h *Host) PushChapterContext(ctx context.Context, chapterID string) func() {
	previous := h.context
	h.context = OperationContext{CancellationToken: ctx, Kind: OperationContextChapter, ObjectID: chapterID}
	return func() { h.context = previous }
}

// CurrentMangaID returns the manga id of the current Operation Context,
// if it is a Manga context.
func (h *Host) CurrentMangaID() (string, bool) {
	if h.context.Kind != OperationContextManga {
		return "", false
	}
	return h.context.ObjectID, true
}

// CurrentChapterID returns the chapter id of the current Operation
// Context, if it is a Chapter context.
func (h *Host) CurrentChapterID() (string, bool) {
	if h.context.Kind != OperationContextChapter {
		return "", false
	}
	return h.context.ObjectID, true
}
