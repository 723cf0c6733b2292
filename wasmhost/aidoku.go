package wasmhost

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

// instantiateAidoku registers the aidoku module: the typed-object
// constructors a source calls once it has assembled the individual
// fields (themselves built through std's create_* functions) into a
// Manga, Chapter, Page, or DeepLink. Every field argument here is a
// Value Store handle rather than a raw (ptr, len) pair or struct
// layout: since every piece of guest-built data already lives in the
// store by the time a source is ready to call create_manga, routing
// field values through handles avoids needing to also define and parse
// a raw FFI struct layout for each typed wrapper.
func (h *Host) instantiateAidoku(ctx context.Context, runtime wazero.Runtime) error {
	builder := runtime.NewHostModuleBuilder("aidoku")

	builder.NewFunctionBuilder().WithFunc(h.aidokuCreateManga).Export("create_manga")
	builder.NewFunctionBuilder().WithFunc(h.aidokuCreateMangaResult).Export("create_manga_result")
	builder.NewFunctionBuilder().WithFunc(h.aidokuCreateChapter).Export("create_chapter")
	builder.NewFunctionBuilder().WithFunc(h.aidokuCreatePage).Export("create_page")
	builder.NewFunctionBuilder().WithFunc(h.aidokuCreateDeepLink).Export("create_deeplink")

	_, err := builder.Instantiate(ctx)
	return err
}

func (h *Host) getOptString(handle int32) *string {
	if handle == memory.Absent {
		return nil
	}
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindString {
		return nil
	}
	s := v.Str
	return &s
}

func (h *Host) getOptDate(handle int32) *time.Time {
	if handle == memory.Absent {
		return nil
	}
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindDate {
		return nil
	}
	t := v.Date
	return &t
}

func (h *Host) getStringList(handle int32) []string {
	if handle == memory.Absent {
		return nil
	}
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindArray {
		return nil
	}
	out := make([]string, 0, len(v.Array))
	for _, e := range v.Array {
		if e.Kind == value.KindString {
			out = append(out, e.Str)
		}
	}
	return out
}

// readRawTags reads the tags a guest passed to create_manga as three
// raw-memory parameters rather than a Value handle: tagsPtr points to
// tagCount little-endian i32 string offsets, tagLensPtr to tagCount
// matching i32 string lengths. This mirrors the real ABI, which never
// builds a Value array for tags at all.
func readRawTags(mem api.Memory, tagsPtr, tagLensPtr uint32, tagCount int32) []string {
	if tagCount <= 0 {
		return nil
	}
	out := make([]string, 0, tagCount)
	for i := int32(0); i < tagCount; i++ {
		offset, err := memory.ReadInt32(mem, tagsPtr+uint32(i)*4)
		if err != nil {
			continue
		}
		length, err := memory.ReadInt32(mem, tagLensPtr+uint32(i)*4)
		if err != nil || length < 0 {
			continue
		}
		s, err := memory.ReadString(mem, uint32(offset), uint32(length))
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (h *Host) aidokuCreateManga(
	ctx context.Context, mod api.Module,
	id, coverURL, title, author, artist, description, url int32,
	tagsPtr, tagLensPtr, tagCount int32,
	status, nsfw, viewer int32,
) int32 {
	idStr := h.getOptString(id)
	if idStr == nil {
		return memory.Absent
	}

	var tags []string
	if tagsPtr != memory.Absent && tagLensPtr != memory.Absent && tagCount > 0 {
		tags = readRawTags(mustMemory(mod), uint32(tagsPtr), uint32(tagLensPtr), tagCount)
	}

	m := value.Manga{
		SourceId:    h.SourceID,
		Id:          *idStr,
		Title:       h.getOptString(title),
		Author:      h.getOptString(author),
		Artist:      h.getOptString(artist),
		Description: h.getOptString(description),
		Tags:        tags,
		CoverURL:    h.getOptString(coverURL),
		URL:         h.getOptString(url),
		Status:      status,
		NSFW:        nsfw,
		Viewer:      viewer,
	}
	return int32(h.Store.Store(value.Object(value.MangaObject(m))))
}

func (h *Host) aidokuCreateMangaResult(ctx context.Context, mangaArray int32, hasNextPage int32) int32 {
	v, ok := h.Store.Get(value.Handle(mangaArray))
	if !ok || v.Kind != value.KindArray {
		return memory.Absent
	}
	mangas := make([]value.Manga, 0, len(v.Array))
	for _, e := range v.Array {
		if e.Kind == value.KindObject && e.Object.Kind == value.ObjectManga && e.Object.Manga != nil {
			mangas = append(mangas, *e.Object.Manga)
		}
	}
	result := value.MangaPageResult{Manga: mangas, HasNextPage: hasNextPage != 0}
	return int32(h.Store.Store(value.Object(value.MangaPageResultObject(result))))
}

// aidokuCreateChapter takes the manga id from the Operation Context
// pushed by Source.ListChapters rather than from a guest-supplied
// parameter: the real ABI never passes it explicitly, since
// create_chapter is only ever valid to call from within a
// get_chapter_list call running under a Manga context.
func (h *Host) aidokuCreateChapter(
	ctx context.Context,
	id, title int32,
	volume, chapterNum float32,
	date, scanlator, url, lang int32,
) int32 {
	mangaID, ok := h.CurrentMangaID()
	if !ok {
		return memory.Absent
	}
	idStr := h.getOptString(id)
	if idStr == nil {
		return memory.Absent
	}

	c := value.Chapter{
		MangaId:   mangaID,
		Id:        *idStr,
		Title:     h.getOptString(title),
		Scanlator: h.getOptString(scanlator),
		URL:       h.getOptString(url),
		Lang:      h.getOptString(lang),
		Date:      h.getOptDate(date),
	}
	if volume > 0 {
		c.Volume = &volume
	}
	if chapterNum > 0 {
		c.ChapterNum = &chapterNum
	}
	return int32(h.Store.Store(value.Object(value.ChapterObject(c))))
}

// aidokuCreatePage takes the chapter id from the Operation Context
// pushed by Source.ListPages, the same way aidokuCreateChapter takes
// its manga id.
func (h *Host) aidokuCreatePage(ctx context.Context, index int32, imageURL, base64, text int32) int32 {
	chapterID, ok := h.CurrentChapterID()
	if !ok {
		return memory.Absent
	}

	p := value.Page{
		ChapterId: chapterID,
		Index:     index,
		ImageURL:  h.getOptString(imageURL),
		Base64:    h.getOptString(base64),
		Text:      h.getOptString(text),
	}
	return int32(h.Store.Store(value.Object(value.PageObject(p))))
}

func (h *Host) aidokuCreateDeepLink(ctx context.Context, mangaHandle, chapterHandle int32) int32 {
	d := value.DeepLink{}

	if mangaHandle != memory.Absent {
		if v, ok := h.Store.Get(value.Handle(mangaHandle)); ok && v.Kind == value.KindObject && v.Object.Kind == value.ObjectManga {
			d.Manga = v.Object.Manga
		}
	}
	if chapterHandle != memory.Absent {
		if v, ok := h.Store.Get(value.Handle(chapterHandle)); ok && v.Kind == value.KindObject && v.Object.Kind == value.ObjectChapter {
			d.Chapter = v.Object.Chapter
		}
	}
	return int32(h.Store.Store(value.Object(value.DeepLinkObject(d))))
}
