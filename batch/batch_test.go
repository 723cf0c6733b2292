package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanatsumi/rakuyomi/model"
)

func strPtr(s string) *string { return &s }

func chapterInfo(mangaID model.MangaId, id string, scanlator string) model.ChapterInformation {
	return model.ChapterInformation{
		Id:        model.NewChapterId(mangaID, id),
		Scanlator: strPtr(scanlator),
	}
}

func alwaysUnread(model.ChapterId) bool { return false }

func TestSelect_AllUnread_SkipsRead(t *testing.T) {
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga")
	chapters := []model.ChapterInformation{
		chapterInfo(mangaID, "1", "Group A"),
		chapterInfo(mangaID, "2", "Group A"),
		chapterInfo(mangaID, "3", "Group A"),
	}
	read := map[string]bool{"2": true}

	got := Select(Filter{Kind: AllUnread}, chapters, func(id model.ChapterId) bool {
		return read[id.Value()]
	})

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Id.Value())
	assert.Equal(t, "3", got[1].Id.Value())
}

func TestSelect_NextUnread_RespectsCount(t *testing.T) {
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga")
	chapters := []model.ChapterInformation{
		chapterInfo(mangaID, "1", "Group A"),
		chapterInfo(mangaID, "2", "Group A"),
		chapterInfo(mangaID, "3", "Group A"),
	}

	got := Select(Filter{Kind: NextUnread, Count: 2}, chapters, alwaysUnread)

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Id.Value())
	assert.Equal(t, "2", got[1].Id.Value())
}

func TestSelect_ByScanlator_FiltersGroupAndSkipsRead(t *testing.T) {
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga")
	chapters := []model.ChapterInformation{
		chapterInfo(mangaID, "1", "Group A"),
		chapterInfo(mangaID, "2", "Group B"),
		chapterInfo(mangaID, "3", "Group A"),
	}
	read := map[string]bool{"1": true}

	got := Select(Filter{Kind: ByScanlator, Scanlator: "Group A"}, chapters, func(id model.ChapterId) bool {
		return read[id.Value()]
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "3", got[0].Id.Value())
}

func TestSelect_ByScanlator_UnknownFallback(t *testing.T) {
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga")
	chapters := []model.ChapterInformation{
		{Id: model.NewChapterId(mangaID, "1")},
	}

	got := Select(Filter{Kind: ByScanlator, Scanlator: "Unknown"}, chapters, alwaysUnread)

	assert.Len(t, got, 1)
}

func TestSelect_Explicit_IgnoresReadState(t *testing.T) {
	mangaID := model.NewMangaId(model.NewSourceId("src"), "manga")
	chapters := []model.ChapterInformation{
		chapterInfo(mangaID, "1", "Group A"),
		chapterInfo(mangaID, "2", "Group A"),
		chapterInfo(mangaID, "3", "Group A"),
	}

	got := Select(Filter{Kind: Explicit, ChapterIDs: []string{"1", "3"}}, chapters, func(model.ChapterId) bool {
		return true
	})

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Id.Value())
	assert.Equal(t, "3", got[1].Id.Value())
}

func TestSelect_UnknownFilterKind_ReturnsNil(t *testing.T) {
	got := Select(Filter{Kind: FilterKind(99)}, nil, alwaysUnread)
	assert.Nil(t, got)
}
