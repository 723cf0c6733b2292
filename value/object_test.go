package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectValue_Field_ValueMap(t *testing.T) {
	o := ValueMapObject(map[string]Value{"title": String("One Piece")})

	v, ok := o.Field("title")
	assert.True(t, ok)
	assert.Equal(t, String("One Piece"), v)

	_, ok = o.Field("missing")
	assert.False(t, ok)
}

func TestObjectValue_Field_Manga(t *testing.T) {
	title := "One Piece"
	o := MangaObject(Manga{
		SourceId: "src",
		Id:       "id",
		Title:    &title,
		Tags:     []string{"action", "adventure"},
	})

	v, ok := o.Field("title")
	assert.True(t, ok)
	assert.Equal(t, String("One Piece"), v)

	v, ok = o.Field("author")
	assert.True(t, ok)
	assert.Equal(t, KindNull, v.Kind)

	v, ok = o.Field("tags")
	assert.True(t, ok)
	assert.Equal(t, []Value{String("action"), String("adventure")}, v.Array)

	_, ok = o.Field("not_a_field")
	assert.False(t, ok)
}

func TestObjectValue_Field_MangaPageResult(t *testing.T) {
	o := MangaPageResultObject(MangaPageResult{
		Manga:       []Manga{{SourceId: "src", Id: "a"}},
		HasNextPage: true,
	})

	v, ok := o.Field("has_next_page")
	assert.True(t, ok)
	assert.Equal(t, Bool(true), v)

	v, ok = o.Field("manga")
	assert.True(t, ok)
	assert.Len(t, v.Array, 1)
}

func TestObjectValue_Field_Filter(t *testing.T) {
	o := FilterObject(Filter{Type: 8, Name: "Title", Value: "query"})

	v, ok := o.Field("type")
	assert.True(t, ok)
	assert.Equal(t, Int(8), v)
}

func TestObjectValue_Field_ChapterHasNoProjection(t *testing.T) {
	o := ChapterObject(Chapter{MangaId: "m", Id: "c"})

	_, ok := o.Field("id")
	assert.False(t, ok)
}

func TestObjectValue_Clone_DeepCopiesManga(t *testing.T) {
	o := MangaObject(Manga{SourceId: "src", Id: "id", Tags: []string{"a"}})
	clone := o.Clone()

	clone.Manga.Tags[0] = "b"

	assert.Equal(t, "a", o.Manga.Tags[0])
	assert.Equal(t, "b", clone.Manga.Tags[0])
}
