package value

import "time"

// ObjectKind discriminates ObjectValue's variants: the free-form ValueMap
// and the typed wrappers the aidoku module's builders produce.
type ObjectKind int

const (
	ObjectValueMap ObjectKind = iota
	ObjectManga
	ObjectChapter
	ObjectPage
	ObjectMangaPageResult
	ObjectDeepLink
	ObjectFilter
)

// Manga is the wire-level typed wrapper aidoku.create_manga builds. It
// carries more fields than the database-facing model.MangaInformation
// (status, nsfw, viewer, and the four timestamps), matching what the
// original source's field projection exposes to the guest.
type Manga struct {
	SourceId    string
	Id          string
	Title       *string
	Author      *string
	Artist      *string
	Description *string
	Tags        []string
	CoverURL    *string
	URL         *string
	Status      int32
	NSFW        int32
	Viewer      int32
	LastUpdated *time.Time
	LastOpened  *time.Time
	LastRead    *time.Time
	DateAdded   *time.Time
}

func (m Manga) clone() Manga {
	c := m
	c.Tags = append([]string(nil), m.Tags...)
	return c
}

// Chapter is the wire-level typed wrapper aidoku.create_chapter builds.
type Chapter struct {
	MangaId    string
	Id         string
	Title      *string
	Scanlator  *string
	URL        *string
	Lang       *string
	Volume     *float32
	ChapterNum *float32
	Date       *time.Time
}

// Page is the wire-level typed wrapper aidoku.create_page builds.
type Page struct {
	ChapterId string
	Index     int32
	ImageURL  *string
	Base64    *string
	Text      *string
}

// MangaPageResult wraps a page of search/listing results.
type MangaPageResult struct {
	Manga       []Manga
	HasNextPage bool
}

func (r MangaPageResult) clone() MangaPageResult {
	c := r
	c.Manga = make([]Manga, len(r.Manga))
	for i, m := range r.Manga {
		c.Manga[i] = m.clone()
	}
	return c
}

// DeepLink wraps an optional manga and chapter pair.
type DeepLink struct {
	Manga   *Manga
	Chapter *Chapter
}

// Filter is the typed wrapper a search filter is encoded as before being
// handed to get_manga_list.
type Filter struct {
	Type  int32
	Name  string
	Value string
}

// ObjectValue is the Object Value kind's payload: either a free-form
// string-keyed map or one of the typed wrappers above.
type ObjectValue struct {
	Kind            ObjectKind
	Map             map[string]Value
	Manga           *Manga
	Chapter         *Chapter
	Page            *Page
	MangaPageResult *MangaPageResult
	DeepLink        *DeepLink
	Filter          *Filter
}

func ValueMapObject(m map[string]Value) ObjectValue {
	return ObjectValue{Kind: ObjectValueMap, Map: m}
}

func MangaObject(m Manga) ObjectValue {
	return ObjectValue{Kind: ObjectManga, Manga: &m}
}

func ChapterObject(c Chapter) ObjectValue {
	return ObjectValue{Kind: ObjectChapter, Chapter: &c}
}

func PageObject(p Page) ObjectValue {
	return ObjectValue{Kind: ObjectPage, Page: &p}
}

func MangaPageResultObject(r MangaPageResult) ObjectValue {
	return ObjectValue{Kind: ObjectMangaPageResult, MangaPageResult: &r}
}

func DeepLinkObject(d DeepLink) ObjectValue {
	return ObjectValue{Kind: ObjectDeepLink, DeepLink: &d}
}

func FilterObject(f Filter) ObjectValue {
	return ObjectValue{Kind: ObjectFilter, Filter: &f}
}

func (o ObjectValue) Clone() ObjectValue {
	clone := o
	switch o.Kind {
	case ObjectValueMap:
		m := make(map[string]Value, len(o.Map))
		for k, v := range o.Map {
			m[k] = v.Clone()
		}
		clone.Map = m
	case ObjectManga:
		if o.Manga != nil {
			m := o.Manga.clone()
			clone.Manga = &m
		}
	case ObjectMangaPageResult:
		if o.MangaPageResult != nil {
			r := o.MangaPageResult.clone()
			clone.MangaPageResult = &r
		}
	case ObjectChapter:
		if o.Chapter != nil {
			c := *o.Chapter
			clone.Chapter = &c
		}
	case ObjectPage:
		if o.Page != nil {
			p := *o.Page
			clone.Page = &p
		}
	case ObjectDeepLink:
		if o.DeepLink != nil {
			d := *o.DeepLink
			clone.DeepLink = &d
		}
	case ObjectFilter:
		if o.Filter != nil {
			f := *o.Filter
			clone.Filter = &f
		}
	}
	return clone
}

// Field projects a named field out of a typed wrapper, matching the
// original's field_as_value implementations: only ValueMap, Manga,
// MangaPageResult, and Filter have a projection; Chapter, Page, and
// DeepLink report ok=false for every field name, same as the original's
// "missing implementation" for those variants. A known field with an
// absent optional value yields a Null Value (ok=true); an unrecognized
// field name yields ok=false, which callers turn into the ABI's -1
// sentinel.
func (o ObjectValue) Field(name string) (Value, bool) {
	switch o.Kind {
	case ObjectValueMap:
		v, ok := o.Map[name]
		return v, ok
	case ObjectManga:
		return mangaField(o.Manga, name)
	case ObjectMangaPageResult:
		return mangaPageResultField(o.MangaPageResult, name)
	case ObjectFilter:
		return filterField(o.Filter, name)
	default:
		return Value{}, false
	}
}

func optString(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}

func optDate(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Date(*t)
}

func mangaField(m *Manga, name string) (Value, bool) {
	switch name {
	case "source_id":
		return String(m.SourceId), true
	case "id":
		return String(m.Id), true
	case "title":
		return optString(m.Title), true
	case "author":
		return optString(m.Author), true
	case "artist":
		return optString(m.Artist), true
	case "description":
		return optString(m.Description), true
	case "tags":
		tags := make([]Value, len(m.Tags))
		for i, tag := range m.Tags {
			tags[i] = String(tag)
		}
		return Array(tags), true
	case "cover_url":
		return optString(m.CoverURL), true
	case "url":
		return optString(m.URL), true
	case "status":
		return Int(int64(m.Status)), true
	case "nsfw":
		return Int(int64(m.NSFW)), true
	case "viewer":
		return Int(int64(m.Viewer)), true
	case "last_updated":
		return optDate(m.LastUpdated), true
	case "last_opened":
		return optDate(m.LastOpened), true
	case "last_read":
		return optDate(m.LastRead), true
	case "date_added":
		return optDate(m.DateAdded), true
	default:
		return Value{}, false
	}
}

func mangaPageResultField(r *MangaPageResult, name string) (Value, bool) {
	switch name {
	case "manga":
		mangas := make([]Value, len(r.Manga))
		for i, m := range r.Manga {
			mangas[i] = Object(MangaObject(m))
		}
		return Array(mangas), true
	case "has_next_page":
		return Bool(r.HasNextPage), true
	default:
		return Value{}, false
	}
}

func filterField(f *Filter, name string) (Value, bool) {
	switch name {
	case "type":
		return Int(int64(f.Type)), true
	case "name":
		return String(f.Name), true
	case "value":
		return String(f.Value), true
	default:
		return Value{}, false
	}
}
