package model

import "time"

// MangaInformation is the immutable-once-loaded projection of a manga that
// the database caches. The richer set of fields a guest can attach to a
// wire-level Manga value (status, nsfw, viewer, ...) lives on the typed
// aidoku.Manga wrapper instead; this is the trimmed shape downstream
// consumers (library, batch orchestrator) actually need.
type MangaInformation struct {
	Id        MangaId
	Title     *string
	Author    *string
	Artist    *string
	CoverURL  *string
}

// ChapterInformation is the immutable-once-loaded projection of a chapter.
type ChapterInformation struct {
	Id             ChapterId
	MangaOrder     int
	Title          *string
	Scanlator      *string
	ChapterNumber  *float64
	VolumeNumber   *float64
}

// ScanlatorOrUnknown returns the chapter's scanlator, or "Unknown" if unset,
// matching the filter semantics of the Batch Orchestrator (§4.8).
func (c ChapterInformation) ScanlatorOrUnknown() string {
	if c.Scanlator == nil {
		return "Unknown"
	}
	return *c.Scanlator
}

// Page is one page of a chapter, as produced by a source's get_page_list.
type Page struct {
	SourceId  SourceId
	ChapterId ChapterId
	Index     int
	ImageURL  *string
	Base64    *string
	Text      *string
}

// SourceManifest describes an installed source.
type SourceManifest struct {
	Id      string
	Name    string
	Version string
	Lang    string
}

// SettingDefinition is a recursive description of a source's configurable
// settings, as declared in Payload/settings.json.
type SettingDefinition struct {
	Kind SettingKind

	// Group
	Title string
	Items []SettingDefinition

	// Select
	Key           string
	Default       string
	DefaultBool   bool
	DefaultSet    bool
	Values        []string
}

// SettingKind discriminates SettingDefinition's recursive variant.
type SettingKind int

const (
	SettingGroup SettingKind = iota
	SettingSelect
	SettingSwitch
	SettingText
)

// ChapterState is per-chapter mutable state tracked by the host.
type ChapterState struct {
	Read bool
}

// MangaState is per-manga mutable state tracked by the host.
type MangaState struct {
	PreferredScanlator *string
}

// Timestamped pairs a value with the instant it was produced, matching the
// Date value kind's "timestamped instant" representation.
type Timestamped struct {
	At time.Time
}
