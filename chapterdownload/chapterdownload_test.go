package chapterdownload

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
)

func strPtr(s string) *string { return &s }

func TestDecodeBase64Image_Valid(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("image-bytes"))

	data, err := decodeBase64Image(encoded)

	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestDecodeBase64Image_Invalid(t *testing.T) {
	_, err := decodeBase64Image("not valid base64!!")

	require.Error(t, err)
	assert.Equal(t, rerr.ProtocolViolation, rerr.KindOf(err))
}

func TestImageExtension(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}
	jpg := []byte{0xff, 0xd8, 0xff, 0, 0}
	webp := []byte("RIFF....WEBP")
	unknown := []byte{0x00, 0x01}

	assert.Equal(t, ".png", imageExtension(png))
	assert.Equal(t, ".jpg", imageExtension(jpg))
	assert.Equal(t, ".webp", imageExtension(webp))
	assert.Equal(t, ".jpg", imageExtension(unknown))
}

func TestBuildArchive_IncludesComicInfoAndPagesInOrder(t *testing.T) {
	manga := model.MangaInformation{Title: strPtr("X")}
	chapter := model.ChapterInformation{ChapterNumber: floatPtr(1)}
	images := [][]byte{
		{0xff, 0xd8, 0xff},
		{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	}

	data, err := buildArchive(manga, chapter, "en", images)
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, r.File, 3)

	assert.Equal(t, "ComicInfo.xml", r.File[0].Name)
	assert.Equal(t, zip.Store, r.File[0].Method)
	assert.Equal(t, "0000.jpg", r.File[1].Name)
	assert.Equal(t, "0001.png", r.File[2].Name)
}

func floatPtr(f float64) *float64 { return &f }
