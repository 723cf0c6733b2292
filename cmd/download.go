package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/chapterdownload"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
)

// NewDownloadCmd creates the download command: ensures one chapter is
// present in the local cache, downloading it first if necessary.
func NewDownloadCmd(dataDirectory *string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "download <source> <manga-id> <chapter-id>",
		Short: "Download a single chapter into the chapter cache",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			sourceID, mangaIDValue, chapterIDValue := args[0], args[1], args[2]

			withApp(dataDirectory, cmd, func(a *app) error {
				ctx := context.Background()

				src, ok := a.Manager.Get(sourceID)
				if !ok {
					return rerr.Newf(rerr.NotFound, "source %s is not installed", sourceID)
				}

				mangaID := model.NewMangaId(model.NewSourceId(sourceID), mangaIDValue)

				manga, chapter, err := resolveDownloadTarget(ctx, a, mangaID, chapterIDValue)
				if err != nil {
					return err
				}

				path, err := chapterdownload.EnsureChapterIsInStorage(ctx, src, a.Storage, manga, chapter, lang)
				if err != nil {
					return err
				}

				cmd.Printf("Chapter stored at %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "language to record in the chapter's ComicInfo.xml")

	return cmd
}

// resolveDownloadTarget builds the MangaInformation/ChapterInformation
// EnsureChapterIsInStorage needs, preferring the database's cached
// metadata (populated by a scheduled update check) and falling back to a fresh source call plus a
// bare-id manga record when nothing is cached yet.
func resolveDownloadTarget(ctx context.Context, a *app, mangaID model.MangaId, chapterIDValue string) (model.MangaInformation, model.ChapterInformation, error) {
	chapters, err := a.DB.ListChapterInformations(ctx, mangaID)
	if err == nil {
		for _, c := range chapters {
			if c.Id.Value() == chapterIDValue {
				return mangaInformationOrBareId(ctx, a, mangaID), c, nil
			}
		}
	}

	src, ok := a.Manager.Get(mangaID.SourceId().Value())
	if !ok {
		return model.MangaInformation{}, model.ChapterInformation{}, rerr.Newf(rerr.NotFound, "source %s is not installed", mangaID.SourceId().Value())
	}

	remote, err := src.ListChapters(ctx, mangaID.Value())
	if err != nil {
		return model.MangaInformation{}, model.ChapterInformation{}, err
	}

	for i, c := range remote {
		if c.Id != chapterIDValue {
			continue
		}
		chapterNumber := float32PtrToFloat64Ptr(c.ChapterNum)
		volume := float32PtrToFloat64Ptr(c.Volume)
		info := model.ChapterInformation{
			Id:            model.NewChapterId(mangaID, c.Id),
			MangaOrder:    i,
			Title:         c.Title,
			Scanlator:     c.Scanlator,
			ChapterNumber: chapterNumber,
			VolumeNumber:  volume,
		}
		return mangaInformationOrBareId(ctx, a, mangaID), info, nil
	}

	return model.MangaInformation{}, model.ChapterInformation{}, rerr.Newf(rerr.NotFound, "chapter %s not found for manga %s", chapterIDValue, mangaID)
}

func mangaInformationOrBareId(ctx context.Context, a *app, mangaID model.MangaId) model.MangaInformation {
	if info, ok, err := a.DB.GetMangaInformation(ctx, mangaID); err == nil && ok {
		return info
	}
	return model.MangaInformation{Id: mangaID}
}

func float32PtrToFloat64Ptr(f *float32) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}
