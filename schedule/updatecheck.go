package schedule

import (
	"context"

	"github.com/hanatsumi/rakuyomi/database"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/sourcemanager"
)

// NewUpdateCheckJob builds the periodic job that walks every manga in
// the library, asks its source for the current chapter list, and
// records any chapters the database doesn't know about yet.
func NewUpdateCheckJob(spec string, db *database.DB, manager *sourcemanager.Manager) Job {
	return Job{
		Name: "update-check",
		Spec: spec,
		Run: func(ctx context.Context) error {
			return runUpdateCheck(ctx, db, manager)
		},
	}
}

func runUpdateCheck(ctx context.Context, db *database.DB, manager *sourcemanager.Manager) error {
	library, err := db.ListLibrary(ctx)
	if err != nil {
		return err
	}

	for _, mangaID := range library {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		src, ok := manager.Get(mangaID.SourceId().Value())
		if !ok {
			continue
		}

		chapters, err := src.ListChapters(ctx, mangaID.Value())
		if err != nil {
			continue
		}

		for i, c := range chapters {
			info := model.ChapterInformation{
				Id:            model.NewChapterId(mangaID, c.Id),
				MangaOrder:    i,
				Title:         c.Title,
				Scanlator:     c.Scanlator,
				ChapterNumber: float32PtrToFloat64Ptr(c.ChapterNum),
				VolumeNumber:  float32PtrToFloat64Ptr(c.Volume),
			}
			_ = db.UpsertChapterInformation(ctx, info)
		}
	}

	return nil
}

func float32PtrToFloat64Ptr(f *float32) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}
