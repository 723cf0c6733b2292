package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/batch"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
)

// NewBatchCmd creates the batch command: downloads several chapters of
// a manga in one run, reporting progress as it goes.
func NewBatchCmd(dataDirectory *string) *cobra.Command {
	var filterName string
	var count int
	var scanlator string
	var chapterIDs string
	var lang string

	cmd := &cobra.Command{
		Use:   "batch <source> <manga-id>",
		Short: "Download several chapters of a manga in one run",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sourceID, mangaIDValue := args[0], args[1]

			withApp(dataDirectory, cmd, func(a *app) error {
				ctx := context.Background()

				src, ok := a.Manager.Get(sourceID)
				if !ok {
					return rerr.Newf(rerr.NotFound, "source %s is not installed", sourceID)
				}

				mangaID := model.NewMangaId(model.NewSourceId(sourceID), mangaIDValue)

				chapters, err := a.DB.ListChapterInformations(ctx, mangaID)
				if err != nil {
					return err
				}

				filter, err := parseBatchFilter(filterName, count, scanlator, chapterIDs)
				if err != nil {
					return err
				}

				selected := batch.Select(filter, chapters, func(id model.ChapterId) bool {
					read, _ := a.DB.IsChapterRead(ctx, id)
					return read
				})

				manga := mangaInformationOrBareId(ctx, a, mangaID)

				batch.Run(ctx, src, a.Storage, manga, selected, lang, func(p batch.Progress) {
					switch p.Kind {
					case batch.Progressing:
						cmd.Printf("downloaded %d/%d\n", p.Downloaded, p.Total)
					case batch.Finished:
						cmd.Printf("finished: %d/%d chapters downloaded\n", p.Downloaded, p.Total)
					case batch.Cancelled:
						cmd.Printf("cancelled after %d/%d chapters\n", p.Downloaded, p.Total)
					case batch.Errored:
						cmd.PrintErrf("failed after %d/%d chapters: %s (%s)\n", p.Downloaded, p.Total, p.ErrorMessage, p.ErrorKind)
					}
				})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filterName, "filter", "all-unread", "one of: all-unread, next-unread, by-scanlator, explicit")
	cmd.Flags().IntVar(&count, "count", 0, "chapter cap for next-unread/by-scanlator (0 = no cap)")
	cmd.Flags().StringVar(&scanlator, "scanlator", "", "scanlation group name for by-scanlator")
	cmd.Flags().StringVar(&chapterIDs, "chapter-ids", "", "comma-separated chapter ids for explicit")
	cmd.Flags().StringVar(&lang, "lang", "en", "language to record in each chapter's ComicInfo.xml")

	return cmd
}

func parseBatchFilter(name string, count int, scanlator, chapterIDs string) (batch.Filter, error) {
	switch name {
	case "all-unread":
		return batch.Filter{Kind: batch.AllUnread}, nil
	case "next-unread":
		return batch.Filter{Kind: batch.NextUnread, Count: count}, nil
	case "by-scanlator":
		return batch.Filter{Kind: batch.ByScanlator, Scanlator: scanlator, Count: count}, nil
	case "explicit":
		return batch.Filter{Kind: batch.Explicit, ChapterIDs: strings.Split(chapterIDs, ",")}, nil
	default:
		return batch.Filter{}, rerr.Newf(rerr.Other, "unknown filter %q", name)
	}
}
