package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/rerr"
)

// NewChaptersCmd creates the chapters command: lists every chapter a
// source reports for one manga.
func NewChaptersCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <source> <manga-id>",
		Short: "List chapters of a manga",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sourceID, mangaID := args[0], args[1]

			withApp(dataDirectory, cmd, func(a *app) error {
				src, ok := a.Manager.Get(sourceID)
				if !ok {
					return rerr.Newf(rerr.NotFound, "source %s is not installed", sourceID)
				}

				chapters, err := src.ListChapters(context.Background(), mangaID)
				if err != nil {
					return err
				}

				for _, c := range chapters {
					title := ""
					if c.Title != nil {
						title = *c.Title
					}
					cmd.Printf("%s\t%s\n", c.Id, title)
				}
				return nil
			})
		},
	}
}
