package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
)

// NewSearchCmd creates the search command: runs a Title filter search
// against one installed source and prints page 1 of its results. Per
// spec.md's Non-goals, pagination past page 1 isn't wired.
func NewSearchCmd(dataDirectory *string) *cobra.Command {
	var sourceID string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a source for manga matching a query",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withApp(dataDirectory, cmd, func(a *app) error {
				src, ok := a.Manager.Get(sourceID)
				if !ok {
					return rerr.Newf(rerr.NotFound, "source %s is not installed", sourceID)
				}

				result, err := src.ListMangas(context.Background(), []model.SearchFilter{model.TitleFilter(args[0])}, 1)
				if err != nil {
					return err
				}

				for _, m := range result.Manga {
					title := m.Id
					if m.Title != nil {
						title = *m.Title
					}
					cmd.Printf("%s\t%s\n", m.Id, title)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "id of the source to search")
	cmd.MarkFlagRequired("source")

	return cmd
}
