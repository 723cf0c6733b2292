package cmd

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/schedule"
)

// NewServeCmd creates the serve command: runs the periodic update
// check job on a cron schedule until the process receives a shutdown
// signal.
func NewServeCmd(dataDirectory *string) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic chapter update check",
		RunE: func(cmd *cobra.Command, args []string) error {
			withApp(dataDirectory, cmd, func(a *app) error {
				scheduler := schedule.New()
				scheduler.OnResult = func(job schedule.Job, err error) {
					if err != nil {
						log.Errorf("job %s failed: %v", job.Name, err)
						return
					}
					log.Infof("job %s completed", job.Name)
				}

				if err := scheduler.AddJob(schedule.NewUpdateCheckJob(cronSpec, a.DB, a.Manager)); err != nil {
					return err
				}

				scheduler.Start()
				log.Info("rakuyomi serve started, press Ctrl+C to stop")

				<-cmd.Context().Done()
				log.Info("shutting down")
				scheduler.Stop()
				return nil
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "@every 1h", "cron spec for the update check job")

	return cmd
}
