package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewSourceCmd creates the source command group: install, uninstall,
// and list.
func NewSourceCmd(dataDirectory *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage installed sources",
	}

	cmd.AddCommand(
		newSourceInstallCmd(dataDirectory),
		newSourceUninstallCmd(dataDirectory),
		newSourceListCmd(dataDirectory),
	)

	return cmd
}

func newSourceInstallCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "install <file.aix>",
		Short: "Install a source from an archive",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withApp(dataDirectory, cmd, func(a *app) error {
				if err := a.Manager.Install(context.Background(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Installed %s\n", args[0])
				return nil
			})
		},
	}
}

func newSourceUninstallCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <id>",
		Short: "Uninstall a source by its manifest id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withApp(dataDirectory, cmd, func(a *app) error {
				if err := a.Manager.Uninstall(context.Background(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Uninstalled %s\n", args[0])
				return nil
			})
		},
	}
}

func newSourceListCmd(dataDirectory *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed sources",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(dataDirectory, cmd, func(a *app) error {
				for _, manifest := range a.Manager.List() {
					cmd.Printf("%s\t%s\t%s\t%s\n", manifest.Id, manifest.Name, manifest.Version, manifest.Lang)
				}
				return nil
			})
		},
	}
}
