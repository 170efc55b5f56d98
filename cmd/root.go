package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avikko/labelrun-go/cmd/designs"
	"github.com/avikko/labelrun-go/cmd/detect"
	"github.com/avikko/labelrun-go/cmd/devices"
	"github.com/avikko/labelrun-go/cmd/history"
	"github.com/avikko/labelrun-go/cmd/preview"
	"github.com/avikko/labelrun-go/cmd/print"
	"github.com/avikko/labelrun-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "labelrun",
		Short: "labelrun CLI",
		Long:  "Serial-aware label printing: detect markup dialects, expand templates and drive raw printer devices with an auditable serial ledger.",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		print.Command(settings),
		devices.Command(settings),
		history.Command(settings),
		detect.Command(settings),
		preview.Command(settings),
		designs.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
