package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/printer"
)

// Command creates the devices command for listing and probing printer devices.
func Command(settings *conf.Settings) *cobra.Command {
	var selfTest string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List printer devices",
		Long:  "List the printer devices known to the operating system, marking the default. With --self-test, send a small test label to the named device instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			transport := printer.NewSystem(settings)

			if cmd.Flags().Changed("self-test") {
				if err := transport.SelfTest(selfTest); err != nil {
					return err
				}
				fmt.Printf("test label sent to %q\n", displayName(selfTest))
				return nil
			}

			names, err := transport.ListDevices()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no printer devices found")
				return nil
			}

			defaultDevice, err := transport.DefaultDevice()
			if err != nil {
				defaultDevice = ""
			}
			for _, name := range names {
				marker := " "
				if name == defaultDevice {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selfTest, "self-test", "", "Send a test label to the named device, empty for the OS default")

	return cmd
}

func displayName(device string) string {
	if device == "" {
		return "default device"
	}
	return device
}
