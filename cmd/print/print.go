package print

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avikko/labelrun-go/internal/batch"
	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/datastore"
	"github.com/avikko/labelrun-go/internal/printer"
	"github.com/avikko/labelrun-go/internal/tokens"
)

// Command creates the print command for running a label batch.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		designName string
		startFlag  int
		quantity   int
		reprint    bool
		showTokens bool
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print a batch of labels",
		Long:  "Expand a stored design for a run of serial numbers and send each label to the printer, logging every confirmed dispatch to the ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showTokens {
				printTokenTable()
				return nil
			}
			if designName == "" {
				return fmt.Errorf("--design is required")
			}

			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no datastore configured, enable output.sqlite or output.mysql")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			design, err := store.GetDesignByName(designName)
			if err != nil {
				return err
			}

			transport := printer.NewSystem(settings)
			orchestrator := batch.New(store, transport)

			start := startFlag
			if !cmd.Flags().Changed("start") {
				start, err = orchestrator.ResumeSerial(design.ID)
				if err != nil {
					return err
				}
			}

			result, err := orchestrator.Run(cmd.Context(), batch.Request{
				DesignID:    design.ID,
				Markup:      design.Markup,
				StartSerial: start,
				Quantity:    quantity,
				Device:      settings.Print.Device,
				Reprint:     reprint,
			})
			if err != nil {
				fmt.Printf("batch %s aborted after %d of %d labels\n", result.BatchID, result.Printed, quantity)
				return err
			}

			fmt.Printf("batch %s done: %d labels (%s), serials %d-%d\n",
				result.BatchID, result.Printed, result.Dialect, start, start+result.Printed-1)
			return nil
		},
	}

	setupFlags(cmd, settings, &designName, &startFlag, &quantity, &reprint, &showTokens)

	return cmd
}

// setupFlags configures flags specific to the print command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings, designName *string, start, quantity *int, reprint, showTokens *bool) {
	cmd.Flags().StringVar(designName, "design", "", "Name of the stored design to print")
	cmd.Flags().StringVar(&settings.Print.Device, "device", viper.GetString("print.device"), "Printer device name, empty for the OS default")
	cmd.Flags().IntVar(start, "start", 0, "First serial number, omit to resume after the last issued serial")
	cmd.Flags().IntVar(quantity, "qty", 1, "Number of labels to print")
	cmd.Flags().BoolVar(reprint, "reprint", false, "Mark the run as a reprint of previously issued serials")
	cmd.Flags().BoolVar(showTokens, "tokens", false, "List the supported template tokens and exit")
}

func printTokenTable() {
	for _, token := range tokens.Available() {
		fmt.Printf("%-12s %s\n", token.Token, token.Description)
	}
}
