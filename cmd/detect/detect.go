package detect

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/dialect"
)

// Command creates the detect command for classifying label markup files.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [markup file]",
		Short: "Detect the markup dialect of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			detected := dialect.Detect(string(data))
			fmt.Println(detected)
			if settings.Debug && detected == dialect.Unknown {
				fmt.Fprintln(os.Stderr, "no known dialect signature matched, payload will be sent as-is")
			}
			return nil
		},
	}

	return cmd
}
