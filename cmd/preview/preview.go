package preview

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/datastore"
	"github.com/avikko/labelrun-go/internal/preview"
	"github.com/avikko/labelrun-go/internal/tokens"
)

// Command creates the preview command for rendering a design to an image.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		designName string
		outputPath string
		sample     int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a design to an image",
		Long:  "Expand a stored design with a sample serial and render it through the configured preview endpoint. No serial is issued and nothing is logged to the ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !settings.Preview.Enabled {
				return fmt.Errorf("preview is disabled, enable preview in the configuration")
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

			markup := tokens.Expand(design.Markup, tokens.Context{
				Serial:    sample,
				Timestamp: time.Now(),
				Mode:      tokens.ModePreview,
			})

			renderer := preview.NewHTTP(settings)
			bitmap, err := renderer.Render(cmd.Context(), markup,
				design.WidthInches, design.HeightInches, design.Dpmm)
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, bitmap, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outputPath, err)
			}
			fmt.Printf("rendered %q to %s (%d bytes)\n", design.Name, outputPath, len(bitmap))
			return nil
		},
	}

	cmd.Flags().StringVar(&designName, "design", "", "Name of the stored design to render")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "preview.png", "Path of the image file to write")
	cmd.Flags().IntVar(&sample, "sample", 1, "Sample serial number used for the expansion")

	return cmd
}
