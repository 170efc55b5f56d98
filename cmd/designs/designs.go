package designs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/datastore"
	"github.com/avikko/labelrun-go/internal/dialect"
)

// Command creates the designs command for listing and importing label designs.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		importPath string
		name       string
		width      float64
		height     float64
		dpmm       int
	)

	cmd := &cobra.Command{
		Use:   "designs",
		Short: "List or import label designs",
		Long:  "Without flags, list the stored designs. With --import, read a markup file and store it as a new design.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no datastore configured, enable output.sqlite or output.mysql")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			if importPath != "" {
				return importDesign(store, importPath, name, width, height, dpmm)
			}
			return listDesigns(store)
		},
	}

	cmd.Flags().StringVar(&importPath, "import", "", "Markup file to import as a new design")
	cmd.Flags().StringVar(&name, "name", "", "Name for the imported design, defaults to the file name")
	cmd.Flags().Float64Var(&width, "width", 4, "Label width in inches")
	cmd.Flags().Float64Var(&height, "height", 6, "Label height in inches")
	cmd.Flags().IntVar(&dpmm, "dpmm", 8, "Print density in dots per millimetre")

	return cmd
}

func importDesign(store datastore.Interface, path, name string, width, height float64, dpmm int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	design := &datastore.Design{
		Name:         name,
		Markup:       string(data),
		WidthInches:  width,
		HeightInches: height,
		Dpmm:         dpmm,
	}
	if err := store.SaveDesign(design); err != nil {
		return err
	}

	fmt.Printf("imported %q (%s, %.1fx%.1f in, %d dpmm)\n",
		design.Name, dialect.Detect(design.Markup), width, height, dpmm)
	return nil
}

func listDesigns(store datastore.Interface) error {
	designs, err := store.ListDesigns()
	if err != nil {
		return err
	}
	if len(designs) == 0 {
		fmt.Println("no designs stored")
		return nil
	}

	fmt.Printf("%-20s %-8s %-10s %s\n", "NAME", "DIALECT", "SIZE (IN)", "CREATED")
	for i := range designs {
		d := &designs[i]
		fmt.Printf("%-20s %-8s %-10s %s\n",
			d.Name,
			dialect.Detect(d.Markup),
			fmt.Sprintf("%.1fx%.1f", d.WidthInches, d.HeightInches),
			d.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
