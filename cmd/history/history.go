package history

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/datastore"
)

// Command creates the history command for querying the print ledger.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		designName string
		serial     int
		fromFlag   string
		toFlag     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the print ledger",
		Long:  "List ledger entries newest first, optionally filtered by design name, serial number or issuance time range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no datastore configured, enable output.sqlite or output.mysql")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			filter := datastore.PrintLogFilter{DesignName: designName}
			if cmd.Flags().Changed("serial") {
				filter.Serial = &serial
			}
			if fromFlag != "" {
				from, err := parseTimeFlag(fromFlag)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				filter.From = &from
			}
			if toFlag != "" {
				to, err := parseTimeFlag(toFlag)
				if err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
				filter.To = &to
			}

			records, err := store.SearchPrintLogs(filter)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no ledger entries match")
				return nil
			}

			fmt.Printf("%-20s %-8s %-20s %s\n", "DESIGN", "SERIAL", "ISSUED (UTC)", "REPRINT")
			for i := range records {
				r := &records[i]
				reprint := ""
				if r.Reprint {
					reprint = "yes"
				}
				fmt.Printf("%-20s %-8d %-20s %s\n",
					r.DesignName, r.Serial, r.IssuedAt.UTC().Format("2006-01-02 15:04:05"), reprint)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&designName, "design", "", "Filter by design name substring")
	cmd.Flags().IntVar(&serial, "serial", 0, "Filter by exact serial number")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Earliest issuance time (2006-01-02 or RFC3339)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Latest issuance time (2006-01-02 or RFC3339)")

	return cmd
}

// parseTimeFlag accepts a plain date or a full RFC3339 timestamp.
func parseTimeFlag(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
