package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zvgcli/internal/services"
	"zvgcli/pkg/contracts/domain"
)

// export: search, select and write the address file in one go.
func exportCmd() *cobra.Command {
	var (
		format  string
		outPath string
		ids     []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching listings to a CSV or XLSX address file",
		Long: `Export runs the same query as search, expands the selected listings into
one row per house number and writes the address file. Exported listings are
recorded in the contact history and stay hidden from later searches until
the history entry ages out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildQuery()
			if err != nil {
				return err
			}
			result, err := searchSvc.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(result.Listings) == 0 {
				fmt.Println("no listings matched; nothing to export")
				if result.Suppressed > 0 {
					fmt.Printf("%d suppressed as recently contacted (--include-contacted shows them)\n", result.Suppressed)
				}
				return nil
			}

			selection := domain.SelectionSet{}
			if len(ids) > 0 {
				known := make(map[string]bool, len(result.Listings))
				for _, l := range result.Listings {
					known[l.ID] = true
				}
				for _, id := range ids {
					if !known[id] {
						return fmt.Errorf("listing %q is not in the current result set", id)
					}
					selection[id] = true
				}
			} else {
				for _, l := range result.Listings {
					selection[l.ID] = true
				}
			}

			out, err := exportSvc.Export(cmd.Context(), services.ExportRequest{
				Listings:  result.Listings,
				Selection: selection,
				Format:    format,
			})
			if errors.Is(err, services.ErrEmptySelection) {
				fmt.Println("no listings selected; nothing exported")
				return nil
			}
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = out.Filename
			}
			if err := os.WriteFile(path, out.Blob, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("wrote %s (%d addresses from %d listings)\n", path, out.Addresses, len(out.Contacted))
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatCSV, "output format: csv or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults to the standard filename in the working directory)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "export only these listing ids instead of the whole result")
	return cmd
}
