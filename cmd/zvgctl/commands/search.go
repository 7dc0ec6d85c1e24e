package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zvgcli/pkg/contracts/domain"
)

// Query flags shared by search and export.
var (
	state            string
	auctionTypes     []string
	propertyTypes    []string
	minDays          int
	includeContacted bool
	jsonOut          bool
)

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&state, "state", "s", "", `federal state, code or name ("be", "Berlin")`)
	_ = cmd.MarkFlagRequired("state")
	cmd.Flags().StringSliceVarP(&auctionTypes, "auction-type", "a", nil, "keep only these auction kinds (substring is enough)")
	cmd.Flags().StringSliceVarP(&propertyTypes, "property-type", "p", nil, "keep only these property types (substring is enough)")
	cmd.Flags().IntVarP(&minDays, "min-days", "d", 0, "skip auctions less than N days away")
	cmd.Flags().BoolVar(&includeContacted, "include-contacted", false, "show listings that were exported recently")
}

// search: query one federal state and print the filtered listings.
func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query running foreclosure auctions in one federal state",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildQuery()
			if err != nil {
				return err
			}
			result, err := searchSvc.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if jsonOut {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			if result.Total == 0 {
				fmt.Println("no listings found")
			} else {
				printListings(os.Stdout, result.Listings)
				fmt.Printf("%d listings\n", result.Total)
			}
			if result.Suppressed > 0 {
				fmt.Printf("%d suppressed as recently contacted (--include-contacted shows them)\n", result.Suppressed)
			}
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw JSON instead of a table")
	return cmd
}

// buildQuery turns the query flags into a search query, resolving filter
// shorthands to the portal's exact wording.
func buildQuery() (domain.SearchQuery, error) {
	q := domain.SearchQuery{
		State:            state,
		MinDays:          minDays,
		IncludeContacted: includeContacted,
	}
	for _, v := range auctionTypes {
		c, err := resolveChoice(v, searchSvc.AuctionTypes())
		if err != nil {
			return domain.SearchQuery{}, fmt.Errorf("--auction-type: %w", err)
		}
		q.AuctionTypes = append(q.AuctionTypes, c)
	}
	for _, v := range propertyTypes {
		c, err := resolveChoice(v, searchSvc.PropertyTypes())
		if err != nil {
			return domain.SearchQuery{}, fmt.Errorf("--property-type: %w", err)
		}
		q.PropertyTypes = append(q.PropertyTypes, c)
	}
	return q, nil
}

// resolveChoice matches input against the selectable values, first exactly,
// then as a unique case-insensitive substring.
func resolveChoice(input string, choices []string) (string, error) {
	for _, c := range choices {
		if strings.EqualFold(input, c) {
			return c, nil
		}
	}
	needle := strings.ToLower(input)
	var matches []string
	for _, c := range choices {
		if strings.Contains(strings.ToLower(c), needle) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("unknown value %q, choose one of: %s", input, strings.Join(choices, " | "))
	default:
		return "", fmt.Errorf("%q matches more than one of: %s", input, strings.Join(matches, " | "))
	}
}

func printListings(w io.Writer, listings []domain.Listing) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tADDRESS\tCITY\tPROPERTY\tID")
	for _, l := range listings {
		addr := strings.TrimSpace(l.Street + " " + l.HouseNumbers)
		city := strings.TrimSpace(l.Zip + " " + l.City)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.Date, l.Time, addr, city, l.PropertyType, l.ID)
	}
	tw.Flush()
}
