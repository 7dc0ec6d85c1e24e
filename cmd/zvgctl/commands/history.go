package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the contact history",
	}
	cmd.AddCommand(historyListCmd(), historyClearCmd())
	return cmd
}

// history list: show when each listing was last exported, newest first.
func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show when each listing was last exported",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := historySvc.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				out, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			if len(entries) == 0 {
				fmt.Println("contact history is empty")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONTACTED AT\tLISTING")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\n", e.ContactedAt, e.ID)
			}
			tw.Flush()
			fmt.Printf("%d entries\n", len(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw JSON instead of a table")
	return cmd
}

// history clear: wipe the history after a confirmation.
func historyClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe the contact history so every listing exports again",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := historySvc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("contact history is already empty")
				return nil
			}
			if !yes {
				fmt.Printf("Clear %d contact entries? [y/N]: ", len(entries))
				answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Println("aborted")
					return nil
				}
			}
			if err := historySvc.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("contact history cleared (%d entries)\n", len(entries))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
