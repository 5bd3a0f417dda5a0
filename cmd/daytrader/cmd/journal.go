package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the audit log",
	Long: `Read recent entries from the append-only audit log.

Examples:
  daytrader journal tail
  daytrader journal tail -n 100 --json`,
}

var journalTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent audit entries",
	Args:  cobra.NoArgs,
	RunE:  runJournalTail,
}

var journalLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last state-bearing entry",
	Long:  "Print the most recent entry carrying an after-state, the record recovery would trust.",
	Args:  cobra.NoArgs,
	RunE:  runJournalLast,
}

var (
	journalPath  string
	journalLimit int
	journalJSON  bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTailCmd)
	journalCmd.AddCommand(journalLastCmd)

	journalCmd.PersistentFlags().StringVarP(&journalPath, "log", "l", "./audit_log.jsonl", "path to audit log")
	journalTailCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of entries to show")
	journalTailCmd.Flags().BoolVar(&journalJSON, "json", false, "print raw JSON lines")
}

func runJournalLast(cmd *cobra.Command, args []string) error {
	j, err := journal.NewFile(journalPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer j.Close()

	e, ok, err := j.LastStateBearing()
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	if !ok {
		fmt.Println("no state-bearing entries")
		return nil
	}
	return json.NewEncoder(os.Stdout).Encode(e)
}

func runJournalTail(cmd *cobra.Command, args []string) error {
	j, err := journal.NewFile(journalPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer j.Close()

	entries, err := j.Recent(journalLimit)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	if journalJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-13s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Event)
		switch e.Event {
		case journal.KindEntry:
			line += fmt.Sprintf("  %s x%d @ $%.2f (stop %.2f, take %.2f)",
				e.Ticker, e.Quantity, e.Price, e.StopLoss, e.TakeProfit)
		case journal.KindExit:
			line += fmt.Sprintf("  %s @ $%.2f %s", e.Ticker, e.Price, e.ExitReason)
			if e.PnL != nil {
				line += fmt.Sprintf(" (pnl %+.2f)", *e.PnL)
			}
		default:
			if e.Message != "" {
				line += "  " + e.Message
			}
		}
		fmt.Println(line)
	}
	return nil
}
