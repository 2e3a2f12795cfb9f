package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tickbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
}

var journalDBPath string

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded trades, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.NewSQLite(journalDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()

		trades, err := j.ListTrades()
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
		if len(trades) == 0 {
			fmt.Println("no trades recorded")
			return nil
		}

		var net float64
		for _, t := range trades {
			fmt.Printf("%s  %-10s %-10s stake %6.2f  %-4s %+7.2f  %s\n",
				t.CloseTime.Format("2006-01-02 15:04:05"),
				t.Symbol, t.Contract, t.Stake, t.Outcome, t.Profit, t.TradeID)
			net += t.Profit
		}
		fmt.Printf("\n%d trades, net %+.2f\n", len(trades), net)
		return nil
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <trade_id>",
	Short: "Show one trade record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.NewSQLite(journalDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()

		t, err := j.GetTrade(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Trade %s\n", t.TradeID)
		fmt.Printf("  Symbol:   %s\n", t.Symbol)
		fmt.Printf("  Contract: %s\n", t.Contract)
		fmt.Printf("  Stake:    %.2f\n", t.Stake)
		fmt.Printf("  Outcome:  %s (%+.2f)\n", t.Outcome, t.Profit)
		fmt.Printf("  Opened:   %s\n", t.OpenTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Settled:  %s\n", t.CloseTime.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVar(&journalDBPath, "db", "./tickbot.db", "path to SQLite journal DB")
}
