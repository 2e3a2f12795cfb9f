package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tickbot/broker"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/replay"
	tbsignal "github.com/rustyeddy/tickbot/signal"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Dry-run the signal bank over recorded ticks",
	Long: `Replay a CSV of recorded ticks (time,symbol,quote) through the scorer and
report every signal it would have generated. No orders are placed.

Example:
  tickbot replay --ticks data/r100.csv --contract DIGITOVER --barrier 4`,
	RunE: runReplay,
}

var (
	replayTicksPath string
	replayContract  string
	replayBarrier   int
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayTicksPath, "ticks", "", "CSV file of ticks (time,symbol,quote) (required)")
	replayCmd.Flags().StringVar(&replayContract, "contract", "DIGITEVEN", "contract type to score")
	replayCmd.Flags().IntVar(&replayBarrier, "barrier", 5, "barrier digit for DIGITOVER/DIGITUNDER/DIGITMATCH/DIGITDIFF")
	replayCmd.MarkFlagRequired("ticks")
}

func runReplay(cmd *cobra.Command, args []string) error {
	contract := market.ContractType(replayContract)
	if market.FamilyOf(contract) == market.FamilyUnknown {
		return fmt.Errorf("unknown contract type: %s", replayContract)
	}

	scorer := tbsignal.NewScorer(tbsignal.DefaultPolicy())
	book := market.NewBook()
	req := tbsignal.Request{Contract: contract, Barrier: replayBarrier}

	ticks := 0
	byContract := make(map[market.ContractType]int)
	var confSum float64
	var signals int

	err := replay.CSV(replayTicksPath, func(tk broker.TickEvent) error {
		book.Add(tk.Symbol, tk.Price)
		ticks++

		sig := scorer.Score(book.Buffer(tk.Symbol), tk.Symbol, req)
		if sig == nil {
			return nil
		}
		signals++
		byContract[sig.Contract]++
		confSum += sig.Confidence
		fmt.Printf("%6d  %-10s %-10s confidence %5.1f  %s\n",
			ticks, sig.Symbol, sig.Contract, sig.Confidence, sig.Reason)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("\n%d ticks, %d signals", ticks, signals)
	if signals > 0 {
		fmt.Printf(" (avg confidence %.1f)", confSum/float64(signals))
	}
	fmt.Println()
	for ct, n := range byContract {
		fmt.Printf("  %-10s %d\n", ct, n)
	}
	return nil
}
