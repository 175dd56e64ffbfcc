package main

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/alanwang67/message_board/report"
	"github.com/alanwang67/message_board/workload"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func newBenchCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Replay a generated workload from concurrent clients and report latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, v)
		},
	}

	defaults := workload.NewWorkloadGenerator()
	flags := cmd.Flags()
	flags.Int("clients", 4, "number of concurrent clients")
	flags.Int("ops", defaults.OperationCount, "operations per client")
	flags.Float64("index-percentage", defaults.IndexPercentage, "share of GET / operations")
	flags.Float64("send-percentage", defaults.SendPercentage, "share of POST /send operations")
	flags.Float64("clear-percentage", defaults.ClearPercentage, "share of POST /clear operations")
	flags.Int("message-size", defaults.MessageSize, "minimum message length in bytes")
	flags.Int64("seed", 0, "workload seed (0 seeds from the clock)")
	flags.Duration("delay", 0, "delay between operations of one client")
	flags.String("charts", "", "directory to write latency.png and throughput.png into")
	mustBind(v, flags, "clients", "ops", "index-percentage", "send-percentage", "clear-percentage", "message-size", "seed", "delay", "charts")

	return cmd
}

func runBench(cmd *cobra.Command, v *viper.Viper) error {
	clients := v.GetInt("clients")
	if clients < 1 {
		return fmt.Errorf("bench: clients must be at least 1, got %d", clients)
	}

	var (
		mu  sync.Mutex
		all []report.Sample
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	for i := 0; i < clients; i++ {
		gen := workload.NewWorkloadGenerator()
		gen.OperationCount = v.GetInt("ops")
		gen.IndexPercentage = v.GetFloat64("index-percentage")
		gen.SendPercentage = v.GetFloat64("send-percentage")
		gen.ClearPercentage = v.GetFloat64("clear-percentage")
		gen.MessageSize = v.GetInt("message-size")
		gen.InstructionDelay = v.GetDuration("delay")
		if seed := v.GetInt64("seed"); seed != 0 {
			gen.Seed = seed + int64(i)
		}
		if err := gen.Validate(); err != nil {
			return err
		}

		c, err := newBoardClient(v, uint64(i))
		if err != nil {
			return err
		}
		g.Go(func() error {
			samples, err := c.Start(ctx, gen.Generate())
			mu.Lock()
			all = append(all, samples...)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Elapsed < all[j].Elapsed })
	for i := range all {
		all[i].Index = i
	}

	summary := report.Summarize(all)
	fmt.Fprintf(cmd.OutOrStdout(), "clients=%d %s\n", clients, summary)

	if dir := v.GetString("charts"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := report.WriteCharts(dir, all); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "charts written to %s (%s samples)\n", dir, humanize.Comma(int64(len(all))))
	}
	return nil
}
