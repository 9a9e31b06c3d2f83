package main

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
	"github.com/tsinghua-fib-lab/roadrage-sim/task"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the simulation with the sidecar RPC services and the display",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			sidecar := syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
			t, err := task.NewContext(*job, c, sidecar, true)
			if err != nil {
				sidecar.Close()
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				if _, ok := <-sigCh; ok {
					log.Infof("received signal, closing")
					t.Close()
				}
			}()

			t.Run()
			logSummary(t)
			return nil
		},
	}
}

func newSimulateCmd() *cobra.Command {
	var ticks int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a fixed number of ticks headless and log the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 0 {
				return fmt.Errorf("--ticks must be non-negative, got %d", ticks)
			}
			c, err := loadConfig()
			if err != nil {
				return err
			}
			c.Output.Display = ""
			t, err := task.NewContext(*job, c, nil, false)
			if err != nil {
				return err
			}
			defer t.Close()
			t.Init()
			for range ticks {
				t.StepOnce()
			}
			logSummary(t)
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 100, "number of ticks to simulate")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the map and signal programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := task.BuildEngine(c)
			if err != nil {
				return err
			}
			s := e.Snapshot()
			log.Infof("map ok: %dx%d, %d signal cells, %d vehicles", s.Width, s.Height, len(s.Lights), len(s.Vehicles))
			counts := lo.CountValuesBy(s.Vehicles, func(v engine.VehicleView) string { return v.Kind })
			for _, kind := range sortedKeys(counts) {
				log.Infof("  %s: %d", kind, counts[kind])
			}
			return nil
		},
	}
}

func logSummary(t *task.Context) {
	stats := t.Stats()
	log.Infof("finished at step %d (%s): moves=%d collisions=%d deaths=%d",
		t.Clock().InternalStep, t.Clock(), stats.Moves, stats.Collisions, stats.Deaths)
	alive := t.CountAlive()
	for _, kind := range sortedKeys(alive) {
		log.Infof("  %s alive: %d", kind, alive[kind])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
