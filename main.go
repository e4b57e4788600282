package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/w31r4/gofreeze/internal/config"
	"github.com/w31r4/gofreeze/internal/logging"
	"github.com/w31r4/gofreeze/internal/process"
	"github.com/w31r4/gofreeze/internal/tui"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, config.Usage)
		return err
	}
	if cfg.Command == config.CommandHelp {
		fmt.Fprint(out, config.Usage)
		return nil
	}

	logger, closer, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ledgerPath := cfg.LedgerPath
	if ledgerPath == "" {
		if ledgerPath, err = process.DefaultLedgerPath(); err != nil {
			return fmt.Errorf("locate ledger: %w", err)
		}
	}
	ctl := process.NewController(ledgerPath, logger, process.DetailsOptions{
		ScanPorts:   cfg.ScanPorts,
		PortTimeout: cfg.PortTimeout,
	})
	logger.Debug().Str("command", string(cfg.Command)).Str("ledger", ledgerPath).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.Command {
	case config.CommandSuspend:
		return eachPid(cfg.PIDs, func(pid int32) error {
			res, err := ctl.Suspend(ctx, pid)
			if err != nil {
				return err
			}
			if res.Depth > 1 {
				fmt.Fprintf(out, "suspended %d (%s), depth %d\n", res.Pid, res.Executable, res.Depth)
			} else {
				fmt.Fprintf(out, "suspended %d (%s)\n", res.Pid, res.Executable)
			}
			return nil
		})
	case config.CommandResume:
		return eachPid(cfg.PIDs, func(pid int32) error {
			res, err := ctl.Resume(ctx, pid)
			if err != nil {
				return err
			}
			if res.Depth > 0 {
				fmt.Fprintf(out, "resumed %d (%s), still suspended %d more time(s)\n", res.Pid, res.Executable, res.Depth)
			} else {
				fmt.Fprintf(out, "resumed %d (%s)\n", res.Pid, res.Executable)
			}
			return nil
		})
	case config.CommandThaw:
		results, err := ctl.ResumeAll(ctx)
		for _, res := range results {
			fmt.Fprintf(out, "resumed %d (%s)\n", res.Pid, res.Executable)
		}
		if len(results) == 0 && err == nil {
			fmt.Fprintln(out, "nothing to resume")
		}
		return err
	case config.CommandLedger:
		entries, err := ctl.Ledger()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintf(out, "no suspended processes recorded in %s\n", ctl.LedgerPath())
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%-8d %-24s depth %d since %s\n", e.Pid, e.Executable, e.Depth, e.SuspendedAt.Local().Format(time.DateTime))
		}
		return nil
	}

	return tui.Start(ctl, tui.Options{Filter: cfg.Filter, Confirm: cfg.Confirm})
}

// eachPid runs fn for every pid, reporting failures without stopping.
func eachPid(pids []int32, fn func(pid int32) error) error {
	var errs []error
	for _, pid := range pids {
		if err := fn(pid); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d operations failed", len(errs), len(pids))
	}
	return nil
}
