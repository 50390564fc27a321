package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dougsko/rigd/pkg/client"
	"github.com/dougsko/rigd/pkg/storage"
)

var eventsFlags = struct {
	limit  int
	since  int64
	follow bool
	every  time.Duration
}{}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show journalled radio events",
	Args:  cobra.NoArgs,
	RunE:  runWithClient(events),
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsFlags.limit, "limit", "n", 20, "number of recent events")
	eventsCmd.Flags().Int64Var(&eventsFlags.since, "since", -1, "show events after this id, oldest first")
	eventsCmd.Flags().BoolVarP(&eventsFlags.follow, "follow", "f", false, "keep printing new events")
	eventsCmd.Flags().DurationVar(&eventsFlags.every, "interval", time.Second, "poll interval with --follow")
	rootCmd.AddCommand(eventsCmd)
}

func printEvent(w io.Writer, ev storage.RigEvent) {
	ts := ev.Timestamp.Local().Format("2006-01-02 15:04:05")
	switch ev.Kind {
	case "freq":
		fmt.Fprintf(w, "%6d %s %-7s %-4s %s %d Hz\n", ev.ID, ts, ev.Source, ev.Kind, ev.VFO, ev.Frequency)
	case "mode":
		fmt.Fprintf(w, "%6d %s %-7s %-4s %s %s %d Hz\n", ev.ID, ts, ev.Source, ev.Kind, ev.VFO, ev.Mode, ev.Width)
	default:
		fmt.Fprintf(w, "%6d %s %-7s %-4s %s\n", ev.ID, ts, ev.Source, ev.Kind, ev.Detail)
	}
}

func events(c *client.SocketClient, cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	var (
		list []storage.RigEvent
		err  error
	)
	if eventsFlags.since >= 0 {
		list, err = c.EventsSince(eventsFlags.since)
	} else {
		list, err = c.GetEvents(eventsFlags.limit)
		// newest first on the wire, oldest first on screen
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	if err != nil {
		return err
	}

	last := eventsFlags.since
	for _, ev := range list {
		printEvent(out, ev)
		last = ev.ID
	}
	if !eventsFlags.follow {
		return nil
	}
	if last < 0 {
		last = 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return followEvents(ctx, c, out, last, eventsFlags.every)
}

func followEvents(ctx context.Context, c *client.SocketClient, out io.Writer, last int64, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			list, err := c.EventsSince(last)
			if err != nil {
				return err
			}
			for _, ev := range list {
				printEvent(out, ev)
				last = ev.ID
			}
		}
	}
}
