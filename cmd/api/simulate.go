// cmd/api/simulate.go

package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mixee/internal/app"
	"mixee/internal/domain/activity"
)

var simulateDuration time.Duration

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the pulse headless and print what it produces",
	Long: `Activates the pulse and navigation badges for a fixed duration, printing every
counter tick and generated event, then the retained feed with relative ages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer application.Dispose()

		return simulate(cmd, application, simulateDuration)
	},
}

func init() {
	simulateCmd.Flags().DurationVarP(&simulateDuration, "duration", "d", 30*time.Second, "how long to run the simulation")
}

func simulate(cmd *cobra.Command, application *app.App, duration time.Duration) error {
	out := cmd.OutOrStdout()

	// Tick and event goroutines print concurrently
	var mu sync.Mutex
	printf := func(format string, a ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, a...)
	}

	application.Pulse.RegisterTickHandler(func(s activity.Stats) {
		printf("stats  nearby=%d active=%d connections=%d videos=%d posts=%d\n",
			s.NearbyUsers, s.ActiveNow, s.TotalConnections, s.VideosWatched, s.NewPosts)
	})
	application.Pulse.RegisterEventHandler(func(e activity.Event) {
		printf("event  [%s] %s %s%s\n", e.Category, e.Actor, e.Description, locationSuffix(e.Location))
	})
	application.Badges.RegisterChangeHandler(func(badges []activity.Badge) {
		printf("badges %s\n", formatBadges(badges))
	})

	application.Pulse.SetActive(true)
	application.Badges.SetActive(true)

	select {
	case <-cmd.Context().Done():
	case <-time.After(duration):
	}

	events := application.Pulse.RecentEvents()
	application.Pulse.SetActive(false)
	stats := application.Pulse.Stats()
	application.Badges.SetActive(false)

	mu.Lock()
	defer mu.Unlock()
	printFeed(out, events, time.Now())
	fmt.Fprintf(out, "after deactivation: %+v\n", stats)

	return nil
}

func printFeed(out io.Writer, events []activity.Event, now time.Time) {
	fmt.Fprintf(out, "retained %d events\n", len(events))
	for _, e := range events {
		fmt.Fprintf(out, "  %-9s %s %s%s\n", activity.RelativeAge(e.CreatedAt, now), e.Actor, e.Description, locationSuffix(e.Location))
	}
}

func formatBadges(badges []activity.Badge) string {
	s := ""
	for i, b := range badges {
		if i > 0 {
			s += " "
		}
		display := b.Display
		if display == "" {
			display = "-"
		}
		s += b.Section + "=" + display
	}
	return s
}

func locationSuffix(location string) string {
	if location == "" {
		return ""
	}
	return " in " + location
}
