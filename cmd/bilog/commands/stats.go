package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByStage     map[log.Stage]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Commands          map[string]*CommandStats
	Clients           map[string]int
	SessionChanges    map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// CommandStats holds statistics for a single command name.
type CommandStats struct {
	Sent      int
	Responses int
	Failures  int
	Total     time.Duration
	Max       time.Duration
}

// Average returns the mean round-trip time of the answered requests.
func (c *CommandStats) Average() time.Duration {
	if c.Responses == 0 {
		return 0
	}
	return c.Total / time.Duration(c.Responses)
}

func newStats() *Stats {
	return &Stats{
		EventsByStage:     make(map[log.Stage]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Commands:          make(map[string]*CommandStats),
		Clients:           make(map[string]int),
		SessionChanges:    make(map[string]int),
	}
}

func (s *Stats) command(name string) *CommandStats {
	cs, ok := s.Commands[name]
	if !ok {
		cs = &CommandStats{}
		s.Commands[name] = cs
	}
	return cs
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByStage[event.Stage]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++
	if event.ClientID != "" {
		s.Clients[event.ClientID]++
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch {
	case event.Request != nil:
		s.command(event.Request.Command).Sent++
	case event.Response != nil:
		cs := s.command(event.Response.Command)
		cs.Responses++
		cs.Total += event.Response.Duration
		if event.Response.Duration > cs.Max {
			cs.Max = event.Response.Duration
		}
		if event.Response.Result != "success" {
			cs.Failures++
		}
	case event.Auth != nil:
		s.SessionChanges[event.Auth.NewState]++
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, path, stats)
	return nil
}

func printStats(w io.Writer, path string, stats *Stats) {
	fmt.Fprintf(w, "Capture: %s\n\n", path)
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}

	duration := stats.TimeRange.End.Sub(stats.TimeRange.Start)
	fmt.Fprintf(w, "Time range:   %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Clients:      %d\n", len(stats.Clients))
	fmt.Fprintf(w, "Errors:       %d\n\n", stats.Errors)

	fmt.Fprintln(w, "By stage:")
	for _, s := range []log.Stage{log.StageTransport, log.StageAuth, log.StageDispatch} {
		if n := stats.EventsByStage[s]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", s.String(), n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	for _, d := range []log.Direction{log.DirectionOut, log.DirectionIn} {
		if n := stats.EventsByDirection[d]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", d.String(), n)
		}
	}

	if len(stats.Commands) > 0 {
		names := make([]string, 0, len(stats.Commands))
		for name := range stats.Commands {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w, "\nCommands:")
		fmt.Fprintf(w, "  %-12s %6s %6s %6s %12s %12s\n", "CMD", "SENT", "RECV", "FAIL", "AVG", "MAX")
		for _, name := range names {
			cs := stats.Commands[name]
			fmt.Fprintf(w, "  %-12s %6d %6d %6d %12s %12s\n",
				name, cs.Sent, cs.Responses, cs.Failures,
				formatDuration(cs.Average()), formatDuration(cs.Max))
		}
	}

	if len(stats.SessionChanges) > 0 {
		states := make([]string, 0, len(stats.SessionChanges))
		for state := range stats.SessionChanges {
			states = append(states, state)
		}
		sort.Strings(states)

		fmt.Fprintln(w, "\nSession changes:")
		for _, state := range states {
			fmt.Fprintf(w, "  %-14s %d\n", state, stats.SessionChanges[state])
		}
	}
}
