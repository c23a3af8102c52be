// Command snekreplay lists recorded sessions and plays one back in the
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/replay"
	"github.com/brensch/snekpad/tui"
)

func main() {
	in := flag.String("in", "recordings", "A .parquet file or a directory of them")
	play := flag.String("play", "", "Session to play back: an index from the listing or a session id")
	interval := flag.Duration("interval", 120*time.Millisecond, "Time between frames during playback")
	stats := flag.Bool("stats", false, "Summarise sessions with DuckDB instead of listing them")
	sortKey := flag.String("sort", "started", "Sort for -stats: started, score, turns or frames")
	limit := flag.Int("limit", 0, "Maximum sessions for -stats, 0 for all")
	flag.Parse()

	if *stats {
		db, err := openFrames(*in)
		if err != nil {
			log.Fatalf("Failed to open recordings: %v", err)
		}
		defer db.Close()
		rows, err := querySessionStats(context.Background(), db, *sortKey, *limit)
		if err != nil {
			log.Fatalf("Failed to query sessions: %v", err)
		}
		printStats(rows)
		return
	}

	frames, err := loadFrames(*in)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	sessions := replay.Sessions(frames)
	if len(sessions) == 0 {
		log.Fatalf("No sessions in %s", *in)
	}

	if *play == "" {
		printSessions(sessions)
		return
	}

	s, err := pickSession(sessions, *play)
	if err != nil {
		log.Fatalf("%v", err)
	}
	snaps, err := snapshots(s)
	if err != nil {
		log.Fatalf("Failed to decode session %s: %v", s.ID, err)
	}

	p := tea.NewProgram(tui.NewReplay(snaps, *interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Playback failed: %v", err)
	}
}

func loadFrames(path string) ([]replay.Frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return replay.ReadDir(path)
	}
	return replay.ReadFile(path)
}

func printSessions(sessions []replay.Session) {
	fmt.Printf("%-4s %-36s %-20s %6s %6s %6s  %s\n", "#", "SESSION", "STARTED", "FRAMES", "TURNS", "SCORE", "END")
	for i, s := range sessions {
		last := s.Last()
		end := "running"
		if !last.Alive {
			end = last.Cause
		}
		started := time.UnixMilli(s.Frames[0].RecordedAt).Format("2006-01-02 15:04:05")
		fmt.Printf("%-4d %-36s %-20s %6d %6d %6d  %s\n", i, s.ID, started, len(s.Frames), last.Turn, last.Score, end)
	}
}

// pickSession resolves sel as a listing index first, then as a session id.
func pickSession(sessions []replay.Session, sel string) (replay.Session, error) {
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(sessions) {
			return replay.Session{}, fmt.Errorf("session index %d out of range [0,%d)", i, len(sessions))
		}
		return sessions[i], nil
	}
	for _, s := range sessions {
		if s.ID == sel {
			return s, nil
		}
	}
	return replay.Session{}, fmt.Errorf("no session %q", sel)
}

func snapshots(s replay.Session) ([]game.Snapshot, error) {
	out := make([]game.Snapshot, 0, len(s.Frames))
	for _, f := range s.Frames {
		snap, err := f.Snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}
