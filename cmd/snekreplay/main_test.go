package main

import (
	"testing"
	"time"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/replay"
)

func TestPickSession(t *testing.T) {
	sessions := []replay.Session{
		{ID: "aaa", Frames: []replay.Frame{{SessionID: "aaa"}}},
		{ID: "bbb", Frames: []replay.Frame{{SessionID: "bbb"}}},
	}

	tests := []struct {
		sel     string
		want    string
		wantErr bool
	}{
		{sel: "0", want: "aaa"},
		{sel: "1", want: "bbb"},
		{sel: "bbb", want: "bbb"},
		{sel: "2", wantErr: true},
		{sel: "-1", wantErr: true},
		{sel: "ccc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			got, err := pickSession(sessions, tt.sel)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got.ID)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.ID != tt.want {
				t.Fatalf("got %s want %s", got.ID, tt.want)
			}
		})
	}
}

func TestLoadFramesFromDirAndFile(t *testing.T) {
	dir := t.TempDir()
	cfg := game.DefaultConfig()
	snap := game.NewGameState(cfg, nil).Snapshot(cfg)

	path, err := replay.WriteBatchParquetAtomic(dir, []replay.Frame{
		replay.FrameFromSnapshot("s1", snap, time.UnixMilli(1000)),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range []string{dir, path} {
		frames, err := loadFrames(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if len(frames) != 1 || frames[0].SessionID != "s1" {
			t.Fatalf("%s: frames=%+v", in, frames)
		}
		snaps, err := snapshots(replay.Sessions(frames)[0])
		if err != nil {
			t.Fatal(err)
		}
		if snaps[0].Food != snap.Food || len(snaps[0].Body) != 3 {
			t.Fatalf("decoded %+v want %+v", snaps[0], snap)
		}
	}

	if _, err := loadFrames(dir + "/missing"); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
