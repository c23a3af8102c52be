// Package replay records session frames to Parquet and reads them back.
package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekpad/game"
)

const schemaName = "snek_frame_v1"

// Frame is one published snapshot of one session.
type Frame struct {
	SessionID  string `parquet:"session_id,dict"`
	RecordedAt int64  `parquet:"recorded_at_ms"`
	Turn       int32  `parquet:"turn"`
	Cols       int32  `parquet:"cols"`
	Rows       int32  `parquet:"rows"`
	Wall       int32  `parquet:"wall"`
	Heading    string `parquet:"heading,dict"`
	Alive      bool   `parquet:"alive"`
	Score      int32  `parquet:"score"`
	Cause      string `parquet:"cause,dict"`

	FoodX int32 `parquet:"food_x"`
	FoodY int32 `parquet:"food_y"`

	// Body, head first.
	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`
}

func FrameFromSnapshot(sessionID string, s game.Snapshot, at time.Time) Frame {
	f := Frame{
		SessionID:  sessionID,
		RecordedAt: at.UnixMilli(),
		Turn:       int32(s.Turn),
		Cols:       int32(s.Cols),
		Rows:       int32(s.Rows),
		Wall:       int32(s.Wall),
		Heading:    s.Heading.String(),
		Alive:      s.Alive,
		Score:      int32(s.Score),
		Cause:      s.Cause.String(),
		FoodX:      int32(s.Food.X),
		FoodY:      int32(s.Food.Y),
		BodyX:      make([]int32, len(s.Body)),
		BodyY:      make([]int32, len(s.Body)),
	}
	for i, p := range s.Body {
		f.BodyX[i] = int32(p.X)
		f.BodyY[i] = int32(p.Y)
	}
	return f
}

// Snapshot rebuilds the game snapshot the frame was recorded from.
func (f Frame) Snapshot() (game.Snapshot, error) {
	if len(f.BodyX) != len(f.BodyY) {
		return game.Snapshot{}, fmt.Errorf("frame %s/%d: body_x has %d cells, body_y %d", f.SessionID, f.Turn, len(f.BodyX), len(f.BodyY))
	}
	heading, err := game.ParseDirection(f.Heading)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("frame %s/%d: %w", f.SessionID, f.Turn, err)
	}
	cause, err := game.ParseCause(f.Cause)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("frame %s/%d: %w", f.SessionID, f.Turn, err)
	}

	body := make([]game.Point, len(f.BodyX))
	for i := range f.BodyX {
		body[i] = game.Point{X: int(f.BodyX[i]), Y: int(f.BodyY[i])}
	}
	return game.Snapshot{
		Cols:    int(f.Cols),
		Rows:    int(f.Rows),
		Wall:    int(f.Wall),
		Body:    body,
		Heading: heading,
		Food:    game.Point{X: int(f.FoodX), Y: int(f.FoodY)},
		Alive:   f.Alive,
		Score:   int(f.Score),
		Turn:    int(f.Turn),
		Cause:   cause,
	}, nil
}

// WriteBatchParquetAtomic writes rows into outDir/tmp and then atomically
// moves the file into outDir, so readers never see a partial file.
// The returned path is the final parquet file path.
func WriteBatchParquetAtomic(outDir string, rows []Frame) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("frames_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

func ReadFile(path string) ([]Frame, error) {
	rows, err := parquet.ReadFile[Frame](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadDir reads every finished batch file in dir, skipping tmp/.
func ReadDir(dir string) ([]Frame, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(paths)

	var all []Frame
	for _, p := range paths {
		rows, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// Session is every frame of one session in turn order.
type Session struct {
	ID     string
	Frames []Frame
}

func (s Session) Last() Frame {
	return s.Frames[len(s.Frames)-1]
}

// Sessions groups frames by session. Sessions are ordered by their first
// recorded frame, frames within a session by turn.
func Sessions(frames []Frame) []Session {
	byID := make(map[string]int)
	var out []Session
	for _, f := range frames {
		i, ok := byID[f.SessionID]
		if !ok {
			i = len(out)
			byID[f.SessionID] = i
			out = append(out, Session{ID: f.SessionID})
		}
		out[i].Frames = append(out[i].Frames, f)
	}

	for i := range out {
		sort.SliceStable(out[i].Frames, func(a, b int) bool {
			return out[i].Frames[a].Turn < out[i].Frames[b].Turn
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return firstRecorded(out[a]) < firstRecorded(out[b])
	})
	return out
}

func firstRecorded(s Session) int64 {
	first := s.Frames[0].RecordedAt
	for _, f := range s.Frames[1:] {
		if f.RecordedAt < first {
			first = f.RecordedAt
		}
	}
	return first
}
