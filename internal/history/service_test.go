package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framereel/framereel-agent/internal/db"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database.Conn())
}

func setupService(t *testing.T, limits Limits) *Service {
	t.Helper()
	svc := NewService(setupRepo(t), limits, nil)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc
}

func TestService_SaveAndGet(t *testing.T) {
	svc := setupService(t, Limits{MaxItems: 50, MaxBytes: 1 << 20})
	ctx := context.Background()

	data := []byte("GIF89a-payload")
	entry, err := svc.Save(ctx, data, Metadata{FrameCount: 3, AverageDelayMs: 120, Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(entry.FileName, "animation_") || !strings.HasSuffix(entry.FileName, ".gif") {
		t.Errorf("default file name = %q", entry.FileName)
	}
	if entry.Size != int64(len(data)) {
		t.Errorf("Size = %d", entry.Size)
	}

	got, gotData, err := svc.Data(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !bytes.Equal(gotData, data) {
		t.Errorf("data = %q", gotData)
	}
	if got.FrameCount != 3 || got.AverageDelayMs != 120 || got.Width != 64 || got.Height != 48 {
		t.Errorf("entry = %+v", got)
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, entry.CreatedAt)
	}
}

func TestService_NewestFirstAndItemLimit(t *testing.T) {
	svc := setupService(t, Limits{MaxItems: 3, MaxBytes: 1 << 20})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		e, err := svc.Save(ctx, []byte{byte(i + 1)}, Metadata{FileName: string(rune('a'+i)) + ".gif"})
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
		ids = append(ids, e.ID)
	}

	entries, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{ids[4], ids[3], ids[2]} {
		if entries[i].ID != want {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].FileName, want)
		}
	}
	if _, err := svc.Get(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest entry not evicted: %v", err)
	}
}

func TestService_ByteLimit(t *testing.T) {
	svc := setupService(t, Limits{MaxItems: 50, MaxBytes: 10})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Save(ctx, bytes.Repeat([]byte{'x'}, 4), Metadata{}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 2 || stats.TotalBytes != 8 {
		t.Errorf("stats = %+v, want 2 entries / 8 bytes", stats)
	}

	if _, err := svc.Save(ctx, bytes.Repeat([]byte{'x'}, 11), Metadata{}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized Save err = %v", err)
	}
	if _, err := svc.Save(ctx, nil, Metadata{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty Save err = %v", err)
	}
}

func TestService_DeleteAndClear(t *testing.T) {
	svc := setupService(t, Limits{MaxItems: 50, MaxBytes: 1 << 20})
	ctx := context.Background()

	a, _ := svc.Save(ctx, []byte("a"), Metadata{})
	if _, err := svc.Save(ctx, []byte("b"), Metadata{}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}

	n, err := svc.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d, want 1", n)
	}
	entries, _ := svc.List(ctx)
	if len(entries) != 0 {
		t.Errorf("entries after Clear = %d", len(entries))
	}
}

func TestDefaultFileName(t *testing.T) {
	got := DefaultFileName(time.Date(2024, 3, 1, 10, 4, 5, 0, time.UTC))
	if got != "animation_20240301T100405.gif" {
		t.Errorf("DefaultFileName = %q", got)
	}
}
