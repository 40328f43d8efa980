package cache

import (
	"os"
	"testing"
	"time"

	"github.com/ppiankov/factline/internal/model"
)

func testRecord(docID string) *model.Record {
	return &model.Record{
		DocumentID: docID,
		Turns:      1,
		Facts: []model.Fact{
			{
				ID:   "f-0001",
				Kind: model.KindMoney,
				Value: model.FactValue{
					Money: &model.MoneyValue{Amount: 2.5e6, Currency: "USD"},
				},
				Confidence: 1.0,
			},
		},
	}
}

func TestKey_ContentSensitive(t *testing.T) {
	a := Key("doc-1", "JV: We raised $2.5M.")
	b := Key("doc-1", "JV: We raised $2.5M.")
	if a != b {
		t.Error("Expected identical keys for identical input")
	}

	if a == Key("doc-1", "JV: We raised $3M.") {
		t.Error("Expected different key after a text edit")
	}
	if a == Key("doc-2", "JV: We raised $2.5M.") {
		t.Error("Expected different key for a different document id")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", testRecord("doc-1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	rec, found := c.Get("k")
	if !found || rec.DocumentID != "doc-1" {
		t.Errorf("Expected hit for doc-1, got %+v found=%v", rec, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, time.Minute)
	_ = c.Set("k", testRecord("doc-1"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestLayeredCache_DiskSurvivesMemoryLoss(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", testRecord("doc-1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh layered cache over the same directory simulates a restart:
	// memory is empty, disk must still serve and promote.
	fresh := NewLayeredCache(time.Minute, dir, time.Hour)
	rec, found := fresh.Get("k")
	if !found {
		t.Fatal("Expected disk hit after restart")
	}
	if rec.DocumentID != "doc-1" || len(rec.Facts) != 1 {
		t.Errorf("Expected doc-1 with 1 fact, got %+v", rec)
	}
	if rec.Facts[0].Value.Money == nil || rec.Facts[0].Value.Money.Amount != 2.5e6 {
		t.Errorf("Expected money fact to round-trip through disk, got %+v", rec.Facts[0].Value)
	}

	if _, found := fresh.memory.Get("k"); !found {
		t.Error("Expected disk hit promoted to memory")
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", testRecord("doc-1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupting entry: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected corrupt entry to read as a miss")
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	_ = c.Set("k", testRecord("doc-1"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after clear")
	}
}
