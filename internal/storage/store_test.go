package storage

import (
	"path/filepath"
	"testing"
)

type alertRecord struct {
	Symbol string  `json:"symbol"`
	Target float64 `json:"target"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	fs := NewFileStore(path)
	if err := fs.Load(); err != nil {
		t.Fatalf("load on missing file: %v", err)
	}

	want := []alertRecord{{Symbol: "AAPL", Target: 210.5}, {Symbol: "NVDA", Target: 180}}
	if err := fs.Put("portfolio_alerts", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A fresh store over the same file must see the persisted value.
	fresh := NewFileStore(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	var got []alertRecord
	found, err := fresh.Get("portfolio_alerts", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected key to survive reload")
	}
	if len(got) != 2 || got[0].Symbol != "AAPL" || got[1].Target != 180 {
		t.Errorf("unexpected round-trip value: %+v", got)
	}
}

func TestFileStoreGetMissingKey(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	var out alertRecord
	found, err := fs.Get("nope", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("missing key reported as found")
	}
}

func TestFileStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	fs := NewFileStore(path)

	if err := fs.Put("alert_settings", alertRecord{Symbol: "PLTR"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := fs.Delete("alert_settings"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := fs.Delete("alert_settings"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}

	fresh := NewFileStore(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	var out alertRecord
	found, _ := fresh.Get("alert_settings", &out)
	if found {
		t.Error("deleted key still present after reload")
	}
}
