package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestUserIDIsStableAcrossStores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := NewStore(dir, nil).UserID()
	if first == "" {
		t.Fatalf("expected a generated identifier")
	}

	second := NewStore(dir, nil).UserID()
	if second != first {
		t.Fatalf("expected stable identifier, got %q then %q", first, second)
	}
}

func TestUserIDIsCachedInProcess(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), nil)
	if store.UserID() != store.UserID() {
		t.Fatalf("expected identical identifier on repeated calls")
	}
}

func TestUserIDPersistsAsJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := NewStore(dir, nil).UserID()

	data, err := os.ReadFile(filepath.Join(dir, "identity.json"))
	if err != nil {
		t.Fatalf("identity file not written: %v", err)
	}

	var rec struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("identity file not valid JSON: %v", err)
	}
	if rec.UserID != id {
		t.Fatalf("persisted %q, returned %q", rec.UserID, id)
	}
}

func TestFreshDirectoriesGetDistinctIdentifiers(t *testing.T) {
	t.Parallel()

	first := NewStore(t.TempDir(), nil).UserID()
	second := NewStore(t.TempDir(), nil).UserID()
	if first == second {
		t.Fatalf("expected distinct identifiers per install")
	}
}

func TestCorruptIdentityFileIsRegenerated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	id := NewStore(dir, nil).UserID()
	if id == "" {
		t.Fatalf("expected regenerated identifier")
	}

	// The regenerated identifier replaces the corrupt file.
	if again := NewStore(dir, nil).UserID(); again != id {
		t.Fatalf("expected regenerated identifier to persist, got %q then %q", id, again)
	}
}

func TestUnwritableDirFallsBackToProcessLifetimeID(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(string(os.PathSeparator), "proc", "voxstock-no-write"), nil)
	id := store.UserID()
	if id == "" {
		t.Fatalf("expected a process-lifetime identifier")
	}
	if store.UserID() != id {
		t.Fatalf("process-lifetime identifier must stay stable")
	}
}
