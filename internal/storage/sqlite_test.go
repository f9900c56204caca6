package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore("gems", "alice", 42); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("gems")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 42 {
		t.Errorf("Expected high score 42 after reopen, got %d", high)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.SaveScore("gems", "alice", score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("crypto", "bob", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("gems", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}
	if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
		t.Errorf("Scores not in descending order: %v", scores)
	}
	if scores[0].Player != "alice" {
		t.Errorf("Expected player alice, got %q", scores[0].Player)
	}

	crypto, err := store.TopScores("crypto", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(crypto) != 1 {
		t.Errorf("Expected 1 crypto score, got %d", len(crypto))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 5 {
		store.SaveScore("gems", "", (i+1)*100)
	}

	scores, err := store.TopScores("gems", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("gems")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore("gems", "", 100)
	store.SaveScore("gems", "", 300)
	store.SaveScore("gems", "", 200)

	high, err = store.HighScore("gems")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("gems", "", 100)
	store.SaveScore("gems", "", 200)
	store.SaveScore("crypto", "", 300)

	if err := store.ClearScores("gems"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	gems, _ := store.TopScores("gems", 10)
	if len(gems) != 0 {
		t.Errorf("Expected 0 gems scores after clear, got %d", len(gems))
	}
	crypto, _ := store.TopScores("crypto", 10)
	if len(crypto) != 1 {
		t.Errorf("crypto scores should not be affected by clearing gems")
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetGameStats("gems")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	store.SaveScore("gems", "", 10)
	store.SaveScore("gems", "", 30)

	stats, err := store.GetGameStats("gems")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 30 || stats.TotalScore != 40 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.AvgScore != 20 {
		t.Errorf("Expected average 20, got %f", stats.AvgScore)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}
}
