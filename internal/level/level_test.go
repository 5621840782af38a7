package level

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
	return path
}

func TestLoadParsesGridAndEntityScripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ghost1.m", "PASSO 200\nPOS 1 1\nD A\n")
	lvlPath := writeFile(t, dir, "01.lvl",
		"DIM 3 3\nTEMPO 150\nMON ghost1.m\nXXX\nXoX\nXX@\n")

	lvl, err := Load(lvlPath, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if lvl.Width != 3 || lvl.Height != 3 {
		t.Fatalf("got %dx%d, want 3x3", lvl.Width, lvl.Height)
	}
	if lvl.Tempo != 150 {
		t.Fatalf("got tempo %d, want 150", lvl.Tempo)
	}
	if len(lvl.Ghosts) != 1 {
		t.Fatalf("got %d ghosts, want 1", len(lvl.Ghosts))
	}
	if !lvl.Ghosts[0].HasPos || lvl.Ghosts[0].Row != 1 || lvl.Ghosts[0].Col != 1 {
		t.Fatalf("ghost script POS not parsed: %+v", lvl.Ghosts[0])
	}
	if len(lvl.Ghosts[0].Moves) != 2 {
		t.Fatalf("got %d moves, want 2: %+v", len(lvl.Ghosts[0].Moves), lvl.Ghosts[0].Moves)
	}

	mid := lvl.CellAt(1, 1)
	if mid == nil || !mid.HasDot {
		t.Fatalf("expected a dot at (1,1), got %+v", mid)
	}
	portal := lvl.CellAt(2, 2)
	if portal == nil || !portal.HasPortal {
		t.Fatalf("expected a portal at (2,2), got %+v", portal)
	}
	corner := lvl.CellAt(0, 0)
	if corner == nil || !corner.Wall {
		t.Fatalf("expected a wall at (0,0), got %+v", corner)
	}
}

func TestLoadRejectsMissingDim(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.lvl", "TEMPO 100\nXXX\n")
	if _, err := Load(path, dir); err == nil {
		t.Fatal("expected an error for a level with no DIM line")
	}
}

func TestLoadRejectsEmptyGrid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.lvl", "DIM 0 0\nTEMPO 100\n")
	if _, err := Load(path, dir); err == nil {
		t.Fatal("expected an error for a 0x0 level")
	}
}

func TestLoadLevelsFromDirOrdersAscending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02.lvl", "DIM 1 1\nTEMPO 1\nX\n")
	writeFile(t, dir, "10.lvl", "DIM 1 1\nTEMPO 1\nX\n")
	writeFile(t, dir, "01.lvl", "DIM 1 1\nTEMPO 1\nX\n")
	writeFile(t, dir, "ignored.txt", "not a level")

	names, err := LoadLevelsFromDir(dir)
	if err != nil {
		t.Fatalf("LoadLevelsFromDir: %v", err)
	}
	want := []string{"01.lvl", "02.lvl", "10.lvl"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}
