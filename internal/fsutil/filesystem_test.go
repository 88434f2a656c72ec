package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryFileSystem_ReadFile(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("dir/../a.json", []byte("{}"))

	data, err := m.ReadFile("a.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("got %q, want {}", data)
	}

	// Returned data is a copy.
	data[0] = 'x'
	again, _ := m.ReadFile("a.json")
	if string(again) != "{}" {
		t.Errorf("stored data was mutated: %q", again)
	}
}

func TestMemoryFileSystem_Missing(t *testing.T) {
	m := NewMemoryFileSystem()
	if _, err := m.ReadFile("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want ErrNotExist", err)
	}
	if _, err := m.Open("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open error = %v, want ErrNotExist", err)
	}
	if _, err := m.Stat("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat error = %v, want ErrNotExist", err)
	}
}

func TestMemoryFileSystem_OpenAndStat(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("events.jsonl", []byte("line1\nline2\n"))

	rc, err := m.Open("events.jsonl")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(b), "line1") {
		t.Errorf("unexpected content %q", b)
	}

	info, err := m.Stat("events.jsonl")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 12 || info.Name() != "events.jsonl" || info.IsDir() {
		t.Errorf("unexpected info: size=%d name=%s dir=%v", info.Size(), info.Name(), info.IsDir())
	}
}

func TestReadBounded(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("small", []byte("abc"))
	m.WriteFile("big", make([]byte, 100))

	if _, err := ReadBounded(m, "small", 10); err != nil {
		t.Errorf("small file rejected: %v", err)
	}
	if _, err := ReadBounded(m, "big", 10); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
	if _, err := ReadBounded(m, "missing", 10); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOSFileSystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	var fsys FileSystem = OSFileSystem{}
	data, err := ReadBounded(fsys, path, 1024)
	if err != nil {
		t.Fatalf("ReadBounded: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}

	rc, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()
}
