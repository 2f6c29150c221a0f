package wal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type entry struct {
	Seq  int
	Name string
}

func TestWAL_WriteReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() unexpected error = %v", err)
	}
	want := []entry{{1, "salary"}, {2, "rent"}, {3, "coffee"}}
	for _, e := range want {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write() unexpected error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}

	// reopen like a restart
	w, err = NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() reopen unexpected error = %v", err)
	}
	defer w.Close()

	var got []entry
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll() unexpected error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %v, want %v", got, want)
	}

	// appending after a replay still lands at the end
	if err := w.Write(entry{4, "bonus"}); err != nil {
		t.Fatalf("Write() after ReadAll unexpected error = %v", err)
	}
	count := 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatalf("ReadAll() unexpected error = %v", err)
	}
	if count != 4 {
		t.Errorf("ReadAll() count = %d, want 4", count)
	}
}

func TestWAL_TornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	content := `{"Seq":1,"Name":"ok"}` + "\n" + `{"Seq":2,"Na`
	if err := os.WriteFile(path, []byte(content), FileModePrivate); err != nil {
		t.Fatal(err)
	}
	w, err := NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() unexpected error = %v", err)
	}
	defer w.Close()

	count := 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatalf("ReadAll() unexpected error = %v", err)
	}
	if count != 1 {
		t.Errorf("ReadAll() count = %d, want 1", count)
	}

	// 殘片已截掉，新紀錄不會接在後面
	if err := w.Write(entry{3, "next"}); err != nil {
		t.Fatalf("Write() unexpected error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	wantContent := `{"Seq":1,"Name":"ok"}` + "\n" + `{"Seq":3,"Name":"next"}` + "\n"
	if string(data) != wantContent {
		t.Errorf("file = %q, want %q", data, wantContent)
	}

	w, err = NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() reopen unexpected error = %v", err)
	}
	defer w.Close()
	var got []entry
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll() after repair unexpected error = %v", err)
	}
	if want := []entry{{1, "ok"}, {3, "next"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %v, want %v", got, want)
	}
}

func TestWAL_TornTailOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	if err := os.WriteFile(path, []byte(`{"Seq":1,"Na`), FileModePrivate); err != nil {
		t.Fatal(err)
	}
	w, err := NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() unexpected error = %v", err)
	}
	defer w.Close()

	if err := w.ReadAll(func([]byte) error { return nil }); err != nil {
		t.Fatalf("ReadAll() unexpected error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("size = %d after repair, want 0", info.Size())
	}
}

func TestWAL_WriteErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL() unexpected error = %v", err)
	}
	defer w.Close()
	if err := w.Write(entry{1, "ok"}); err != nil {
		t.Fatalf("Write() unexpected error = %v", err)
	}
	if err := w.Write(map[string]any{"bad": make(chan int)}); err == nil {
		t.Fatal("Write() expected error for unencodable value")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"Seq":1,"Name":"ok"}` + "\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}
