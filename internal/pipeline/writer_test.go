package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestChunk(t *testing.T) {
	lines := [][]byte{
		[]byte("m v=1i 1"),
		[]byte("m v=2i 2\n"),
		[]byte(""),
		[]byte("m v=3i "),
		[]byte("m v=4i 4\r\n"),
		[]byte("m v=5i 5"),
	}

	got := Chunk(lines, 2)
	want := []string{
		"m v=1i 1\nm v=2i 2\n",
		"m v=3i \nm v=4i 4\n",
		"m v=5i 5\n",
	}
	if len(got) != len(want) {
		t.Fatalf("Chunk() returned %d payloads, want %d", len(got), len(want))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Errorf("payload %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunk_Empty(t *testing.T) {
	if got := Chunk(nil, 10); len(got) != 0 {
		t.Errorf("Chunk(nil) = %q, want none", got)
	}
}

func TestChunk_SizeBelowOne(t *testing.T) {
	got := Chunk([][]byte{[]byte("a v=1i "), []byte("b v=1i ")}, 0)
	if len(got) != 2 {
		t.Errorf("Chunk(size 0) returned %d payloads, want one per line", len(got))
	}
}

func TestWriteAll(t *testing.T) {
	errRejected := errors.New("rejected")

	var (
		mu   sync.Mutex
		seen []string
	)
	w := WriterFunc(func(_ context.Context, p []byte) error {
		mu.Lock()
		seen = append(seen, string(p))
		mu.Unlock()
		if string(p) == "bad\n" {
			return errRejected
		}
		return nil
	})

	payloads := [][]byte{[]byte("a\n"), []byte("bad\n"), []byte("c\n")}
	out := WriteAll(context.Background(), w, payloads, 2)

	if len(seen) != 3 {
		t.Errorf("writer saw %d payloads, want 3", len(seen))
	}
	if len(out.Successes) != 2 || len(out.Failures) != 1 {
		t.Fatalf("outcome = %d ok / %d failed, want 2 / 1", len(out.Successes), len(out.Failures))
	}
	if f := out.Failures[0]; f.Index != 1 || !errors.Is(f.Err, errRejected) {
		t.Errorf("failure = index %d err %v, want index 1 errRejected", f.Index, f.Err)
	}
}
