package mkvdemux

import (
	"bytes"
	"testing"
)

func TestReadWindow_ReserveThenMoveEnd(t *testing.T) {
	w := newReadWindow(4)
	w.reserve(10)
	spare := w.spare()
	if len(spare) < 10 {
		t.Fatalf("spare() = %d bytes, want >= 10", len(spare))
	}
	copy(spare, []byte("hello world"))
	w.moveEnd(11)
	if w.size() != 11 {
		t.Fatalf("size() = %d, want 11", w.size())
	}
	if !bytes.Equal(w.data(), []byte("hello world")) {
		t.Errorf("data() = %q, want %q", w.data(), "hello world")
	}
}

func TestReadWindow_MoveStartConsumes(t *testing.T) {
	w := newReadWindow(4)
	w.reserve(5)
	copy(w.spare(), []byte("abcde"))
	w.moveEnd(5)
	w.moveStart(2)
	if !bytes.Equal(w.data(), []byte("cde")) {
		t.Errorf("data() after moveStart(2) = %q, want %q", w.data(), "cde")
	}
}

func TestReadWindow_MoveStartPastSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when moveStart exceeds size")
		}
	}()
	w := newReadWindow(4)
	w.moveStart(1)
}

// Property 5: move_start(k); move_end(k) leaves size unchanged.
func TestReadWindow_MoveStartMoveEndIdempotence(t *testing.T) {
	w := newReadWindow(8)
	w.reserve(6)
	copy(w.spare(), []byte("abcdef"))
	w.moveEnd(6)
	before := w.size()

	w.moveStart(2)
	w.reserve(2)
	copy(w.spare(), []byte("gh"))
	w.moveEnd(2)

	if w.size() != before {
		t.Errorf("size() = %d after moveStart(2);moveEnd(2), want unchanged %d", w.size(), before)
	}
}

func TestReadWindow_ReserveCompactsBeforeGrowing(t *testing.T) {
	w := newReadWindow(8)
	w.reserve(8)
	copy(w.spare(), []byte("abcdefgh"))
	w.moveEnd(8)
	w.moveStart(6) // live = "gh", 2 bytes, plenty of freed room at the tail

	before := cap(w.buf)
	w.reserve(4) // should compact toward zero rather than reallocate
	if cap(w.buf) != before {
		t.Errorf("reserve() grew capacity from %d to %d when compaction alone sufficed", before, cap(w.buf))
	}
	if !bytes.Equal(w.data(), []byte("gh")) {
		t.Errorf("data() after compaction = %q, want %q", w.data(), "gh")
	}
}
