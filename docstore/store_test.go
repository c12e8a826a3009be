package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mbannour/go-docmap/docmap"
)

func TestOpen_FilePersists(t *testing.T) {
	docmap.ClearRegistry()
	docmap.MustRegisterEnum[Severity]("Low", "Medium", "High")
	path := filepath.Join(t.TempDir(), "docs.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	tickets := MustCollection[Ticket](s, "tickets")
	if _, err := tickets.Insert(ctx, sampleTicket("t1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	tickets = MustCollection[Ticket](s, "tickets")
	got, err := tickets.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Title != "disk full" {
		t.Errorf("title: got %q", got.Title)
	}
}

func TestClosedStore(t *testing.T) {
	s := newTestStore(t)
	tickets := MustCollection[Ticket](s, "tickets")

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	_, err := tickets.Insert(context.Background(), sampleTicket("t1"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	_, err = tickets.All(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	tickets := MustCollection[Ticket](s, "tickets")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tickets.Insert(ctx, sampleTicket("t1"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
