package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/zulandar/atelier/internal/models"
)

func TestMemStore_LoadMissing(t *testing.T) {
	s := NewMemStore()
	_, err := s.Load(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewMemStore()
	p := models.NewProject("p1", "Test")
	p.Screens = append(p.Screens, models.Screen{ID: "s1", Name: "Home"})

	if err := s.Save(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Test" || len(got.Screens) != 1 {
		t.Fatalf("loaded = %+v", got)
	}

	// The store holds its own copy: mutating the loaded model must not
	// leak into a subsequent load.
	got.Screens[0].Name = "Mutated"
	again, err := s.Load(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Screens[0].Name != "Home" {
		t.Fatal("store aliased the loaded model")
	}
}

func TestMemStore_SaveRequiresID(t *testing.T) {
	s := NewMemStore()
	if err := s.Save(context.Background(), &models.Project{}); err == nil {
		t.Fatal("expected error for missing project id")
	}
	if err := s.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil project")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(OpenOpts{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenOpts_DSN(t *testing.T) {
	opts := OpenOpts{Host: "127.0.0.1", Port: 3306, Database: "atelier"}
	want := "root@tcp(127.0.0.1:3306)/atelier?parseTime=true"
	if got := opts.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
