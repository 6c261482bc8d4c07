package registry

import (
	"context"
	"errors"
	"testing"
)

type staticCommentator string

func (s staticCommentator) Summarize(context.Context, int) (string, error) {
	return string(s), nil
}

func TestRegisterCreateList(t *testing.T) {
	Register("test-static", "fixed text", func(Options) (Commentator, error) {
		return staticCommentator("well played"), nil
	})
	Register("test-broken", "always fails", func(Options) (Commentator, error) {
		return nil, errors.New("no credentials")
	})

	if !Exists("test-static") {
		t.Fatal("Expected test-static to be registered")
	}
	if Exists("test-missing") {
		t.Error("Unregistered backend reported as existing")
	}

	c, err := Create("test-static", Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	text, _ := c.Summarize(context.Background(), 3)
	if text != "well played" {
		t.Errorf("Summarize() = %q, expected %q", text, "well played")
	}

	if _, err := Create("test-broken", Options{}); err == nil {
		t.Error("Expected factory error to propagate")
	}
	if _, err := Create("test-missing", Options{}); err == nil {
		t.Error("Expected error for unknown backend")
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Errorf("List not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(Options) (Commentator, error) { return staticCommentator(""), nil }
	Register("test-dup", "", f)

	defer func() {
		if recover() == nil {
			t.Error("Duplicate Register should panic")
		}
	}()
	Register("test-dup", "", f)
}
