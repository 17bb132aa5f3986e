package task

import (
	"errors"
	"testing"

	"todo/internal/service"
)

func TestFromRemote(t *testing.T) {
	got := FromRemote(service.RemoteTask{ID: "1", Title: "Buy milk", Completed: false})
	want := Task{ID: "1", Title: "Buy milk", Description: "Buy milk", DueLabel: "unknown", Completed: false}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFromRemoteList_PreservesOrder(t *testing.T) {
	got := FromRemoteList([]service.RemoteTask{
		{ID: "2", Title: "b", Completed: true},
		{ID: "1", Title: "a"},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("expected order [2 1], got [%s %s]", got[0].ID, got[1].ID)
	}
	if !got[0].Completed {
		t.Error("expected completed flag to be copied")
	}
}

func TestFromRemoteList_EmptyIsNonNil(t *testing.T) {
	got := FromRemoteList(nil)
	if got == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestNew_TrimsAndMirrors(t *testing.T) {
	got := New("abc", "  Walk the dog \n")
	if got.Title != "Walk the dog" {
		t.Errorf("expected trimmed title, got %q", got.Title)
	}
	if got.Description != got.Title {
		t.Errorf("expected description to mirror title, got %q", got.Description)
	}
	if got.DueLabel != TodayDue {
		t.Errorf("expected due label %q, got %q", TodayDue, got.DueLabel)
	}
	if got.Completed {
		t.Error("expected new task to be incomplete")
	}
}

func TestMatches(t *testing.T) {
	tk := Task{ID: "AbC-123", Title: "Buy Milk", Description: "from the STORE"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"milk", true},
		{"store", true},
		{"abc-1", true},
		{"bread", false},
	}
	for _, tt := range tests {
		if got := tk.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		err := ValidateTitle(title)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ValidateTitle(%q): expected ValidationError, got %v", title, err)
			continue
		}
		if err.Error() != "Task title cannot be empty." {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
	if err := ValidateTitle(" x "); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestClone_Independent(t *testing.T) {
	orig := []Task{{ID: "1", Title: "a"}}
	c := Clone(orig)
	c[0].Title = "changed"
	if orig[0].Title != "a" {
		t.Error("clone shares backing array with original")
	}
	if Clone(nil) != nil {
		t.Error("expected nil clone of nil")
	}
}
