//go:build !integration

package model

import "testing"

func TestStack(t *testing.T) {
	t.Run("push and pop keep order", func(t *testing.T) {
		s := NewStack(DefaultStackID)
		if !s.Empty() {
			t.Fatal("new stack should be empty")
		}
		s.Push("a")
		s.Push("b")
		if got := s.LastIntentID(); got != "b" {
			t.Errorf("expected last intent 'b', got %q", got)
		}
		if got := s.Pop(); got != "b" {
			t.Errorf("expected pop 'b', got %q", got)
		}
		if got := s.Pop(); got != "a" {
			t.Errorf("expected pop 'a', got %q", got)
		}
		if !s.Empty() {
			t.Error("stack should be empty after popping everything")
		}
	})

	t.Run("pop and last intent on empty stack", func(t *testing.T) {
		s := NewStack("x")
		if got := s.Pop(); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
		if got := s.LastIntentID(); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestStateID(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  string
	}{
		{"group and name", State{Group: "Main", Name: "step1"}, "Main:step1"},
		{"group only", State{Group: "Main"}, "Main"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.ID(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewStateGroup(t *testing.T) {
	states := NewStateGroup("Survey", "name", "color")
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[0].ID() != "Survey:name" || states[1].ID() != "Survey:color" {
		t.Errorf("declaration order not preserved: %v, %v", states[0].ID(), states[1].ID())
	}
}
