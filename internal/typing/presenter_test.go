package typing

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

func TestReveal_StepsPerCharacter(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"ascii", "VidyaSangam is a mentorship platform."},
		{"markdown", "**Mentors**\n- one\n- two"},
		{"multibyte", "नमस्ते, mentor 👋"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(0)
			var steps []string
			if err := p.Reveal(context.Background(), tt.text, func(s string) {
				steps = append(steps, s)
			}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if want := utf8.RuneCountInString(tt.text); len(steps) != want {
				t.Fatalf("expected %d steps, got %d", want, len(steps))
			}
			for i, s := range steps {
				if utf8.RuneCountInString(s) != i+1 {
					t.Errorf("step %d revealed %d characters", i, utf8.RuneCountInString(s))
				}
			}
			if len(steps) > 0 && steps[len(steps)-1] != tt.text {
				t.Errorf("final step %q, want %q", steps[len(steps)-1], tt.text)
			}
		})
	}
}

func TestReveal_WaitsBetweenCharacters(t *testing.T) {
	p := New(5 * time.Millisecond)
	start := time.Now()

	n := 0
	if err := p.Reveal(context.Background(), "abcd", func(string) { n++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != 4 {
		t.Errorf("expected 4 steps, got %d", n)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("reveal finished too quickly: %s", elapsed)
	}
}

func TestReveal_Cancelled(t *testing.T) {
	p := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := 0
	err := p.Reveal(ctx, "abc", func(string) { n++ })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected no steps after cancellation, got %d", n)
	}
}
