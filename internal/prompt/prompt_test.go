package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdinConfirmDelete(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact phrase", "DELETE\n", true},
		{"exact phrase with surrounding spaces", "  DELETE  \n", true},
		{"lowercase declines", "delete\n", false},
		{"empty declines", "\n", false},
		{"anything else declines", "yes\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := &Stdin{In: strings.NewReader(tt.input), Out: &out}
			got, err := s.ConfirmDelete("DELETE")
			if err != nil {
				t.Fatalf("ConfirmDelete() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ConfirmDelete(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Type DELETE to proceed") {
				t.Errorf("prompt text missing phrase: %q", out.String())
			}
		})
	}
}

func TestStdinConfirmDeleteEOF(t *testing.T) {
	var out bytes.Buffer
	s := &Stdin{In: strings.NewReader(""), Out: &out}
	if _, err := s.ConfirmDelete("DELETE"); err == nil {
		t.Error("expected error on EOF")
	}
}

func TestStdinContinueBatch(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"q\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		s := &Stdin{In: strings.NewReader(tt.input), Out: &out}
		got, err := s.ContinueBatch(25, 100)
		if err != nil {
			t.Fatalf("ContinueBatch() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("ContinueBatch with input %q = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "25/100") {
			t.Errorf("prompt missing progress: %q", out.String())
		}
	}
}

func TestPreApproved(t *testing.T) {
	ok, err := PreApproved{Phrase: "DELETE"}.ConfirmDelete("DELETE")
	if err != nil || !ok {
		t.Errorf("matching pre-approval: ok=%v err=%v, want true nil", ok, err)
	}

	ok, err = PreApproved{Phrase: "delete"}.ConfirmDelete("DELETE")
	if err != nil || ok {
		t.Errorf("case mismatch must decline: ok=%v err=%v", ok, err)
	}

	cont, err := PreApproved{Phrase: "DELETE"}.ContinueBatch(1, 4)
	if err != nil || !cont {
		t.Errorf("pre-approved ContinueBatch: got %v, %v", cont, err)
	}
}
