package cli

import (
	"testing"
)

func TestSetVersion(t *testing.T) {
	SetVersion("v0.3.0", "deadbeef", "2026-08-31")

	if version != "v0.3.0" {
		t.Errorf("version = %q, want %q", version, "v0.3.0")
	}
	if commit != "deadbeef" {
		t.Errorf("commit = %q, want %q", commit, "deadbeef")
	}
	if date != "2026-08-31" {
		t.Errorf("date = %q, want %q", date, "2026-08-31")
	}
}

func TestSetVersionEmpty(t *testing.T) {
	SetVersion("", "", "")

	if version != "" {
		t.Errorf("version should be empty, got %q", version)
	}
	if commit != "" {
		t.Errorf("commit should be empty, got %q", commit)
	}
	if date != "" {
		t.Errorf("date should be empty, got %q", date)
	}
}
