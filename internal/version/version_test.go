package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" || GitCommit == "" {
		t.Error("build info should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "livebuild ") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, Version) {
		t.Errorf("String() = %q, missing version %q", s, Version)
	}
}
