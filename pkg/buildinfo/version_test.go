package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if !strings.Contains(Template(), "{{.Name}}") {
		t.Error("Template should reference the command name")
	}
	if got := UserAgent(); got != "topoview/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
