package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	defer func(v string) { Version = v }(Version)
	Version = "v1.2.3"

	info := Current()
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q", info.Version)
	}
	if !strings.HasPrefix(info.String(), "version: v1.2.3\n") {
		t.Errorf("String() = %q", info.String())
	}
	if !strings.Contains(Template(), "v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
