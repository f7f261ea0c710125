package version_test

import (
	"strings"
	"testing"

	"github.com/davidfrivas/RandomWalkSeq/version"
)

func TestTitle(t *testing.T) {
	title := version.Title("editor")
	if !strings.HasPrefix(title, version.Name+" editor") {
		t.Errorf("unexpected title %q", title)
	}
	if version.VersionOrHash != "" && !strings.HasSuffix(title, version.VersionOrHash) {
		t.Errorf("title %q lacks the version %q", title, version.VersionOrHash)
	}
	if strings.Contains(version.Title(""), "  ") {
		t.Errorf("empty tool name leaves a double space")
	}
}
