package pipeline

import (
	"strings"
	"testing"
)

func TestMergeMultimodalOrdersSections(t *testing.T) {
	merged := MergeMultimodal("spoken words", "on screen text", "the caption")

	onScreen := strings.Index(merged, "ON-SCREEN TEXT")
	narration := strings.Index(merged, "SPOKEN NARRATION")
	caption := strings.Index(merged, "CAPTION")
	if onScreen == -1 || narration == -1 || caption == -1 {
		t.Fatalf("missing section in merged output:\n%s", merged)
	}
	if !(onScreen < narration && narration < caption) {
		t.Errorf("sections out of order: on-screen=%d narration=%d caption=%d", onScreen, narration, caption)
	}
}

func TestMergeMultimodalOmitsEmptySections(t *testing.T) {
	merged := MergeMultimodal("only the transcript", "", "  ")
	if strings.Contains(merged, "ON-SCREEN TEXT") || strings.Contains(merged, "CAPTION") {
		t.Errorf("empty sections leaked into output:\n%s", merged)
	}
	if !strings.Contains(merged, "only the transcript") {
		t.Errorf("transcript missing from output:\n%s", merged)
	}
}

func TestMergeMultimodalIsDeterministic(t *testing.T) {
	first := MergeMultimodal("t", "v", "d")
	second := MergeMultimodal("t", "v", "d")
	if first != second {
		t.Errorf("identical inputs produced different outputs:\n%q\n%q", first, second)
	}
}

func TestMergeMultimodalAllEmpty(t *testing.T) {
	if out := MergeMultimodal("", "", ""); out != "" {
		t.Errorf("expected empty merge, got %q", out)
	}
}
