package pipeline

import "strings"

// MergeMultimodal combines the transcript, the on-screen text, and any
// caption/description metadata into one prioritized text view for downstream
// consumers. On-screen text is authoritative for names, handles, URLs, and
// numbers; the spoken narration is authoritative for narrative context. The
// output is deterministic for identical inputs.
func MergeMultimodal(transcript, visualText, description string) string {
	transcript = strings.TrimSpace(transcript)
	visualText = strings.TrimSpace(visualText)
	description = strings.TrimSpace(description)

	sections := make([]string, 0, 3)
	if visualText != "" {
		sections = append(sections, "ON-SCREEN TEXT (authoritative for names, handles, URLs, numbers):\n"+visualText)
	}
	if transcript != "" {
		sections = append(sections, "SPOKEN NARRATION (authoritative for narrative context):\n"+transcript)
	}
	if description != "" {
		sections = append(sections, "CAPTION:\n"+description)
	}
	return strings.Join(sections, "\n\n")
}
