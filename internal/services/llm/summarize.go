package llm

import (
	"context"
	"fmt"
	"strings"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

// Summarizer implements pipeline.Summarizer on top of the chat client.
type Summarizer struct {
	client     *Client
	categories *Categories
}

// NewSummarizer constructs a summarizer. A nil category set falls back to the
// built-in defaults.
func NewSummarizer(client *Client, categories *Categories) (*Summarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("summarizer: client required")
	}
	if categories == nil {
		categories = newCategories(defaultCategories)
	}
	return &Summarizer{client: client, categories: categories}, nil
}

// Summarize produces structured learning content from the merged transcript.
func (s *Summarizer) Summarize(ctx context.Context, req pipeline.SummaryRequest) (pipeline.Summary, error) {
	var empty pipeline.Summary
	if strings.TrimSpace(req.Transcript) == "" {
		return empty, services.Wrap(services.ErrValidation, "summarization", "summarize", "transcript required", nil)
	}

	content, err := s.client.CompleteJSON(ctx, summarizationPrompt, s.buildUserPrompt(req))
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, "summarization", "summarize", "chat completion", err)
	}

	var parsed pipeline.Summary
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return empty, services.Wrap(services.ErrTransient, "summarization", "summarize", "parse payload", err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return empty, services.Wrap(services.ErrTransient, "summarization", "summarize", "model produced no summary", nil)
	}
	parsed.Summary = strings.TrimSpace(parsed.Summary)
	parsed.SuggestedCategory = s.categories.Normalize(parsed.SuggestedCategory)
	parsed.Tags = normalizeTags(parsed.Tags)
	return parsed, nil
}

func (s *Summarizer) buildUserPrompt(req pipeline.SummaryRequest) string {
	var b strings.Builder
	if title := strings.TrimSpace(req.Title); title != "" {
		fmt.Fprintf(&b, "TITLE: %s\n\n", title)
	}
	fmt.Fprintf(&b, "ALLOWED CATEGORIES: %s\n\n", strings.Join(s.categories.Names(), ", "))
	b.WriteString(req.Transcript)
	if desc := strings.TrimSpace(req.Description); desc != "" && !strings.Contains(req.Transcript, desc) {
		fmt.Fprintf(&b, "\n\nCAPTION:\n%s", desc)
	}
	return b.String()
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
