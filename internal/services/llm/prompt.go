package llm

// summarizationPrompt instructs the model to turn merged multimodal text into
// structured learning content. The on-screen text section of the input is
// authoritative for names, handles, URLs, and numbers.
const summarizationPrompt = `You turn short-form video content into structured learning material.

The input may contain three sections: ON-SCREEN TEXT, SPOKEN NARRATION, and CAPTION.
When they disagree, trust ON-SCREEN TEXT for names, handles, URLs, prices, and numbers,
and trust SPOKEN NARRATION for narrative context.

Respond with a single JSON object, no markdown, with exactly these fields:
{
  "summary": "2-4 sentence plain-language summary of the content",
  "key_points": ["the concrete takeaways, one per entry"],
  "examples": ["specific examples, tools, or products mentioned, empty if none"],
  "tags": ["3-8 short lowercase topic tags"],
  "suggested_category": "the single best-fitting category from the provided list",
  "quiz": [{"question": "...", "answer": "..."}],
  "checklist": ["actionable steps a reader could follow, empty if not applicable"]
}

Keep quiz to 2-4 questions that test comprehension of the key points.
Never invent facts that are not in the input.`
