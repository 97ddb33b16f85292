// Package llm wraps the OpenRouter chat completion API used for structured
// summarization of merged multimodal text. The client retries transient
// failures with exponential backoff and tolerates the usual formatting quirks
// of model-produced JSON.
package llm
