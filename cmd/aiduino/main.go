// AI.duino is an AI assistant for Arduino development.
//
// It talks to multiple AI providers (Claude, ChatGPT, Gemini, Mistral,
// Groq) through one unified client with retries and failure
// classification, meters token usage and cost per provider, and offers
// inline code completions driven by cursor-context triggers.
//
// Usage:
//
//	# Ask the selected provider a question
//	aiduino ask "why does my servo jitter?"
//
//	# Pick a provider and store its key
//	aiduino providers select claude
//	aiduino providers set-key claude
//
//	# Show today's token usage and cost
//	aiduino usage show
//
//	# Long-running mode: metrics endpoint + history retention
//	aiduino serve --listen :9090
package main

func main() {
	Execute()
}
