// Package upstream holds the language-model backends behind the generation
// service: an OpenAI-compatible chat client (Qwen DashScope by default) and a
// Gemini client. Both implement ports.TextModel.
package upstream
