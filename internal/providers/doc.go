// Package providers implements the Completer interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude, the default), OpenAI (GPT), Google
// (Gemini), and Ollama / LM Studio for local models.
//
// All providers send requests through a resty client and share a retry helper
// with exponential back-off for rate-limit and 5xx responses. The number of
// retries defaults to zero. Base URLs are injectable so that tests can point
// clients at local httptest servers without making live API requests.
//
// Use [New] to obtain a Completer by provider name and model string.
package providers
