// Package openai implements the OpenAI chat-completions adapter.
//
// The adapter works with any OpenAI-compatible endpoint (OpenAI, Azure
// OpenAI proxies, Ollama, vLLM) by changing the base URL. It sends one
// request per call, never retries, and returns the upstream body untouched.
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    BaseURL: openai.DefaultBaseURL,
//	    Timeout: 60 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	result, err := provider.SendCompletion(ctx, apiKey, &providers.CompletionRequest{
//	    Model:       "gpt-4o-mini",
//	    Messages:    msgs,
//	    MaxTokens:   1500,
//	    Temperature: 0.3,
//	})
//
// # Tracing
//
// Every call runs in a client span named "openai.chat_completion" carrying
// the provider, model, status code and, when reported, token usage.
package openai
