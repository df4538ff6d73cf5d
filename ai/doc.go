// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the model services used by recall.
//
// Two interfaces cover everything the engine asks of a model:
//
//   - Embedder: turns catalog items and user prompts into vectors
//   - Completer: answers a prompt from grounding documents and labels sessions
//
// AIProvider bundles both behind one lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible and Azure OpenAI endpoints via langchaingo
//   - ai/mock: deterministic test doubles that never leave the process
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behavior and count calls.
//
// # Retries
//
// Every remote call runs under a RetryPolicy: bounded attempts, exponential
// backoff starting at BaseDelay and capped at MaxDelay, aborted as soon as
// the context is done. Exhausted retries surface as core.ErrModelUnavailable.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"), ai.WithDimensions(768))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	emb, err := provider.Embedder().Embed(ctx, "catalog", "a quiet horror film")
//	answer, err := provider.Completer().Complete(ctx, sessionID, prompt, hits.Grounding())
package ai
