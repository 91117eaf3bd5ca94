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


// Package ai provides abstractions for the AI services used in Inquiro.
//
// The answer pipeline never talks to a model vendor directly: it depends on
// the interfaces defined here, which are injected at construction time. This
// keeps the orchestration logic testable with the doubles in ai/mock and
// allows implementations to be swapped without touching the pipeline.
//
// # Interfaces
//
//   - Completer: answers a prompt with free-form text
//   - Embedder: generates vector embeddings from text
//   - Provider: aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewCompleter, ...) return
// interface types to enforce abstraction. Test utility constructors
// (mock.NewMockCompleter, ...) return concrete types to enable assertions
// and behavior injection.
package ai
