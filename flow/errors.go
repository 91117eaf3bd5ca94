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


package flow

import "errors"

var (
	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrLookupRequired is returned when an authoritative lookup is not provided.
	ErrLookupRequired = errors.New("lookup required")

	// ErrSearcherRequired is returned when a web searcher is not provided.
	ErrSearcherRequired = errors.New("web searcher required")

	// ErrSessionIDRequired is returned when the initial state has no session ID.
	ErrSessionIDRequired = errors.New("session ID required")

	// ErrQuestionRequired is returned when the initial state has no question.
	ErrQuestionRequired = errors.New("original question required")

	// ErrEntryNotSet is returned when a graph is run without an entry stage.
	ErrEntryNotSet = errors.New("graph entry stage not set")

	// ErrUnknownStage is returned when an edge points at a stage that was
	// never registered.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrStepLimit is returned when a run exceeds the step budget, which
	// indicates a miswired cycle in the graph.
	ErrStepLimit = errors.New("stage step limit exceeded")
)
