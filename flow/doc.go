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


// Package flow orchestrates the conversational question-answering pipeline.
//
// A Runner wires nine stages into a directed, conditionally branching graph:
//
//	detect_ambiguity ──needs clarification──▶ clarify ─▶ process_clarification ─▶ transform ─┐
//	        │                                                                                │
//	        └────────────────────────────▶ retrieve_primary ◀────────────────────────────────┘
//	                                              │
//	                                        grade_primary ──sufficient──▶ generate_answer
//	                                              │                             ▲
//	                                        retrieve_secondary ─▶ rerank ───────┘
//
// Each stage consumes the conversation State and a subset of the capability
// ports (ai.Completer, retrieval.Lookup, retrieval.WebSearcher) and produces
// a partial Update that the graph merges before choosing the next stage.
// Execution is single-threaded and synchronous within a run; independent
// sessions may run concurrently because a Runner holds no per-run state.
//
// Stage entry and exit events are appended to a TraceSink keyed by session
// and stage name. Trace failures are swallowed, never propagated.
//
// Clarification is single-round: when a clarification is still ambiguous
// after process_clarification, the graph does not loop back to clarify;
// the unresolved text flows through retrieval as the effective question and
// the caller is expected to re-prompt the human.
package flow
