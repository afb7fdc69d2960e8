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


// Package search provides hybrid semantic and keyword search over an
// indexed note vault.
//
// The Searcher type implements a two-signal ranking algorithm:
//   - Semantic similarity using harmonic token projection vectors
//   - Verbatim keyword overlap against the inverted term index
//
// The two signals are blended with a fixed weighting, and results are
// ranked deterministically: the same query against the same index always
// returns the same ordering. A separate Related operation finds nearest
// neighbors of an existing note by pure vector similarity.
package search
