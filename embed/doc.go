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


// Package embed implements harmonic token projection, a deterministic and
// training-free text embedding scheme.
//
// Each token is encoded as a large integer from its Unicode code points,
// decomposed modulo a fixed table of coprime moduli, and projected onto the
// unit circle per modulus. Token vectors are frequency-weighted, mean
// pooled, and L2-normalized into a note vector. The method needs no model
// file, no network access, and produces bit-identical output across runs
// and machines for the same input.
//
// The integer encoding, the moduli table, and the output dimension are
// pinned: changing any of them changes every derived vector, so such
// changes must bump DerivationVersion, which forces a full index rebuild.
package embed
