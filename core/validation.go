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


package core

import (
	"fmt"
	"time"
)

// ValidateNote validates a Note snapshot according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - ModifiedAt must not be in the future
//
// NOT validated (owned by the external note source):
//   - Text (empty text is legal and embeds to the zero vector)
//   - ContentHash (the indexer recomputes it when zero)
//   - Type/Area/Status/Tags (free-form frontmatter fields)
func ValidateNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if note.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyNoteID)
	}

	if !note.ModifiedAt.IsZero() && !IsValidTimestamp(note.ModifiedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateVectorRecord validates a VectorRecord against the expected store
// dimension. A record whose component count disagrees with the store
// dimension is a configuration error, never a recoverable condition.
func ValidateVectorRecord(record *VectorRecord, dimension int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidVectorRecord)
	}

	if record.NoteID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrEmptyNoteID)
	}

	if len(record.Components) != dimension {
		return fmt.Errorf("%w: got %d components, store dimension is %d",
			ErrInvalidVectorRecord, len(record.Components), dimension)
	}

	return nil
}

// ValidatePostingList validates a PostingList according to domain rules.
func ValidatePostingList(postings *PostingList) error {
	if postings == nil {
		return fmt.Errorf("%w: posting list is nil", ErrInvalidPostingList)
	}

	if postings.NoteID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPostingList, ErrEmptyNoteID)
	}

	total := 0
	for term, tf := range postings.Terms {
		if term == "" {
			return fmt.Errorf("%w: empty term", ErrInvalidPostingList)
		}
		if tf <= 0 {
			return fmt.Errorf("%w: term %q has non-positive frequency %d",
				ErrInvalidPostingList, term, tf)
		}
		total += tf
	}
	if postings.Total != total {
		return fmt.Errorf("%w: total %d does not match summed frequencies %d",
			ErrInvalidPostingList, postings.Total, total)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
