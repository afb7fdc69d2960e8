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


package storage

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/noteseek/core"
)

// Serialization layouts are pinned by hand instead of generated: vector
// components must stay fixed-width little-endian float32 (the persisted
// layout the dimension marker guards), and posting terms are written in
// sorted order so an unchanged record re-marshals byte-identically.

// MarshalVectorRecord serializes a VectorRecord to bytes.
func MarshalVectorRecord(record *core.VectorRecord) []byte {
	size := ord.String.Size(record.NoteID) +
		varint.PositiveInt.Size(len(record.Components)) +
		raw.Float32.Size(0)*len(record.Components) +
		varint.Uint64.Size(record.ContentHash) +
		ord.String.Size(record.Type) +
		ord.String.Size(record.Area) +
		ord.String.Size(record.Status) +
		varint.Int64.Size(record.UpdatedAt.UnixMicro())

	buf := make([]byte, size)
	n := ord.String.Marshal(record.NoteID, buf)
	n += varint.PositiveInt.Marshal(len(record.Components), buf[n:])
	for _, component := range record.Components {
		n += raw.Float32.Marshal(component, buf[n:])
	}
	n += varint.Uint64.Marshal(record.ContentHash, buf[n:])
	n += ord.String.Marshal(record.Type, buf[n:])
	n += ord.String.Marshal(record.Area, buf[n:])
	n += ord.String.Marshal(record.Status, buf[n:])
	varint.Int64.Marshal(record.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalVectorRecord deserializes a VectorRecord from bytes.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	var record core.VectorRecord

	noteID, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	record.NoteID = noteID

	count, consumed, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	record.Components = make([]float32, count)
	for i := 0; i < count; i++ {
		component, consumed, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		record.Components[i] = component
		n += consumed
	}

	record.ContentHash, consumed, err = varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	record.Type, consumed, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	record.Area, consumed, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	record.Status, consumed, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	record.UpdatedAt = time.UnixMicro(micros).UTC()

	return &record, nil
}

// MarshalPostingList serializes a PostingList to bytes. Terms are written
// in sorted order for deterministic output.
func MarshalPostingList(postings *core.PostingList) []byte {
	terms := make([]string, 0, len(postings.Terms))
	for term := range postings.Terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	size := ord.String.Size(postings.NoteID) +
		varint.PositiveInt.Size(len(terms)) +
		varint.PositiveInt.Size(postings.Total)
	for _, term := range terms {
		size += ord.String.Size(term) + varint.PositiveInt.Size(postings.Terms[term])
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(postings.NoteID, buf)
	n += varint.PositiveInt.Marshal(len(terms), buf[n:])
	for _, term := range terms {
		n += ord.String.Marshal(term, buf[n:])
		n += varint.PositiveInt.Marshal(postings.Terms[term], buf[n:])
	}
	varint.PositiveInt.Marshal(postings.Total, buf[n:])
	return buf
}

// UnmarshalPostingList deserializes a PostingList from bytes.
func UnmarshalPostingList(data []byte) (*core.PostingList, error) {
	var postings core.PostingList

	noteID, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	postings.NoteID = noteID

	count, consumed, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	postings.Terms = make(map[string]int, count)
	for i := 0; i < count; i++ {
		term, consumed, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		n += consumed

		tf, consumed, err := varint.PositiveInt.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		n += consumed

		postings.Terms[term] = tf
	}

	postings.Total, _, err = varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}

	return &postings, nil
}

// MarshalTermFrequency serializes a single inverted-index term frequency.
func MarshalTermFrequency(tf int) []byte {
	buf := make([]byte, varint.PositiveInt.Size(tf))
	varint.PositiveInt.Marshal(tf, buf)
	return buf
}

// UnmarshalTermFrequency deserializes a single term frequency.
func UnmarshalTermFrequency(data []byte) (int, error) {
	tf, _, err := varint.PositiveInt.Unmarshal(data)
	return tf, err
}

// MarshalIndexVersion serializes the index version marker.
func MarshalIndexVersion(version core.IndexVersion) []byte {
	size := varint.PositiveInt.Size(version.Dimension) +
		varint.PositiveInt.Size(version.TokenizerRules) +
		varint.PositiveInt.Size(version.Derivation)
	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(version.Dimension, buf)
	n += varint.PositiveInt.Marshal(version.TokenizerRules, buf[n:])
	varint.PositiveInt.Marshal(version.Derivation, buf[n:])
	return buf
}

// UnmarshalIndexVersion deserializes the index version marker.
func UnmarshalIndexVersion(data []byte) (*core.IndexVersion, error) {
	var version core.IndexVersion
	var err error

	var n, consumed int
	version.Dimension, n, err = varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	version.TokenizerRules, consumed, err = varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += consumed

	version.Derivation, _, err = varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}

	return &version, nil
}

// MarshalTime serializes a timestamp with microsecond precision.
func MarshalTime(t time.Time) []byte {
	buf := make([]byte, varint.Int64.Size(t.UnixMicro()))
	varint.Int64.Marshal(t.UnixMicro(), buf)
	return buf
}

// UnmarshalTime deserializes a timestamp.
func UnmarshalTime(data []byte) (time.Time, error) {
	micros, _, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(micros).UTC(), nil
}
