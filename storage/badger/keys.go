package badger

// Key prefixes for different data types. Inverted posting keys embed the
// token before the note id; tokens never contain a colon (the tokenizer
// strips everything that is not a letter or digit), so the first colon
// after the token terminates it unambiguously.
const (
	vectorRecordPrefix    = "vecrec"
	postingForwardPrefix  = "kwfwd"
	postingInvertedPrefix = "kwinv"
	metaVersionKey        = "meta:version"
	metaLastIndexedKey    = "meta:lastidx"
)

// makeVectorKey generates a key for a note's vector record.
func makeVectorKey(noteID string) []byte {
	return []byte(vectorRecordPrefix + ":" + noteID)
}

// makePostingForwardKey generates a key for a note's forward posting list.
func makePostingForwardKey(noteID string) []byte {
	return []byte(postingForwardPrefix + ":" + noteID)
}

// makePostingInvertedKey generates a composite key for the inverted index.
// Format: prefix:token:noteID
func makePostingInvertedKey(token, noteID string) []byte {
	return []byte(postingInvertedPrefix + ":" + token + ":" + noteID)
}

// makePartialInvertedKey generates the scan prefix for one token's
// inverted entries.
func makePartialInvertedKey(token string) []byte {
	return []byte(postingInvertedPrefix + ":" + token + ":")
}

// noteIDFromInvertedKey recovers the note id from an inverted-index key,
// given the prefix it was scanned under.
func noteIDFromInvertedKey(key, prefix []byte) string {
	return string(key[len(prefix):])
}
