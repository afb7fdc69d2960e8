// Package vault reads a directory of markdown notes and turns each file
// into an indexable snapshot.
//
// Notes carry optional YAML frontmatter (type, status, area, gist, tags).
// When a gist is present it replaces the body as the text a note is
// embedded under, since it is a deliberate summary written by the vault
// author.
package vault
