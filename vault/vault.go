package vault

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/noteseek/core"
)

// Dir reads notes from a directory tree of markdown files. Each .md file
// becomes one note; hidden files and directories are skipped. The note id
// is the vault-relative path without the extension, using forward slashes,
// so it is stable across platforms.
type Dir struct {
	root   string
	logger *slog.Logger
}

var _ Source = (*Dir)(nil)

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dir) {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
	}
}

// NewDir creates a source over the vault rooted at the given directory.
func NewDir(root string, opts ...Option) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, ErrVaultNotFound)
	}

	d := &Dir{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Notes walks the vault and yields one note per markdown file. Files that
// cannot be read or parsed are yielded with a non-nil error and an id, so
// the consumer can record the failure and continue.
func (d *Dir) Notes(ctx context.Context) iter.Seq2[core.Note, error] {
	return func(yield func(core.Note, error) bool) {
		err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return err
			}

			name := entry.Name()
			if entry.IsDir() {
				if path != d.root && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".md") {
				return nil
			}

			note, loadErr := d.load(path)
			if !yield(note, loadErr) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			d.logger.Error("error walking vault", "root", d.root, "err", err)
			yield(core.Note{}, err)
		}
	}
}

// load reads one note file. The returned note always carries the id, even
// on error, so failures can be attributed.
func (d *Dir) load(path string) (core.Note, error) {
	id := d.noteID(path)

	info, err := os.Stat(path)
	if err != nil {
		return core.Note{ID: id}, fmt.Errorf("stat note %q: %w", id, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return core.Note{ID: id}, fmt.Errorf("read note %q: %w", id, err)
	}

	fm, body, err := ParseFrontmatter(content)
	if err != nil {
		return core.Note{ID: id}, fmt.Errorf("parse note %q: %w", id, err)
	}

	text := embeddingText(filepath.Base(path), fm, body)

	return core.Note{
		ID:          id,
		Text:        text,
		ContentHash: core.ContentHash(text),
		ModifiedAt:  info.ModTime().UTC(),
		Type:        fm.Type,
		Area:        fm.Area,
		Status:      fm.Status,
		Tags:        fm.Tags,
	}, nil
}

func (d *Dir) noteID(path string) string {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel)
}

// embeddingText assembles the text a note is indexed under: the title from
// the filename plus the gist when the frontmatter has one, else the body.
// The gist is a one-or-two sentence summary the vault author wrote for
// exactly this purpose, so it wins over the raw body.
func embeddingText(filename string, fm Frontmatter, body string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))

	content := strings.TrimSpace(fm.Gist)
	if content == "" {
		content = strings.TrimSpace(body)
	}
	if content == "" {
		return title
	}
	return title + "\n" + content
}
