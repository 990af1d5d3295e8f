// Package site generates the Markdown sources of the download site and
// builds it with mkdocs.
package site

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Layout locates the generated files inside the mkdocs docs directory.
// Packages live at the top of the docs directory, index pages under
// export/ and media copies under media/.
type Layout struct {
	DocsDir string
}

// ExportDir holds one index.md per interior deck.
func (l Layout) ExportDir() string {
	return filepath.Join(l.DocsDir, "export")
}

// MediaDir holds the copies of the collection media and their index page.
func (l Layout) MediaDir() string {
	return filepath.Join(l.DocsDir, "media")
}

// PackageDir is where the deck packages are exported.
func (l Layout) PackageDir() string {
	return l.DocsDir
}

// HelpPage is the hand-written page explaining how to use the site.
func (l Layout) HelpPage() string {
	return filepath.Join(l.DocsDir, "questions", "start.md")
}

// MediaPage lists the media files.
func (l Layout) MediaPage() string {
	return filepath.Join(l.MediaDir(), "index.md")
}

// DeckPage returns the index page of the deck with the given name components.
func (l Layout) DeckPage(parts []string) string {
	elems := append([]string{l.ExportDir()}, parts...)
	elems = append(elems, "index.md")
	return filepath.Join(elems...)
}

// Clean removes everything generated by a previous run: the export and
// media directories are recreated empty and the packages are deleted.
func (l Layout) Clean() error {
	for _, dir := range []string{l.ExportDir(), l.MediaDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(l.PackageDir())
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", l.PackageDir(), err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".apkg" {
			continue
		}
		if err := os.Remove(filepath.Join(l.PackageDir(), entry.Name())); err != nil {
			return fmt.Errorf("failed to remove package %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Link returns a link to target usable in source: relative to the
// directory of source when it is a Markdown page, to source itself otherwise.
func Link(target, source string) (string, error) {
	base := source
	if filepath.Ext(source) == ".md" {
		base = filepath.Dir(source)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("failed to link %s from %s: %w", target, source, err)
	}
	return filepath.ToSlash(rel), nil
}

// escapeLink percent-encodes each segment of a relative slash path so it
// can be used as a Markdown link destination.
func escapeLink(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		if s == "." || s == ".." {
			continue
		}
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
