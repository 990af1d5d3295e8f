package site

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/decktree"
	"github.com/mrlokans/flashcards/internal/utils"
)

const (
	homepageTitle    = "Télécharger mes flashcards"
	homepageMetadata = "---\nicon: material/download\n---\n"
	folderIcon       = ":material-folder: "

	deckTableHeader = `| Titre { aria-sort="ascending" } | Aperçu | Taille | Nombre de cartes | Dernière modification |
| ------------------------------- | ------ | ------ | ---------------- | --------------------- |
`

	mediaPageHeader = `# Fichiers média

Il peut vous arriver de rencontrer des erreurs "Impossible de trouver ...".

Dans ce cas, téléchargez le fichier manquant sur cette page
(clic droit / appui long → Enregistrer la cible du lien sous...)
et déplacez-le dans le dossier suivant :

- Sur Windows / macOS / Linux : <br> ouvrez Anki → *Outils* → *Vérifier les médias* → *Afficher les fichiers*
- Sur Android :
    - S'il existe : <br> Stockage interne → AnkiDroid → collection.media
    - Sinon (vous pourriez avoir besoin d'un ordinateur) : <br>
      Stockage interne / Carte SD → Android → data → com.ichi2.anki → collection.media

| Nom du fichier { aria-sort="ascending" } | Taille | Dernière modification |
| ---------------------------------------- | ------ | --------------------- |
`
)

// Pages maps a file path to its Markdown content.
type Pages map[string]string

// Generator renders the deck index pages and the media page.
type Generator struct {
	Layout Layout
	// ViewerURL is the online package viewer; the package URL goes in its fragment.
	ViewerURL string
	// BaseURL is where the site is published.
	BaseURL  string
	Location *time.Location

	policy *bluemonday.Policy
}

// NewGenerator creates a generator for the site in layout.
func NewGenerator(layout Layout, viewerURL, baseURL string, loc *time.Location) *Generator {
	return &Generator{
		Layout:    layout,
		ViewerURL: viewerURL,
		BaseURL:   baseURL,
		Location:  loc,
		policy:    bluemonday.StrictPolicy(),
	}
}

// text makes a deck name safe to embed in Markdown: markup is stripped and
// the characters with a meaning in links, tables, emphasis and code spans
// are escaped.
func (g *Generator) text(s string) string {
	s = g.policy.Sanitize(s)
	replacer := strings.NewReplacer(
		`\`, `\\`, `|`, `\|`, `[`, `\[`, `]`, `\]`,
		`_`, `\_`, `*`, `\*`, "`", "\\`",
	)
	return replacer.Replace(s)
}

// PackagePath returns where the package of node is exported, or "" for a
// virtual node.
func (g *Generator) PackagePath(node *decktree.Node) string {
	if node.IsVirtual() {
		return ""
	}
	return collection.ExportFile(node.Deck, g.Layout.PackageDir())
}

// previewURL returns the viewer URL displaying the package at pkg.
func (g *Generator) previewURL(pkg string) (string, error) {
	rel, err := Link(pkg, g.Layout.DocsDir)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(g.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", g.BaseURL, err)
	}
	return g.ViewerURL + "#" + base.ResolveReference(&url.URL{Path: rel}).String(), nil
}

// DeckPages renders one index page per interior node of the tree. Each node
// other than the root is listed in the page of its parent: interior nodes
// link to their own page, leaves to their package. sizes holds the size of
// every exported package, keyed by package path.
func (g *Generator) DeckPages(root *decktree.Node, sizes map[string]int64) (Pages, error) {
	pages := make(Pages)

	err := root.Walk(func(node *decktree.Node) error {
		pkg := g.PackagePath(node)
		size := "-"
		if pkg != "" {
			bytes, ok := sizes[pkg]
			if !ok {
				return fmt.Errorf("no package exported for %q", node.Name)
			}
			size = utils.FormatSize(bytes)
		}

		cardCount := utils.FormatNumber(node.Cards)
		modTime := utils.FormatDatetime(node.LastModified, g.Location)

		preview := ""
		if pkg != "" {
			var err error
			if preview, err = g.previewURL(pkg); err != nil {
				return err
			}
		}

		parts := node.Parts()
		var parentPage string
		if !node.IsRoot() {
			parentPage = g.Layout.DeckPage(parts[:len(parts)-1])
		}

		var target, icon string
		if node.IsInterior() {
			page := g.Layout.DeckPage(parts)
			content, err := g.deckPage(node, page, pkg, size, preview, cardCount, modTime)
			if err != nil {
				return err
			}
			pages[page] = content
			target, icon = page, folderIcon
		} else {
			target = pkg
		}

		if node.IsRoot() {
			return nil
		}

		href, err := Link(target, parentPage)
		if err != nil {
			return err
		}
		previewCell := "-"
		if preview != "" {
			previewCell = fmt.Sprintf(`[Aperçu](%s){ target="_blank" }`, preview)
		}
		pages[parentPage] += fmt.Sprintf("| [%s%s](%s) | %s | %s | %s | %s |\n",
			icon, g.text(node.Leaf()), escapeLink(href), previewCell, size, cardCount, modTime)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (g *Generator) deckPage(node *decktree.Node, page, pkg, size, preview, cardCount, modTime string) (string, error) {
	helpLink, err := Link(g.Layout.HelpPage(), page)
	if err != nil {
		return "", err
	}
	mediaLink, err := Link(g.Layout.MediaPage(), page)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	title := homepageTitle
	if node.IsRoot() {
		b.WriteString(homepageMetadata)
		b.WriteString("\n")
	} else {
		title = g.text(node.Name)
	}

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "[Comment utiliser ce site ?](%s)\n\n", escapeLink(helpLink))
	fmt.Fprintf(&b, "[Fichiers média manquants ? Cliquez ici](%s)\n\n", escapeLink(mediaLink))

	if pkg != "" {
		pkgLink, err := Link(pkg, page)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "[:material-download: Télécharger toutes les flashcards](%s) (%s) - ", escapeLink(pkgLink), size)
		fmt.Fprintf(&b, "[Aperçu](%s){ target=\"_blank\" } (1)\n{ .annotate }\n\n", preview)
		b.WriteString("1. ")
		if modTime != "-" {
			fmt.Fprintf(&b, "Dernière modification : %s\n    ", modTime)
		}
		fmt.Fprintf(&b, "Nombre de cartes : %s\n\n", cardCount)
	}

	b.WriteString(deckTableHeader)
	return b.String(), nil
}

// MediaPage copies the media files into the media directory and renders the
// page listing them.
func (g *Generator) MediaPage(files []collection.MediaFile) (Pages, error) {
	var b strings.Builder
	b.WriteString(mediaPageHeader)

	for _, file := range files {
		if err := copyFile(file.Path, filepath.Join(g.Layout.MediaDir(), file.Name)); err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s |\n",
			g.text(file.Name), url.PathEscape(file.Name),
			utils.FormatSize(file.Size), utils.FormatDatetime(file.ModTime, g.Location))
	}

	return Pages{g.Layout.MediaPage(): b.String()}, nil
}

// Merge adds the pages of other to p.
func (p Pages) Merge(other Pages) {
	for path, content := range other {
		p[path] = content
	}
}

// Paths returns the page paths in lexical order.
func (p Pages) Paths() []string {
	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// WritePages writes every page as UTF-8, creating parent directories as
// needed.
func WritePages(pages Pages) error {
	for _, path := range pages.Paths() {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(pages[path]), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
