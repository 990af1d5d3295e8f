package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/decktree"
	"github.com/mrlokans/flashcards/internal/entities"
)

const (
	testViewer  = "https://viewer.example.org/"
	testBaseURL = "https://example.org/flashcards/"
)

func at(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}

func testGenerator() *Generator {
	return NewGenerator(Layout{DocsDir: "docs"}, testViewer, testBaseURL, time.UTC)
}

// Histoire has no deck of its own.
func testTree() *decktree.Node {
	decks := []*entities.Deck{
		nil,
		{ID: 10, Name: "Langues"},
		{ID: 11, Name: "Langues::Anglais"},
		{ID: 12, Name: "Langues::Anglais::Verbes"},
		{ID: 20, Name: "Maths"},
		{ID: 40, Name: "Histoire::Rome"},
	}
	stats := map[int64]collection.DeckStats{
		10: {Cards: 1, LastModified: at(1000)},
		11: {Cards: 2, LastModified: at(2000)},
		12: {Cards: 1, LastModified: at(3000)},
		20: {Cards: 1234, LastModified: at(4000)},
	}
	total := collection.DeckStats{Cards: 1238, LastModified: at(4000)}
	return decktree.Build(decks, stats, total)
}

func testSizes() map[string]int64 {
	sizes := map[string]int64{}
	for _, name := range []string{"all", "Langues", "Langues__Anglais", "Langues__Anglais__Verbes", "Maths", "Histoire__Rome"} {
		sizes[filepath.Join("docs", name+".apkg")] = 1536
	}
	return sizes
}

func TestDeckPages(t *testing.T) {
	pages, err := testGenerator().DeckPages(testTree(), testSizes())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join("docs", "export", "index.md"),
		filepath.Join("docs", "export", "Histoire", "index.md"),
		filepath.Join("docs", "export", "Langues", "index.md"),
		filepath.Join("docs", "export", "Langues", "Anglais", "index.md"),
	}, pages.Paths())

	t.Run("homepage", func(t *testing.T) {
		home := pages[filepath.Join("docs", "export", "index.md")]

		assert.True(t, strings.HasPrefix(home, "---\nicon: material/download\n---\n\n# Télécharger mes flashcards\n"))
		assert.Contains(t, home, "[Comment utiliser ce site ?](../questions/start.md)")
		assert.Contains(t, home, "[Fichiers média manquants ? Cliquez ici](../media/index.md)")
		assert.Contains(t, home, "[:material-download: Télécharger toutes les flashcards](../all.apkg) (1.5 Ko) - "+
			"[Aperçu](https://viewer.example.org/#https://example.org/flashcards/all.apkg){ target=\"_blank\" } (1)\n{ .annotate }")
		assert.Contains(t, home, "1. Dernière modification : 01/01/1970 01:06:40\n    Nombre de cartes : 1 238\n")

		histoire := "| [:material-folder: Histoire](Histoire/index.md) | - | - | 0 | - |"
		langues := "| [:material-folder: Langues](Langues/index.md) | [Aperçu](https://viewer.example.org/#https://example.org/flashcards/Langues.apkg){ target=\"_blank\" } | 1.5 Ko | 4 | 01/01/1970 00:50:00 |"
		maths := "| [Maths](../Maths.apkg) | [Aperçu](https://viewer.example.org/#https://example.org/flashcards/Maths.apkg){ target=\"_blank\" } | 1.5 Ko | 1 234 | 01/01/1970 01:06:40 |"
		assert.Contains(t, home, histoire)
		assert.Contains(t, home, langues)
		assert.Contains(t, home, maths)
		assert.Less(t, strings.Index(home, histoire), strings.Index(home, langues))
		assert.Less(t, strings.Index(home, langues), strings.Index(home, maths))
	})

	t.Run("nested page", func(t *testing.T) {
		page := pages[filepath.Join("docs", "export", "Langues", "Anglais", "index.md")]

		assert.True(t, strings.HasPrefix(page, "# Langues::Anglais\n"))
		assert.NotContains(t, page, "icon: material/download")
		assert.Contains(t, page, "[Comment utiliser ce site ?](../../../questions/start.md)")
		assert.Contains(t, page, "](../../../Langues__Anglais.apkg) (1.5 Ko)")
		assert.Contains(t, page, "| [Verbes](../../../Langues__Anglais__Verbes.apkg) |")
	})

	t.Run("virtual page has no download", func(t *testing.T) {
		page := pages[filepath.Join("docs", "export", "Histoire", "index.md")]

		assert.True(t, strings.HasPrefix(page, "# Histoire\n"))
		assert.NotContains(t, page, "Télécharger toutes les flashcards")
		assert.Contains(t, page, "| [Rome](../../Histoire__Rome.apkg) |")
	})
}

func TestDeckPagesOmitsUnknownModification(t *testing.T) {
	tree := decktree.Build([]*entities.Deck{{ID: 5, Name: "Vide"}}, nil, collection.DeckStats{})

	pages, err := testGenerator().DeckPages(tree, map[string]int64{
		filepath.Join("docs", "all.apkg"):  100,
		filepath.Join("docs", "Vide.apkg"): 100,
	})
	require.NoError(t, err)

	home := pages[filepath.Join("docs", "export", "index.md")]
	assert.Contains(t, home, "1. Nombre de cartes : 0\n")
	assert.NotContains(t, home, "Dernière modification :")
	assert.Contains(t, home, "| [Vide](../Vide.apkg) | ")
}

func TestDeckPagesMissingPackage(t *testing.T) {
	sizes := testSizes()
	delete(sizes, filepath.Join("docs", "Maths.apkg"))

	_, err := testGenerator().DeckPages(testTree(), sizes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maths")
}

func TestGeneratorText(t *testing.T) {
	g := testGenerator()
	assert.Equal(t, `A\|B \[x\]`, g.text("<b>A|B</b> [x]"))
	assert.Equal(t, "Anglais", g.text("Anglais"))
	assert.Equal(t, `\_\_init\_\_`, g.text("__init__"))
	assert.Equal(t, "2 \\* 3 \\`x\\`", g.text("2 * 3 `x`"))
}

func TestDeckPagesEscapesEmphasis(t *testing.T) {
	g := testGenerator()
	decks := []*entities.Deck{nil, {ID: 5, Name: "__init__"}}
	stats := map[int64]collection.DeckStats{5: {Cards: 3, LastModified: at(100)}}
	root := decktree.Build(decks, stats, collection.DeckStats{Cards: 3, LastModified: at(100)})
	sizes := map[string]int64{
		filepath.Join("docs", "all.apkg"):      10,
		filepath.Join("docs", "__init__.apkg"): 10,
	}

	pages, err := g.DeckPages(root, sizes)
	require.NoError(t, err)

	page := pages[g.Layout.DeckPage(nil)]
	assert.Contains(t, page, `| [\_\_init\_\_](`)
	assert.NotContains(t, page, "| [__init__](")
}

func TestMediaPage(t *testing.T) {
	src := t.TempDir()
	docs := t.TempDir()
	g := NewGenerator(Layout{DocsDir: docs}, testViewer, testBaseURL, time.UTC)
	require.NoError(t, os.MkdirAll(g.Layout.MediaDir(), 0755))

	path := filepath.Join(src, "chat noir.png")
	require.NoError(t, os.WriteFile(path, []byte("meow"), 0644))
	files := []collection.MediaFile{{Name: "chat noir.png", Path: path, Size: 4, ModTime: at(0)}}

	pages, err := g.MediaPage(files)
	require.NoError(t, err)

	page := pages[g.Layout.MediaPage()]
	assert.True(t, strings.HasPrefix(page, "# Fichiers média\n"))
	assert.Contains(t, page, "| [chat noir.png](chat%20noir.png) | 4.0 o | 01/01/1970 00:00:00 |")

	copied, err := os.ReadFile(filepath.Join(g.Layout.MediaDir(), "chat noir.png"))
	require.NoError(t, err)
	assert.Equal(t, "meow", string(copied))
}

func TestWritePages(t *testing.T) {
	docs := t.TempDir()
	pages := Pages{
		filepath.Join(docs, "export", "index.md"):      "# Accueil\n",
		filepath.Join(docs, "export", "A", "index.md"): "# A\n",
		filepath.Join(docs, "media", "index.md"):       "# Médias\n",
	}
	pages.Merge(Pages{filepath.Join(docs, "export", "B", "index.md"): "# B\n"})

	require.NoError(t, WritePages(pages))

	for path, content := range pages {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
	assert.Len(t, pages, 4)
}
