package collection

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashcards/internal/entities"
)

func deckNames(decks []*entities.Deck) []string {
	names := make([]string, len(decks))
	for i, d := range decks {
		if d == nil {
			names[i] = "<all>"
			continue
		}
		names[i] = d.Name
	}
	return names
}

func TestStore_Decks(t *testing.T) {
	store := fixtureStore(t)

	decks, err := store.Decks(context.Background())
	require.NoError(t, err)
	assert.Len(t, decks, len(fixtureDecks))

	byID := make(map[int64]entities.Deck)
	for _, d := range decks {
		byID[d.ID] = d
	}
	assert.Equal(t, "Langues::Anglais::Verbes", byID[12].Name)
	assert.True(t, byID[30].Filtered)
	assert.False(t, byID[10].Filtered)
}

func TestStore_AllDecks(t *testing.T) {
	store := fixtureStore(t)

	decks, err := store.AllDecks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"<all>",
		"Langues",
		"Langues::Anglais",
		"Langues::Anglais::Verbes",
		"Langues::Espagnol",
		"Maths",
	}, deckNames(decks))
}

func TestStore_AllDecksKeepsNonEmptyDefault(t *testing.T) {
	dir := t.TempDir()
	createCollection(t, dir,
		[]testDeck{{id: 1, name: "Default"}, {id: 2, name: "Maths"}},
		[]testCard{{id: 1, did: 1, mod: 10}},
	)
	store := NewStore(dir)
	defer store.Close()

	decks, err := store.AllDecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"<all>", "Default", "Maths"}, deckNames(decks))
}

func TestStore_ChildrenAndParents(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()

	children, err := store.Children(ctx, entities.Deck{ID: 10, Name: "Langues"})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Langues::Anglais", children[0].Name)
	assert.Equal(t, "Langues::Espagnol", children[1].Name)

	has, err := store.HasChildren(ctx, entities.Deck{ID: 20, Name: "Maths"})
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.HasChildren(ctx, entities.Deck{ID: 11, Name: "Langues::Anglais"})
	require.NoError(t, err)
	assert.True(t, has)

	assert.True(t, IsChild(entities.Deck{Name: "Langues::Anglais"}))
	assert.False(t, IsChild(entities.Deck{Name: "Langues"}))
}

func TestStore_CardCountAndModTime(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		deck    *entities.Deck
		cards   int
		modTime int64
	}{
		{"whole collection", nil, 8, 7000},
		{"parent includes subdecks and filtered cards", &entities.Deck{ID: 10, Name: "Langues"}, 5, 7000},
		{"intermediate deck", &entities.Deck{ID: 11, Name: "Langues::Anglais"}, 3, 5000},
		{"cards only through original deck", &entities.Deck{ID: 13, Name: "Langues::Espagnol"}, 1, 7000},
		{"leaf deck", &entities.Deck{ID: 20, Name: "Maths"}, 3, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := store.CardCount(ctx, tt.deck)
			require.NoError(t, err)
			assert.Equal(t, tt.cards, count)

			mod, err := store.ModTime(ctx, tt.deck)
			require.NoError(t, err)
			assert.Equal(t, time.Unix(tt.modTime, 0).UTC(), mod)
		})
	}
}

func TestStore_ModTimeWithoutCards(t *testing.T) {
	dir := t.TempDir()
	createCollection(t, dir, []testDeck{{id: 2, name: "Empty"}}, nil)
	store := NewStore(dir)
	defer store.Close()

	mod, err := store.ModTime(context.Background(), &entities.Deck{ID: 2, Name: "Empty"})
	require.NoError(t, err)
	assert.True(t, mod.IsZero())

	total, err := store.TotalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cards)
	assert.True(t, total.LastModified.IsZero())
}

func TestStore_DeckStats(t *testing.T) {
	store := fixtureStore(t)

	stats, err := store.DeckStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats[10].Cards)
	assert.Equal(t, 2, stats[11].Cards)
	assert.Equal(t, time.Unix(2500, 0).UTC(), stats[11].LastModified)
	assert.Equal(t, 1, stats[13].Cards, "card in a filtered deck counts for its home deck")
	assert.Equal(t, 1, stats[30].Cards)
	assert.Equal(t, 3, stats[20].Cards)
	_, ok := stats[1]
	assert.False(t, ok)
}

func TestStore_LegacySchema(t *testing.T) {
	dir := t.TempDir()
	createLegacyCollection(t, dir,
		`{"1": {"id": 1, "name": "Default", "dyn": 0},
		  "5": {"id": 5, "name": "Maths", "dyn": 0},
		  "6": {"id": 6, "name": "Cram", "dyn": 1}}`,
		[]testCard{{id: 1, did: 1, mod: 10}, {id: 2, did: 5, mod: 20}},
	)
	store := NewStore(dir)
	defer store.Close()

	decks, err := store.AllDecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"<all>", "Default", "Maths"}, deckNames(decks))
}

func TestStore_MissingCollection(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Decks(context.Background())
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestStore_MediaFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	files, err := store.MediaFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	mediaDir := store.MediaDir()
	require.NoError(t, os.MkdirAll(filepath.Join(mediaDir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "b.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "a.mp3"), []byte("audio!"), 0644))

	files, err = store.MediaFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.mp3", files[0].Name)
	assert.Equal(t, int64(6), files[0].Size)
	assert.Equal(t, filepath.Join(mediaDir, "a.mp3"), files[0].Path)
	assert.Equal(t, "b.png", files[1].Name)
}
