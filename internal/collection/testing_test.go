package collection

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDeck struct {
	id       int64
	name     string
	filtered bool
}

type testCard struct {
	id   int64
	did  int64
	odid int64
	mod  int64
}

const cardsSchema = `CREATE TABLE cards (
	id integer PRIMARY KEY,
	nid integer NOT NULL DEFAULT 0,
	did integer NOT NULL,
	mod integer NOT NULL,
	odid integer NOT NULL DEFAULT 0
)`

// createCollection writes a collection database using the decks table layout.
func createCollection(t *testing.T, dir string, decks []testDeck, cards []testCard) {
	t.Helper()

	db, err := sql.Open(driverName, filepath.Join(dir, CollectionFile))
	require.NoError(t, err)
	defer db.Close()

	statements := []string{
		`CREATE TABLE decks (
			id integer PRIMARY KEY NOT NULL,
			name text NOT NULL COLLATE unicase,
			mtime_secs integer NOT NULL DEFAULT 0,
			usn integer NOT NULL DEFAULT 0,
			common blob NOT NULL DEFAULT x'',
			kind blob NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_decks_name ON decks (name)`,
		cardsSchema,
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	for _, d := range decks {
		kind := []byte{0x0a, 0x00}
		if d.filtered {
			kind = []byte{0x12, 0x00}
		}
		_, err := db.Exec(`INSERT INTO decks (id, name, kind) VALUES (?, ?, ?)`, d.id, d.name, kind)
		require.NoError(t, err)
	}
	insertCards(t, db, cards)
}

// createLegacyCollection writes a collection database keeping decks as JSON in the col table.
func createLegacyCollection(t *testing.T, dir, decksJSON string, cards []testCard) {
	t.Helper()

	db, err := sql.Open(driverName, filepath.Join(dir, CollectionFile))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE col (id integer PRIMARY KEY, decks text NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO col (id, decks) VALUES (1, ?)`, decksJSON)
	require.NoError(t, err)
	_, err = db.Exec(cardsSchema)
	require.NoError(t, err)

	insertCards(t, db, cards)
}

func insertCards(t *testing.T, db *sql.DB, cards []testCard) {
	t.Helper()
	for _, c := range cards {
		_, err := db.Exec(`INSERT INTO cards (id, did, mod, odid) VALUES (?, ?, ?, ?)`, c.id, c.did, c.mod, c.odid)
		require.NoError(t, err)
	}
}

var fixtureDecks = []testDeck{
	{id: 1, name: "Default"},
	{id: 10, name: "Langues"},
	{id: 11, name: "Langues\x1fAnglais"},
	{id: 12, name: "Langues\x1fAnglais\x1fVerbes"},
	{id: 13, name: "Langues\x1fEspagnol"},
	{id: 20, name: "Maths"},
	{id: 30, name: "Révisions", filtered: true},
}

var fixtureCards = []testCard{
	{id: 1, did: 10, mod: 1000},
	{id: 2, did: 11, mod: 2000},
	{id: 3, did: 11, mod: 2500},
	{id: 4, did: 12, mod: 5000},
	{id: 5, did: 20, mod: 100},
	{id: 6, did: 20, mod: 200},
	{id: 7, did: 20, mod: 300},
	// moved from Espagnol into the filtered deck
	{id: 8, did: 30, odid: 13, mod: 7000},
}

func fixtureStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	createCollection(t, dir, fixtureDecks, fixtureCards)
	store := NewStore(dir)
	t.Cleanup(func() { store.Close() })
	return store
}
