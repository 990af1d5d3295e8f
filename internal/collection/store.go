package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/mrlokans/flashcards/internal/entities"
)

const (
	// driverName is a go-sqlite3 driver that knows the collations declared by
	// the collection schema.
	driverName = "sqlite3_collection"

	// CollectionFile is the collection database inside the collection directory.
	CollectionFile = "collection.anki2"
	// MediaFolder holds the media files referenced by the notes.
	MediaFolder = "collection.media"

	// nameSeparator separates deck name components in the decks table.
	nameSeparator = "\x1f"
	// filteredKindTag is the first byte of the kind blob of a filtered deck
	// (field 2, length-delimited).
	filteredKindTag = 0x12
)

// ErrNoCollection is returned when the collection database does not exist yet.
var ErrNoCollection = errors.New("collection database not found")

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterCollation("unicase", compareUnicase)
		},
	})
}

func compareUnicase(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// DeckStats holds the number of cards of a deck and the latest modification
// time of these cards.
type DeckStats struct {
	Cards        int
	LastModified time.Time
}

// merge combines two stats of disjoint card sets.
func (s DeckStats) merge(other DeckStats) DeckStats {
	s.Cards += other.Cards
	if other.LastModified.After(s.LastModified) {
		s.LastModified = other.LastModified
	}
	return s
}

// MediaFile describes a file of the media folder.
type MediaFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store reads decks, cards and media from a local collection. The database
// is opened lazily and never written to.
type Store struct {
	dir string

	mu sync.Mutex
	db *sql.DB
}

// NewStore creates a store for the collection kept in dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the path of the collection database.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CollectionFile)
}

// MediaDir returns the path of the media folder.
func (s *Store) MediaDir() string {
	return filepath.Join(s.dir, MediaFolder)
}

// Close releases the database connection. The next query reopens it, which
// is required after a full sync replaced the database file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCollection, path)
		}
		return nil, fmt.Errorf("failed to stat collection: %w", err)
	}

	db, err := sql.Open(driverName, path+"?_query_only=true&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	s.db = db
	return db, nil
}

// Decks returns every deck of the collection, filtered decks included,
// in no particular order.
func (s *Store) Decks(ctx context.Context) ([]entities.Deck, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var hasDecksTable int
	err = db.QueryRowContext(ctx,
		`SELECT count() FROM sqlite_master WHERE type = 'table' AND name = 'decks'`,
	).Scan(&hasDecksTable)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect collection schema: %w", err)
	}

	if hasDecksTable > 0 {
		return readDecksTable(ctx, db)
	}
	return readLegacyDecks(ctx, db)
}

func readDecksTable(ctx context.Context, db *sql.DB) ([]entities.Deck, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, kind FROM decks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []entities.Deck
	for rows.Next() {
		var deck entities.Deck
		var kind []byte
		if err := rows.Scan(&deck.ID, &deck.Name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		deck.Name = strings.ReplaceAll(deck.Name, nameSeparator, entities.DeckSeparator)
		deck.Filtered = len(kind) > 0 && kind[0] == filteredKindTag
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

type legacyDeck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Dyn  int    `json:"dyn"`
}

func readLegacyDecks(ctx context.Context, db *sql.DB) ([]entities.Deck, error) {
	var raw string
	if err := db.QueryRowContext(ctx, `SELECT decks FROM col`).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to query legacy decks: %w", err)
	}

	var byID map[string]legacyDeck
	if err := json.Unmarshal([]byte(raw), &byID); err != nil {
		return nil, fmt.Errorf("failed to decode legacy decks: %w", err)
	}

	decks := make([]entities.Deck, 0, len(byID))
	for _, d := range byID {
		decks = append(decks, entities.Deck{ID: d.ID, Name: d.Name, Filtered: d.Dyn != 0})
	}
	return decks, nil
}

// AllDecks returns the decks to export: nil (the whole collection) first,
// then the regular decks sorted by name so a parent always comes before its
// children. The default deck is skipped when it is empty and has no children.
func (s *Store) AllDecks(ctx context.Context) ([]*entities.Deck, error) {
	decks, err := s.Decks(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.DeckStats(ctx)
	if err != nil {
		return nil, err
	}

	result := []*entities.Deck{nil}
	for i := range decks {
		deck := decks[i]
		if deck.Filtered {
			continue
		}
		if deck.ID == entities.DefaultDeckID &&
			stats[deck.ID].Cards == 0 && len(childrenOf(decks, deck.Name)) == 0 {
			continue
		}
		result = append(result, &deck)
	}

	sort.SliceStable(result[1:], func(i, j int) bool {
		return result[1+i].Name < result[1+j].Name
	})
	return result, nil
}

// childrenOf returns the direct children of the deck called name.
func childrenOf(decks []entities.Deck, name string) []entities.Deck {
	prefix := name + entities.DeckSeparator
	var children []entities.Deck
	for _, d := range decks {
		rest, ok := strings.CutPrefix(d.Name, prefix)
		if ok && rest != "" && !strings.Contains(rest, entities.DeckSeparator) {
			children = append(children, d)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

// subtree returns the IDs of the deck and all its descendants.
func subtree(decks []entities.Deck, deck entities.Deck) []int64 {
	prefix := deck.Name + entities.DeckSeparator
	ids := []int64{deck.ID}
	for _, d := range decks {
		if strings.HasPrefix(d.Name, prefix) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Children returns the direct children of deck, filtered decks included.
func (s *Store) Children(ctx context.Context, deck entities.Deck) ([]entities.Deck, error) {
	decks, err := s.Decks(ctx)
	if err != nil {
		return nil, err
	}
	return childrenOf(decks, deck.Name), nil
}

// HasChildren reports whether deck has at least one child deck.
func (s *Store) HasChildren(ctx context.Context, deck entities.Deck) (bool, error) {
	children, err := s.Children(ctx, deck)
	if err != nil {
		return false, err
	}
	return len(children) > 0, nil
}

// IsChild reports whether deck has a parent deck.
func IsChild(deck entities.Deck) bool {
	return strings.Contains(deck.Name, entities.DeckSeparator)
}

// CardCount returns the number of cards of deck and its subdecks, or of the
// whole collection when deck is nil. Cards moved to a filtered deck still
// count for their home deck.
func (s *Store) CardCount(ctx context.Context, deck *entities.Deck) (int, error) {
	stats, err := s.subtreeStats(ctx, deck)
	if err != nil {
		return 0, err
	}
	return stats.Cards, nil
}

// ModTime returns the latest modification time of the cards of deck and its
// subdecks, or of the whole collection when deck is nil. The zero time is
// returned when there are no cards.
func (s *Store) ModTime(ctx context.Context, deck *entities.Deck) (time.Time, error) {
	stats, err := s.subtreeStats(ctx, deck)
	if err != nil {
		return time.Time{}, err
	}
	return stats.LastModified, nil
}

func (s *Store) subtreeStats(ctx context.Context, deck *entities.Deck) (DeckStats, error) {
	if deck == nil {
		return s.TotalStats(ctx)
	}

	decks, err := s.Decks(ctx)
	if err != nil {
		return DeckStats{}, err
	}
	ids := subtree(decks, *deck)

	db, err := s.conn()
	if err != nil {
		return DeckStats{}, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, 2*len(ids))
	for range 2 {
		for _, id := range ids {
			args = append(args, id)
		}
	}

	query := fmt.Sprintf(
		`SELECT count(), coalesce(max(mod), 0) FROM cards WHERE did IN (%s) OR odid IN (%s)`,
		placeholders, placeholders)
	return scanStats(db.QueryRowContext(ctx, query, args...))
}

// TotalStats returns the card count and latest modification of the whole collection.
func (s *Store) TotalStats(ctx context.Context) (DeckStats, error) {
	db, err := s.conn()
	if err != nil {
		return DeckStats{}, err
	}
	return scanStats(db.QueryRowContext(ctx, `SELECT count(), coalesce(max(mod), 0) FROM cards`))
}

func scanStats(row *sql.Row) (DeckStats, error) {
	var count int
	var mod int64
	if err := row.Scan(&count, &mod); err != nil {
		return DeckStats{}, fmt.Errorf("failed to query cards: %w", err)
	}
	return DeckStats{Cards: count, LastModified: unixOrZero(mod)}, nil
}

func unixOrZero(secs int64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// DeckStats returns the cards directly held by each deck (not its
// subdecks). A card sitting in a filtered deck counts for both the filtered
// deck and its home deck.
func (s *Store) DeckStats(ctx context.Context) (map[int64]DeckStats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]DeckStats)
	queries := []string{
		`SELECT did, count(), max(mod) FROM cards GROUP BY did`,
		`SELECT odid, count(), max(mod) FROM cards WHERE odid != 0 GROUP BY odid`,
	}
	for _, query := range queries {
		if err := collectStats(ctx, db, query, stats); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func collectStats(ctx context.Context, db *sql.DB, query string, stats map[int64]DeckStats) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query deck stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, mod int64
		var count int
		if err := rows.Scan(&id, &count, &mod); err != nil {
			return fmt.Errorf("failed to scan deck stats: %w", err)
		}
		stats[id] = stats[id].merge(DeckStats{Cards: count, LastModified: unixOrZero(mod)})
	}
	return rows.Err()
}

// MediaFiles lists the regular files of the media folder sorted by name.
// A missing media folder yields no files.
func (s *Store) MediaFiles() ([]MediaFile, error) {
	entries, err := os.ReadDir(s.MediaDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read media folder: %w", err)
	}

	var files []MediaFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat media file %s: %w", entry.Name(), err)
		}
		files = append(files, MediaFile{
			Name:    entry.Name(),
			Path:    filepath.Join(s.MediaDir(), entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
