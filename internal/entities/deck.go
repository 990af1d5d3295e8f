package entities

// DeckSeparator separates the components of a hierarchical deck name.
const DeckSeparator = "::"

// DefaultDeckID is the ID of the deck every collection is created with.
const DefaultDeckID int64 = 1

// Deck identifies a deck of the collection. A nil *Deck stands for the
// whole collection wherever a deck is optional.
type Deck struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Filtered bool   `json:"filtered,omitempty"`
}

// DisplayName returns the deck name, or "all the collection" for a nil deck.
func (d *Deck) DisplayName() string {
	if d == nil {
		return "all the collection"
	}
	return d.Name
}

// DueCounts holds the number of cards due today, split by scheduler category.
type DueCounts struct {
	New    int `json:"new"`
	Learn  int `json:"learn"`
	Review int `json:"review"`
}

// Add accumulates other into c.
func (c *DueCounts) Add(other DueCounts) {
	c.New += other.New
	c.Learn += other.Learn
	c.Review += other.Review
}

// Any reports whether at least one card is due.
func (c DueCounts) Any() bool {
	return c.New > 0 || c.Learn > 0 || c.Review > 0
}
