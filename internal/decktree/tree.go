// Package decktree arranges the flat deck list of a collection into the
// hierarchy encoded by deck names, and rolls card counts and modification
// times up from each deck to its ancestors.
package decktree

import (
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/entities"
)

// Node is a deck of the hierarchy. The root stands for the whole collection
// and has no deck; so do virtual nodes, created for path components that
// have no deck of their own.
type Node struct {
	Name     string
	Deck     *entities.Deck
	Parent   *Node
	Children []*Node

	// Own holds the cards filed directly in this deck.
	Own collection.DeckStats
	// Cards and LastModified cover the deck and all its descendants.
	Cards        int
	LastModified time.Time
}

// IsRoot reports whether n is the whole collection.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// IsVirtual reports whether n is an intermediate path component without a deck.
func (n *Node) IsVirtual() bool {
	return !n.IsRoot() && n.Deck == nil
}

// IsInterior reports whether n gets its own index page: the root and every
// node with children.
func (n *Node) IsInterior() bool {
	return n.IsRoot() || len(n.Children) > 0
}

// Parts returns the components of the node name, none for the root.
func (n *Node) Parts() []string {
	if n.IsRoot() {
		return nil
	}
	return strings.Split(n.Name, entities.DeckSeparator)
}

// Leaf returns the last component of the node name.
func (n *Node) Leaf() string {
	parts := n.Parts()
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Walk calls fn for n and then for its descendants, parents before
// children and siblings in name order. It stops at the first error.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the node with the given full name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	_ = n.Walk(func(node *Node) error {
		if found == nil && !node.IsRoot() && node.Name == name {
			found = node
		}
		return nil
	})
	return found
}

// Build creates the hierarchy of decks. Nil entries (the whole collection)
// are ignored: the root takes total as its totals. stats holds the cards
// filed directly in each deck, keyed by deck ID.
func Build(decks []*entities.Deck, stats map[int64]collection.DeckStats, total collection.DeckStats) *Node {
	root := &Node{}
	index := map[string]*Node{}

	var ensure func(name string) *Node
	ensure = func(name string) *Node {
		if node, ok := index[name]; ok {
			return node
		}
		parent := root
		if i := strings.LastIndex(name, entities.DeckSeparator); i >= 0 {
			parent = ensure(name[:i])
		}
		node := &Node{Name: name, Parent: parent}
		parent.Children = append(parent.Children, node)
		index[name] = node
		return node
	}

	for _, deck := range decks {
		if deck == nil {
			continue
		}
		node := ensure(deck.Name)
		node.Deck = deck
		node.Own = stats[deck.ID]
	}

	rollUp(root)
	root.Cards = total.Cards
	root.LastModified = total.LastModified
	return root
}

// rollUp sorts children by name and computes the subtree totals of n.
func rollUp(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})

	n.Cards = n.Own.Cards
	n.LastModified = n.Own.LastModified
	for _, child := range n.Children {
		rollUp(child)
		n.Cards += child.Cards
		if child.LastModified.After(n.LastModified) {
			n.LastModified = child.LastModified
		}
	}
}
