package jobs

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/decktree"
	"github.com/mrlokans/flashcards/internal/entities"
	"github.com/mrlokans/flashcards/internal/progress"
	"github.com/mrlokans/flashcards/internal/site"
)

// SiteBuilder turns the generated Markdown into the static site.
type SiteBuilder interface {
	Build(ctx context.Context, now time.Time) error
}

// PublishJob exports every deck and regenerates the download site.
type PublishJob struct {
	Collection Collection
	Generator  *site.Generator
	Builder    SiteBuilder
	// Workers bounds the concurrent exports. Each export starts a bridge
	// process on the collection, which is opened exclusively, so 1 unless
	// the bridge serialises access itself.
	Workers int
	Now     func() time.Time
}

func (j *PublishJob) Name() string { return NamePublish }

func (j *PublishJob) Run(ctx context.Context, opts Options) error {
	out := opts.out()
	layout := j.Generator.Layout

	if err := syncFirst(ctx, j.Collection, opts); err != nil {
		return err
	}

	if err := progress.Step(out, "Cleaning up", layout.Clean); err != nil {
		return err
	}

	decks, err := j.Collection.AllDecks(ctx)
	if err != nil {
		return err
	}

	sizes, err := j.exportAll(ctx, decks, progress.NewPrinter(out))
	if err != nil {
		return err
	}

	stats, err := j.Collection.DeckStats(ctx)
	if err != nil {
		return err
	}
	total, err := j.Collection.TotalStats(ctx)
	if err != nil {
		return err
	}

	pages, err := j.Generator.DeckPages(decktree.Build(decks, stats, total), sizes)
	if err != nil {
		return err
	}

	files, err := j.Collection.MediaFiles()
	if err != nil {
		return err
	}
	err = progress.Step(out, fmt.Sprintf("Copying %d media files", len(files)), func() error {
		mediaPages, err := j.Generator.MediaPage(files)
		if err != nil {
			return err
		}
		pages.Merge(mediaPages)
		return nil
	})
	if err != nil {
		return err
	}

	err = progress.Step(out, fmt.Sprintf("Writing %d pages", len(pages)), func() error {
		return site.WritePages(pages)
	})
	if err != nil {
		return err
	}

	return progress.Step(out, "Building documentation", func() error {
		return j.Builder.Build(ctx, clock(j.Now))
	})
}

// exportAll exports the decks concurrently and returns the package sizes
// keyed by package path.
func (j *PublishJob) exportAll(ctx context.Context, decks []*entities.Deck, printer *progress.Printer) (map[string]int64, error) {
	dir := j.Generator.Layout.PackageDir()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(j.Workers, 1))
	for _, deck := range decks {
		g.Go(func() error {
			_, err := j.Collection.Export(gctx, deck, dir, collection.ExportShare)
			return printer.Report(exportMessage(deck), err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sizes := make(map[string]int64, len(decks))
	for _, deck := range decks {
		path := collection.ExportFile(deck, dir)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat package of %s: %w", deck.DisplayName(), err)
		}
		sizes[path] = info.Size()
	}
	return sizes, nil
}

func exportMessage(deck *entities.Deck) string {
	if deck == nil {
		return "Exporting all the collection"
	}
	return fmt.Sprintf("Exporting %s (%d)", deck.Name, deck.ID)
}
