package config

// Default locations
const (
	// DefaultDatabasePath is the default path of the state database
	DefaultDatabasePath = "./flashcards.db"

	// DefaultCollectionDir holds collection.anki2 and collection.media
	DefaultCollectionDir = "./collection"

	// DefaultBaseURL is where the download site is published
	DefaultBaseURL = "https://lfavole.github.io/flashcards/"

	// DefaultViewerURL is the online package viewer linked from deck pages
	DefaultViewerURL = "https://lfavole.github.io/flashcards-viewer/"
)
