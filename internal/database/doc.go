// Package database stores the daemon state in a SQLite database through gorm.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, facade methods
//	├── settings/        # Key/value settings
//	└── runs/            # Job run history
//
// Each sub-package provides a Repository bound to a *gorm.DB:
//
//	db, err := database.NewDatabase("./flashcards.db")
//	runsRepo := runs.NewRepository(db.DB)
//	recent, err := runsRepo.List("publish", 10)
//
// The Database struct exposes the operations the rest of the toolkit needs
// so callers can depend on small interfaces instead of repositories.
package database
