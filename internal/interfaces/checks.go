package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/flashcards/internal/anki"
	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/database"
	"github.com/mrlokans/flashcards/internal/http"
	"github.com/mrlokans/flashcards/internal/jobs"
	"github.com/mrlokans/flashcards/internal/mailer"
	"github.com/mrlokans/flashcards/internal/scheduler"
	"github.com/mrlokans/flashcards/internal/settingsstore"
	"github.com/mrlokans/flashcards/internal/site"
	"github.com/mrlokans/flashcards/internal/tasks"
	"github.com/mrlokans/flashcards/internal/telegram"
)

// =============================================================================
// Collection
// =============================================================================

var _ anki.Bridge = (*anki.ProcessBridge)(nil)
var _ jobs.Collection = (*collection.Wrapper)(nil)

// =============================================================================
// Job collaborators
// =============================================================================

var _ jobs.SiteBuilder = (*site.Builder)(nil)
var _ jobs.MailSender = (*mailer.Sender)(nil)
var _ jobs.Messenger = (*telegram.Client)(nil)
var _ jobs.MessageState = (*settingsstore.NotifyState)(nil)

// =============================================================================
// State database
// =============================================================================

var _ settingsstore.SettingStore = (*database.Database)(nil)
var _ jobs.RunStore = (*database.Database)(nil)
var _ tasks.RunPruner = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.RunStore = (*database.Database)(nil)

// =============================================================================
// Queue and schedule
// =============================================================================

var _ tasks.JobRunner = (*jobs.Runner)(nil)
var _ scheduler.Queue = (*tasks.Client)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.JobCatalog = (*jobs.Registry)(nil)
var _ http.Schedule = (*scheduler.Scheduler)(nil)
