package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/models"
	"github.com/cyderes/notion-sync/internal/notion"
	"github.com/cyderes/notion-sync/internal/storage"
)

// Source is the subset of the Notion client used by the feeds
type Source interface {
	QueryAll(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
}

// Service pulls the four feeds and hands the assembled document to storage
type Service struct {
	databases config.Databases
	source    Source
	storage   storage.Storage
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new ingestion service
func NewService(databases config.Databases, source Source, store storage.Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		databases: databases,
		source:    source,
		storage:   store,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Start runs a sync immediately and then on every tick of the cron schedule
// until ctx is cancelled. Overlapping runs are skipped.
func (s *Service) Start(ctx context.Context, schedule string) error {
	cronLog := cron.PrintfLogger(zap.NewStdLog(s.logger))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.runScheduled(ctx)
	c.Start()
	s.logger.Info("scheduler started", zap.String("schedule", schedule))

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (s *Service) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Sync(ctx); err != nil {
		if ctx.Err() != nil {
			s.logger.Info("sync interrupted, snapshot left unchanged")
			return
		}
		// Log error but don't stop the scheduler
		s.logger.Error("sync failed", zap.Error(err))
	}
}

// Sync fetches every feed concurrently, stores the resulting document and
// records the run status. Feed failures are embedded in the document; only a
// cancelled context or a storage failure is returned.
func (s *Service) Sync(ctx context.Context) (*models.Document, error) {
	s.logger.Info("Fetching Notion data")
	doc := &models.Document{}

	// Each goroutine owns one field of doc. Feeds never return an error so one
	// failure cannot cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		doc.Habits = runFeed(s, "habits", func() (models.HabitsSummary, error) { return s.fetchHabits(ctx) })
		return nil
	})
	g.Go(func() error {
		doc.Journal = runFeed(s, "journal", func() (models.JournalSummary, error) { return s.fetchJournal(ctx) })
		return nil
	})
	g.Go(func() error {
		doc.Skincare = runFeed(s, "skincare", func() (models.SkincareSummary, error) { return s.fetchSkincare(ctx) })
		return nil
	})
	g.Go(func() error {
		doc.Treatments = runFeed(s, "treatments", func() (models.TreatmentsSummary, error) { return s.fetchTreatments(ctx) })
		return nil
	})
	_ = g.Wait()

	// An interrupted run must not replace the last good snapshot.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync interrupted: %w", err)
	}

	doc.SyncedAt = s.now()
	status := buildStatus(doc)

	if err := s.storage.StoreDocument(ctx, doc); err != nil {
		status.Status = models.StatusFailure
		status.ErrorMessage = err.Error()
		status.LastSuccessfulRun = time.Time{}
		s.updateStatus(ctx, status)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	s.updateStatus(ctx, status)

	s.logSummary(doc)
	if len(status.FailedFeeds) > 0 {
		s.logger.Warn("sync completed with feed errors", zap.Strings("failed_feeds", status.FailedFeeds))
	}
	return doc, nil
}

// runFeed converts a feed error into an embedded error result
func runFeed[T any](s *Service, name string, fetch func() (T, error)) models.FeedResult[T] {
	data, err := fetch()
	if err != nil {
		s.logger.Error("feed fetch failed", zap.String("feed", name), zap.Error(err))
		return models.Failed[T](err)
	}
	return models.Ok(data)
}

func (s *Service) updateStatus(ctx context.Context, status models.SyncStatus) {
	if err := s.storage.UpdateSyncStatus(ctx, status); err != nil {
		s.logger.Warn("failed to update sync status", zap.Error(err))
	}
}

func buildStatus(doc *models.Document) models.SyncStatus {
	status := models.SyncStatus{
		LastAttempt:  doc.SyncedAt,
		RecordCounts: map[string]int{},
	}
	if doc.Habits.Failed() {
		status.FailedFeeds = append(status.FailedFeeds, "habits")
	} else if doc.Habits.Data.Today != nil {
		status.RecordCounts["habits"] = 1
	} else {
		status.RecordCounts["habits"] = 0
	}
	if doc.Journal.Failed() {
		status.FailedFeeds = append(status.FailedFeeds, "journal")
	} else {
		status.RecordCounts["journal"] = len(doc.Journal.Data.Entries)
	}
	if doc.Skincare.Failed() {
		status.FailedFeeds = append(status.FailedFeeds, "skincare")
	} else {
		status.RecordCounts["skincare"] = len(doc.Skincare.Data.Products)
	}
	if doc.Treatments.Failed() {
		status.FailedFeeds = append(status.FailedFeeds, "treatments")
	} else {
		status.RecordCounts["treatments"] = len(doc.Treatments.Data.Treatments)
	}

	if len(status.FailedFeeds) == 0 {
		status.Status = models.StatusSuccess
		status.LastSuccessfulRun = doc.SyncedAt
	} else {
		status.Status = models.StatusPartial
	}
	return status
}

// logSummary prints one line per feed that succeeded
func (s *Service) logSummary(doc *models.Document) {
	if !doc.Habits.Failed() {
		if doc.Habits.Data.Today != nil {
			s.logger.Info("Habits: today's page found", zap.String("page_id", doc.Habits.Data.PageID))
		} else {
			s.logger.Info("Habits: today's page not yet created", zap.Int("habits", len(doc.Habits.Data.HabitNames)))
		}
	}
	if !doc.Journal.Failed() {
		s.logger.Info(fmt.Sprintf("Journal: %d entries", len(doc.Journal.Data.Entries)))
	}
	if !doc.Skincare.Failed() {
		s.logger.Info(fmt.Sprintf("Skincare: %d products", len(doc.Skincare.Data.Products)))
	}
	if !doc.Treatments.Failed() {
		s.logger.Info(fmt.Sprintf("Treatments: %d sessions", len(doc.Treatments.Data.Treatments)))
	}
}
