package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// TokenPurgeSchedule runs the expired token cleanup at minute 0 of every hour
const TokenPurgeSchedule = "0 * * * *"

const jobTimeout = 2 * time.Minute

// LowStockReporter is the part of the inventory ledger used by the digest
type LowStockReporter interface {
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	SendLowStockAlert(ctx context.Context, items []models.InventoryItem) error
}

// TokenPurger removes expired API client tokens
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// Scheduler runs the recurring maintenance jobs
type Scheduler struct {
	cron      *cron.Cron
	inventory LowStockReporter
	tokens    TokenPurger
}

// NewScheduler registers the inventory digest on digestSpec and the hourly
// token purge. A nil tokens purger skips the purge job.
func NewScheduler(digestSpec string, inventory LowStockReporter, tokens TokenPurger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		inventory: inventory,
		tokens:    tokens,
	}

	if _, err := s.cron.AddFunc(digestSpec, func() { s.run("inventory_digest", s.InventoryDigest) }); err != nil {
		return nil, fmt.Errorf("invalid inventory digest schedule %q: %w", digestSpec, err)
	}
	if tokens != nil {
		if _, err := s.cron.AddFunc(TokenPurgeSchedule, func() { s.run("token_purge", s.PurgeTokens) }); err != nil {
			return nil, fmt.Errorf("invalid token purge schedule: %w", err)
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	log.WithField("jobs", len(s.cron.Entries())).Info("Starting job scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs or ctx expiry
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		log.WithError(err).WithField("job", name).Error("Scheduled job failed")
		return
	}
	log.WithFields(logrus.Fields{"job": name, "duration": time.Since(start).String()}).Info("Scheduled job finished")
}

// InventoryDigest emails the current low stock list when it is not empty
func (s *Scheduler) InventoryDigest(ctx context.Context) error {
	items, err := s.inventory.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("load low stock items: %w", err)
	}
	if len(items) == 0 {
		log.Debug("No low stock items, digest skipped")
		return nil
	}
	return s.inventory.SendLowStockAlert(ctx, items)
}

// PurgeTokens deletes expired OAuth access tokens
func (s *Scheduler) PurgeTokens(ctx context.Context) error {
	removed, err := s.tokens.PurgeExpiredTokens(ctx)
	if err != nil {
		return fmt.Errorf("purge expired tokens: %w", err)
	}
	log.WithField("removed", removed).Info("Expired tokens purged")
	return nil
}
