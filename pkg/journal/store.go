// Package journal persists executed rescue flows in Postgres so a restarted
// bot does not run a flow that already completed cleanly a second time for
// the same deadline.
package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
)

// Store records flow runs for one account on one chain.
type Store struct {
	db      *gorm.DB
	account string
	chainID int64
	logger  *logrus.Logger
}

// Open migrates the schema and connects to databaseURL.
func Open(logger *logrus.Logger, databaseURL, account string, chainID int64) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	logger.Debug("Starting journal setup")

	if err := RunMigrations(logger, databaseURL); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"account":  account,
		"chain_id": chainID,
	}).Info("Run journal ready")

	return NewStore(logger, db, account, chainID), nil
}

// OpenOrWarn opens the journal when databaseURL is set. An empty URL or a
// failed Open returns nil, the failure logged at Warn, so the rescue runs
// without a journal instead of not at all.
func OpenOrWarn(logger *logrus.Logger, databaseURL, account string, chainID int64) *Store {
	if databaseURL == "" {
		return nil
	}
	if logger == nil {
		logger = logrus.New()
	}
	store, err := Open(logger, databaseURL, account, chainID)
	if err != nil {
		logger.WithError(err).Warn("Run journal unavailable, continuing without it")
		return nil
	}
	return store
}

// NewStore wraps an existing connection whose schema is already migrated.
func NewStore(logger *logrus.Logger, db *gorm.DB, account string, chainID int64) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		db:      db,
		account: account,
		chainID: chainID,
		logger:  logger,
	}
}

// CompletedRun implements rescue.Journal. It returns the id of the most
// recent run recorded for deadline in which no step failed. Runs with failed
// steps are ignored so the flow is retried after a restart.
func (s *Store) CompletedRun(ctx context.Context, deadline uint64) (string, bool, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Where("account = ? AND chain_id = ? AND deadline = ?", s.account, s.chainID, int64(deadline)).
		Where("COALESCE(cardinality(failed_steps), 0) = 0").
		Order("finished_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query run journal: %w", err)
	}
	return run.ID, true, nil
}

// Record implements rescue.Journal. The run and its steps are written in
// one transaction.
func (s *Store) Record(ctx context.Context, deadline uint64, report *rescue.FlowReport) error {
	run := newRun(s.account, s.chainID, deadline, report)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.RunID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id": run.ID,
		"steps":  len(run.Steps),
		"failed": len(run.FailedSteps),
	}).Debug("Recorded run")
	return nil
}

// Runs returns every run recorded for this account, newest first, with steps.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("account = ? AND chain_id = ?", s.account, s.chainID).
		Order("finished_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
