package rescue

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPollInterval is the delay between block polls
	DefaultPollInterval = time.Second

	// backoffFactor scales the poll interval after a failed poll
	backoffFactor = 10

	msgServiceStarted = "Stake rescue service started"
	msgFlowInitiated  = "Flow initiated"
)

// TriggerConfig holds the trigger condition and polling cadence.
type TriggerConfig struct {
	// Deadline is the Unix time (seconds) at or after which the flow runs
	Deadline uint64

	// PollInterval is the delay between successful polls
	PollInterval time.Duration

	// PollBackoff is the delay after a failed poll. Zero means 10x PollInterval.
	PollBackoff time.Duration
}

// Trigger polls the chain until a block's timestamp reaches the deadline,
// then runs the flow once and stops. It never re-arms.
type Trigger struct {
	blocks   BlockSource
	flow     FlowExecutor
	notifier Notifier
	journal  Journal
	config   TriggerConfig
	logger   *logrus.Logger
}

// NewTrigger creates a trigger. notifier may be nil.
func NewTrigger(blocks BlockSource, flow FlowExecutor, notifier Notifier, config TriggerConfig, logger *logrus.Logger) (*Trigger, error) {
	if blocks == nil {
		return nil, fmt.Errorf("block source is required")
	}
	if flow == nil {
		return nil, fmt.Errorf("flow is required")
	}
	if config.Deadline == 0 {
		return nil, fmt.Errorf("deadline is required")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.PollBackoff <= 0 {
		config.PollBackoff = backoffFactor * config.PollInterval
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Trigger{
		blocks:   blocks,
		flow:     flow,
		notifier: notifier,
		config:   config,
		logger:   logger,
	}, nil
}

// WithJournal makes the trigger skip a deadline the journal has already
// seen, and record the report after the flow ran.
func (t *Trigger) WithJournal(journal Journal) *Trigger {
	t.journal = journal
	return t
}

// Run blocks until the deadline is reached and the flow has run, returning
// its report. Poll failures are retried after PollBackoff. Cancelling ctx
// before the trigger fires returns ctx.Err(); once the flow has started it
// runs to completion regardless.
func (t *Trigger) Run(ctx context.Context) (*FlowReport, error) {
	log := t.logger.WithFields(logrus.Fields{
		"deadline":      t.config.Deadline,
		"deadline_time": time.Unix(int64(t.config.Deadline), 0).UTC().Format(time.RFC3339),
		"poll_interval": t.config.PollInterval.String(),
	})
	if runID, done := t.alreadyExecuted(ctx, log); done {
		log.WithField("run_id", runID).Info("Flow already executed for this deadline, nothing to do")
		return nil, ErrAlreadyExecuted
	}

	log.Info("Monitoring blockchain for execution trigger")
	t.notify(ctx, msgServiceStarted)

	for {
		block, err := t.blocks.LatestBlock(ctx)
		if err != nil {
			log.WithError(err).WithField("retry_in", t.config.PollBackoff.String()).
				Error("Failed to fetch the latest block")
			if err := sleep(ctx, t.config.PollBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if block.Timestamp >= t.config.Deadline {
			log.WithFields(logrus.Fields{
				"block_number":    block.Number,
				"block_timestamp": block.Timestamp,
			}).Info("Trigger condition met, executing transactions")

			flowCtx := context.WithoutCancel(ctx)
			t.notify(flowCtx, msgFlowInitiated)

			report, err := t.flow.Execute(flowCtx)
			if err != nil {
				log.WithError(err).Error("Transaction flow error")
			}
			t.record(flowCtx, log, report)
			return report, err
		}

		log.WithFields(logrus.Fields{
			"block_number":    block.Number,
			"block_timestamp": block.Timestamp,
			"remaining":       NewCountdown(t.config.Deadline - block.Timestamp).String(),
		}).Info("Time until execution")

		if err := sleep(ctx, t.config.PollInterval); err != nil {
			return nil, err
		}
	}
}

// alreadyExecuted consults the journal. A journal failure is logged and
// treated as not executed.
func (t *Trigger) alreadyExecuted(ctx context.Context, log *logrus.Entry) (string, bool) {
	if t.journal == nil {
		return "", false
	}
	runID, found, err := t.journal.CompletedRun(ctx, t.config.Deadline)
	if err != nil {
		log.WithError(err).Warn("Failed to read run journal")
		return "", false
	}
	return runID, found
}

// record stores report in the journal; failures are only logged.
func (t *Trigger) record(ctx context.Context, log *logrus.Entry, report *FlowReport) {
	if t.journal == nil || report == nil {
		return
	}
	if err := t.journal.Record(ctx, t.config.Deadline, report); err != nil {
		log.WithError(err).WithField("run_id", report.RunID).Error("Failed to record run in journal")
	}
}

// notify delivers message best-effort; failures are only logged.
func (t *Trigger) notify(ctx context.Context, message string) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, message); err != nil {
		t.logger.WithError(err).WithField("message", message).Warn("Failed to send notification")
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
