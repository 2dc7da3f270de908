package rescue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Flow runs its steps once, in order. A failed step is logged and the next
// step still runs: a failed unstake must not stop the sweep of whatever
// balance is already there.
type Flow struct {
	steps  []Step
	logger *logrus.Logger
}

// NewFlow creates a flow over steps. NewRescueFlow builds the standard one.
func NewFlow(logger *logrus.Logger, steps ...Step) *Flow {
	if logger == nil {
		logger = logrus.New()
	}
	return &Flow{
		steps:  steps,
		logger: logger,
	}
}

// NewRescueFlow returns the unstake, token transfer, sweep flow.
func NewRescueFlow(logger *logrus.Logger, unstake *UnstakeStep, transfer *TokenTransferStep, sweep *Sweeper) *Flow {
	return NewFlow(logger, unstake, transfer, sweep)
}

// Execute implements FlowExecutor. The error is non-nil only when a step
// panicked; ordinary step failures are in the report.
func (f *Flow) Execute(ctx context.Context) (*FlowReport, error) {
	report := &FlowReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := f.logger.WithField("run_id", report.RunID)
	log.WithField("steps", len(f.steps)).Info("Executing transaction flow")

	var escaped []error
	for _, step := range f.steps {
		outcome, err := f.runStep(ctx, step)
		if err != nil {
			escaped = append(escaped, err)
		}
		report.Outcomes = append(report.Outcomes, outcome)

		stepLog := log.WithFields(logrus.Fields{
			"step":   outcome.Step,
			"status": outcome.Status,
		})
		if outcome.TxHash != nil {
			stepLog = stepLog.WithField("tx_hash", outcome.TxHash.Hex())
		}
		switch outcome.Status {
		case StatusFailed:
			stepLog.WithError(outcome.Err).Error("Step failed")
		case StatusSkipped:
			stepLog.WithField("reason", outcome.Reason).Info("Step skipped")
		default:
			stepLog.Info("Step succeeded")
		}
	}

	report.FinishedAt = time.Now()
	log.WithFields(logrus.Fields{
		"failed":   len(report.Failed()),
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Transaction flow finished")

	if len(escaped) > 0 {
		return report, fmt.Errorf("%w: %w", ErrFlowAborted, errors.Join(escaped...))
	}
	return report, nil
}

// runStep converts a panic in step into a failed outcome plus an error.
func (f *Flow) runStep(ctx context.Context, step Step) (outcome StepOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s panicked: %v", step.Name(), r)
			outcome = failed(step.Name(), nil, err)
		}
	}()

	outcome = step.Run(ctx)
	if outcome.Step == "" {
		outcome.Step = step.Name()
	}
	return outcome, nil
}
