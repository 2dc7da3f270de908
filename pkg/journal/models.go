package journal

import (
	"time"

	"github.com/lib/pq"

	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
)

// Run is one executed transaction flow.
type Run struct {
	ID          string         `gorm:"primaryKey;column:id;type:uuid"`
	Account     string         `gorm:"column:account;not null"`
	ChainID     int64          `gorm:"column:chain_id;not null"`
	Deadline    int64          `gorm:"column:deadline;not null"`
	StartedAt   time.Time      `gorm:"column:started_at;not null"`
	FinishedAt  time.Time      `gorm:"column:finished_at;not null"`
	FailedSteps pq.StringArray `gorm:"column:failed_steps;type:text[]"`

	Steps []StepRecord `gorm:"foreignKey:RunID"`
}

// TableName specifies the table name for GORM
func (Run) TableName() string {
	return "rescue_runs"
}

// StepRecord is the outcome of one step of a Run.
type StepRecord struct {
	ID        uint    `gorm:"primaryKey;column:id"`
	RunID     string  `gorm:"column:run_id;type:uuid;not null"`
	Position  int     `gorm:"column:position;not null"`
	Step      string  `gorm:"column:step;not null"`
	Status    string  `gorm:"column:status;not null"`
	TxHash    *string `gorm:"column:tx_hash"`
	AmountWei *string `gorm:"column:amount_wei"`
	Reason    string  `gorm:"column:reason"`
	Error     string  `gorm:"column:error"`
}

// TableName specifies the table name for GORM
func (StepRecord) TableName() string {
	return "rescue_steps"
}

// newRun converts a flow report into its database rows.
func newRun(account string, chainID int64, deadline uint64, report *rescue.FlowReport) *Run {
	run := &Run{
		ID:          report.RunID,
		Account:     account,
		ChainID:     chainID,
		Deadline:    int64(deadline),
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
		FailedSteps: pq.StringArray{},
	}

	for i, outcome := range report.Outcomes {
		record := StepRecord{
			RunID:    report.RunID,
			Position: i,
			Step:     outcome.Step,
			Status:   string(outcome.Status),
			Reason:   outcome.Reason,
		}
		if outcome.TxHash != nil {
			hash := outcome.TxHash.Hex()
			record.TxHash = &hash
		}
		if outcome.Amount != nil {
			amount := outcome.Amount.String()
			record.AmountWei = &amount
		}
		if outcome.Err != nil {
			record.Error = outcome.Err.Error()
		}
		if outcome.Status == rescue.StatusFailed {
			run.FailedSteps = append(run.FailedSteps, outcome.Step)
		}
		run.Steps = append(run.Steps, record)
	}
	return run
}
