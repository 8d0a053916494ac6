package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// TriageInput is the input for the triage workflow.
type TriageInput struct {
	ReportID      string
	Type          string
	Location      domain.Location
	EscalateAfter time.Duration
}

// TriageResult summarises what the workflow did.
type TriageResult struct {
	Priority  Priority
	Notified  bool
	Escalated bool
}

// TriageWorkflow assesses a new report, notifies responders and, if the
// report is still Pending after EscalateAfter (half that for high priority),
// moves it to Investigating.
func TriageWorkflow(ctx workflow.Context, input TriageInput) (TriageResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting triage workflow", "reportID", input.ReportID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var result TriageResult
	var assessment Assessment
	if err := workflow.ExecuteActivity(ctx, "AssessReport", input.ReportID).Get(ctx, &assessment); err != nil {
		return result, err
	}
	result.Priority = assessment.Priority
	if assessment.Status != domain.StatusPending {
		logger.Info("report already handled", "status", assessment.Status)
		return result, nil
	}

	if err := workflow.ExecuteActivity(ctx, "NotifyResponders", assessment).Get(ctx, nil); err != nil {
		logger.Warn("notify responders failed", "error", err)
	} else {
		result.Notified = true
	}

	wait := input.EscalateAfter
	if assessment.Priority == PriorityHigh {
		wait /= 2
	}
	if wait > 0 {
		if err := workflow.Sleep(ctx, wait); err != nil {
			return result, err
		}
	}

	if err := workflow.ExecuteActivity(ctx, "EscalateIfPending", input.ReportID).Get(ctx, &result.Escalated); err != nil {
		return result, err
	}
	logger.Info("Triage finished", "priority", result.Priority, "escalated", result.Escalated)
	return result, nil
}
