package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// WorkflowID is the triage workflow ID for a report. Starting twice for the
// same report is a no-op.
func WorkflowID(reportID string) string {
	return "triage-" + reportID
}

// Starter implements ports.TriageScheduler on a Temporal client.
type Starter struct {
	client        client.Client
	taskQueue     string
	escalateAfter time.Duration
}

// NewStarter creates a new Starter.
func NewStarter(c client.Client, taskQueue string, escalateAfter time.Duration) *Starter {
	return &Starter{client: c, taskQueue: taskQueue, escalateAfter: escalateAfter}
}

// ScheduleTriage starts the triage workflow for r.
func (s *Starter) ScheduleTriage(ctx context.Context, r *domain.Report) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(r.ID),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := TriageInput{
		ReportID:      r.ID,
		Type:          r.Type,
		Location:      r.Location,
		EscalateAfter: s.escalateAfter,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, TriageWorkflow, input)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("start triage %s: %w", r.ID, err)
	}
	return nil
}
