package gradebook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coursekit/mastery/pkg/logger"
)

// PollJob fetches the current state of a bulk job.
func (c *Client) PollJob(ctx context.Context, handle JobHandle) (JobStatus, error) {
	var out JobStatus
	if err := c.do(ctx, "pollJob", http.MethodGet, fmt.Sprintf("/api/v1/progress/%d", handle.ID), nil, nil, &out); err != nil {
		return JobStatus{}, err
	}
	return out, nil
}

// AwaitJob blocks until the job completes, polling at the configured
// interval. A failed job is fatal to the remaining workflow steps, so it
// returns ErrJobFailed; there is no cancellation beyond ctx.
func (c *Client) AwaitJob(ctx context.Context, handle JobHandle) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.PollJob(ctx, handle)
		if err != nil {
			return err
		}

		switch status.State {
		case JobComplete:
			return nil
		case JobFailed:
			return fmt.Errorf("%w: job %d", ErrJobFailed, handle.ID)
		}

		if c.logger != nil {
			c.logger.Debug(ctx, "bulk job still pending", logger.Int64("job", handle.ID))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrRemoteService, ctx.Err())
		case <-ticker.C:
		}
	}
}
