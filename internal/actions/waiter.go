package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
)

// DefaultForkDelay is how long the fixed-delay waiter sleeps. The fork
// endpoint exposes no completion signal, so the wait may be too short
// under load; the polling waiter exists for deployments where that bites.
const DefaultForkDelay = 5 * time.Second

// ProvisioningWaiter waits until a freshly requested fork is usable
type ProvisioningWaiter interface {
	Wait(ctx context.Context, fork github.RepositoryRef) error
}

// FixedDelayWaiter blocks for a fixed duration
type FixedDelayWaiter struct {
	Delay time.Duration
}

func (w FixedDelayWaiter) Wait(ctx context.Context, _ github.RepositoryRef) error {
	delay := w.Delay
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type repositoryGetter interface {
	GetRepository(ctx context.Context, repo github.RepositoryRef) (*github.Repository, error)
}

// PollingWaiter probes the fork until it exists, with fibonacci backoff
// capped at MaxWait total
type PollingWaiter struct {
	Client  repositoryGetter
	MaxWait time.Duration
}

func (w PollingWaiter) Wait(ctx context.Context, fork github.RepositoryRef) error {
	backoff := retry.WithMaxDuration(w.MaxWait, retry.NewFibonacci(time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := w.Client.GetRepository(ctx, fork); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fork %s not provisioned within %v: %w", fork, w.MaxWait, err)
	}

	return nil
}

// NopWaiter returns immediately; used in tests
type NopWaiter struct{}

func (NopWaiter) Wait(context.Context, github.RepositoryRef) error {
	return nil
}
