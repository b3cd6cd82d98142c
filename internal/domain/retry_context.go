package domain

import (
	"github.com/google/uuid"
)

// RetryContext tracks the state of one logical call through the retry loop:
// the service being called, how many attempts have been made, and the last
// observed failure.
//
// A RetryContext belongs to exactly one invocation. It is created when the
// call starts and discarded when the call returns, so concurrent calls never
// share retry state.
type RetryContext struct {
	requestID   string
	serviceID   string
	attempts    int
	lastOutcome Outcome
}

// NewRetryContext creates the retry state for one logical call.
func NewRetryContext(serviceID string) *RetryContext {
	return &RetryContext{
		requestID: uuid.NewString(),
		serviceID: serviceID,
	}
}

// RequestID returns the unique ID assigned to this logical call.
func (c *RetryContext) RequestID() string {
	return c.requestID
}

// ServiceID returns the symbolic service name this call resolves.
func (c *RetryContext) ServiceID() string {
	return c.serviceID
}

// Attempts returns the number of completed attempts.
func (c *RetryContext) Attempts() int {
	return c.attempts
}

// LastOutcome returns the outcome of the most recent failed attempt.
func (c *RetryContext) LastOutcome() Outcome {
	return c.lastOutcome
}

// RecordFailure records a failed attempt and advances the attempt count.
func (c *RetryContext) RecordFailure(outcome Outcome) {
	c.attempts++
	c.lastOutcome = outcome
}
