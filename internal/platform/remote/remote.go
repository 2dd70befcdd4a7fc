// Package remote wraps the two downstream services the orchestration workflow
// depends on: the outlier classification service and the action-generation
// service. Both are opaque HTTP endpoints with a JSON request/response
// contract. Calls are synchronous and never retried; callers decide how to
// degrade when a service is unavailable.
package remote

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 30 * time.Second

// UnavailableError reports that a downstream service failed to produce a
// result, either because the connection failed or because the remote answered
// with an error status. The remote's error payload, when present, is kept for
// the operational alert.
type UnavailableError struct {
	Service string
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func newClient() *resty.Client {
	return resty.New().
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}
