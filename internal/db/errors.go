package db

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Remote store failure classification. Handlers and services match on these
// with errors.Is. Transient failures carry no built-in retry; retry policy
// belongs to the caller. Permission failures are surfaced verbatim and never
// retried.
var (
	ErrNotFound         = errors.New("document not found")
	ErrTransientNetwork = errors.New("transient network failure")
	ErrPermissionDenied = errors.New("permission denied by remote store")
)

// classifyRemoteError wraps a Firestore/Storage error with the matching
// sentinel so upper layers can branch without importing gRPC codes.
func classifyRemoteError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s: %w: %v", op, ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%s: %w: %v", op, ErrTransientNetwork, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
