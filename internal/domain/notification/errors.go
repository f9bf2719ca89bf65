package notification

import "errors"

var ErrQueueStopped = errors.New("notification queue is stopped")
