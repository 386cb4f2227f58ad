package domain

import "time"

// Clock supplies the current time to the workflow. Implementations return UTC.
type Clock interface {
	Now() time.Time
}
