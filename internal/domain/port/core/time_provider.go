package core

import "time"

// TimeProvider abstracts the wall clock so payment flows (expiry windows,
// credential timestamps) can be tested against a fixed or advancing fake
type TimeProvider interface {
	Now() time.Time
}
