package clientdata

import "time"

// TTL constants per namespace, added to time.Now() when storing.
// Freshness for serving is decided by the caller; expires_at only bounds how
// long a stale copy survives the cleanup job.
const (
	TTLCalendar = 7 * 24 * time.Hour // a weekly feed is useless after a week
)
