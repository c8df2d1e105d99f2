package redisx

import "time"

const (
	// Customer cache: crm:customer:{id} -> JSON customer
	KeyCustomer = "crm:customer:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLEntityCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
