package main

import "time"

const (
	DefaultHTTPPort = "8080"
	DefaultLogLevel = "info"
)

// Sync defaults
const (
	DefaultBaseCCY         = "USD"
	DefaultCronSpec        = "0 * * * *"
	DefaultLocation        = "UTC"
	DefaultOXRTimeout      = 20 * time.Second
	DefaultBackfillDays    = 0
	DefaultBackfillWorkers = 4
)
