package commons

import "time"

const (
	DefaultRetentionDays = 7
	QueryCacheExpiration = 30 * time.Second
	RawQueryAllowedRPS   = 10
	ServerIdleTimeout    = time.Minute
	ServerReadTimeout    = 10 * time.Second
	ServerWriteTimeout   = 30 * time.Second
	ShutdownTimeout      = 10 * time.Second
)
