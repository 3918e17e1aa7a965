package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultGuestServiceURL = "http://localhost:8081"
	DefaultRoomServiceURL  = "http://localhost:8082"
	DefaultProxyTimeout    = 3 * time.Second

	DefaultBreakerMaxFailures = 5
	DefaultBreakerCooldown    = 30 * time.Second

	DefaultKafkaTopic = "reservation-events"

	DefaultRoomLockTTL = 10 * time.Second

	DefaultRequestTimeout  = 30 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
