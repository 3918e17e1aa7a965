package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvGuestServiceURL = "GUEST_SERVICE_URL"
	EnvRoomServiceURL  = "ROOM_SERVICE_URL"
	EnvProxyTimeout    = "PROXY_TIMEOUT"

	EnvBreakerMaxFailures = "BREAKER_MAX_FAILURES"
	EnvBreakerCooldown    = "BREAKER_COOLDOWN"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"

	EnvRoomLockTTL = "ROOM_LOCK_TTL"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
