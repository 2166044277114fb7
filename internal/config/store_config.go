package config

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	SessionStoreDefault = "default"
	SessionStoreRedis   = "redis"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetDatabaseURL() string
	GetSessionStore() string
	GetRedisURL() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetStoreDriver selects the record store: "postgres" or "memory".
func (Store) GetStoreDriver() string {
	return GetEnv("STORE_DRIVER", StoreDriverPostgres)
}

func (Store) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetSessionStore selects where sessions live: "default" keeps them with the other records, "redis" moves them to Redis.
func (Store) GetSessionStore() string {
	return GetEnv("SESSION_STORE", SessionStoreDefault)
}

func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}
