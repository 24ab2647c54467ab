package config

import (
	"flag"
	"time"
)

type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string // Redis user
	RedisPassword string // Redis password

	LimiterFailOpen      bool
	CacheAvailability    bool // whether to cache availability reads in redis
	ReservationsLimit    int
	AvailabilityCacheTTL time.Duration

	AttemptsBatchSize     int
	AttemptsFlushInterval time.Duration

	// Products generator params
	ProductsCount      int
	MaxUnitsPerProduct int
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "DEBUG"), "Set log level: DEBUG, INFO, WARNING, ERROR.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8000"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", "127.0.0.1:5432"), "Set PostgreSQL address as host:port, where port is optional (without TLS).")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "rentledger"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.BoolVar(&c.LimiterFailOpen, "limiterFailOpen", LookupEnvBool("LIMITER_FAIL_OPEN", false), "Set to make limiter allow request if failed to check limits.")
	flag.BoolVar(&c.CacheAvailability, "cacheAvailability", LookupEnvBool("CACHE_AVAILABILITY", false), "Set to cache availability reads in redis. May be useful when single product is polled many times.")
	flag.IntVar(&c.ReservationsLimit, "reservationsLimit", LookupEnvInt("RESERVATIONS_LIMIT", 10), "Number of reservations that single order can hold within one hour.")
	flag.DurationVar(&c.AvailabilityCacheTTL, "availabilityCacheTTL", LookupEnvDuration("AVAILABILITY_CACHE_TTL", 30*time.Second), "How long cached availability reads stay valid in format that can be parsed by go's time.ParseDuration.")

	flag.IntVar(&c.AttemptsBatchSize, "attemptsBatchSize", LookupEnvInt("ATTEMPTS_BATCH_SIZE", 500), "Number of reserve attempts to be stored in buffer before being flushed.")
	flag.DurationVar(&c.AttemptsFlushInterval, "attemptsFlushInterval", LookupEnvDuration("ATTEMPTS_FLUSH_INTERVAL", 10*time.Second), "How often reserve attempts buffer should be flushed.")

	flag.IntVar(&c.ProductsCount, "productsCount", LookupEnvInt("PRODUCTS_COUNT", 100), "Number of products to generate (only for products-generator).")
	flag.IntVar(&c.MaxUnitsPerProduct, "maxUnitsPerProduct", LookupEnvInt("MAX_UNITS_PER_PRODUCT", 10), "Upper bound for generated products' unit counts.")

	flag.Parse()

	return c
}
