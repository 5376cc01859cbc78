package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	Outbox       OutboxConfig
	VNPay        VNPayConfig
	Orders       OrdersConfig
	Push         PushConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Outbox.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MYSTORE_APP_ENV" required:"true"`
	Port         string   `envconfig:"MYSTORE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MYSTORE_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"MYSTORE_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"MYSTORE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MYSTORE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MYSTORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MYSTORE_DB_DSN"`
	Driver string `envconfig:"MYSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MYSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"MYSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MYSTORE_DB_USER"`
	LegacyPassword string `envconfig:"MYSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MYSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MYSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MYSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MYSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MYSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MYSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MYSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MYSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"MYSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MYSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MYSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MYSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MYSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MYSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MYSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MYSTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MYSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MYSTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MYSTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MYSTORE_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"MYSTORE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MYSTORE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MYSTORE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MYSTORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"MYSTORE_PUBSUB_ORDERS_TOPIC" default:"mystore-order-events"`
	NotificationTopic        string `envconfig:"MYSTORE_PUBSUB_NOTIFICATION_TOPIC" default:"mystore-notification-events"`
	NotificationSubscription string `envconfig:"MYSTORE_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"mystore-notification-events-sub"`
}

type KafkaConfig struct {
	Brokers     []string `envconfig:"MYSTORE_KAFKA_BROKERS" default:"localhost:9092"`
	TopicPrefix string   `envconfig:"MYSTORE_KAFKA_TOPIC_PREFIX" default:""`
	ClientID    string   `envconfig:"MYSTORE_KAFKA_CLIENT_ID" default:"mystore-outbox"`
}

// Topic maps a logical topic name onto the configured Kafka namespace.
func (k KafkaConfig) Topic(name string) string {
	prefix := strings.TrimSpace(k.TopicPrefix)
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"MYSTORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"MYSTORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"MYSTORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Transport      string `envconfig:"MYSTORE_OUTBOX_TRANSPORT" default:"pubsub"`
	RetentionDays  int    `envconfig:"MYSTORE_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (o OutboxConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Transport)) {
	case OutboxTransportPubSub, OutboxTransportKafka:
		return nil
	default:
		return fmt.Errorf("unsupported outbox transport %q", o.Transport)
	}
}

// UsesKafka reports whether the outbox publisher should write to Kafka instead of Pub/Sub.
func (o OutboxConfig) UsesKafka() bool {
	return strings.EqualFold(strings.TrimSpace(o.Transport), OutboxTransportKafka)
}

type VNPayConfig struct {
	TmnCode      string        `envconfig:"MYSTORE_VNP_TMNCODE" required:"true"`
	HashSecret   string        `envconfig:"MYSTORE_VNP_HASH_SECRET" required:"true"`
	PayURL       string        `envconfig:"MYSTORE_VNP_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	APIURL       string        `envconfig:"MYSTORE_VNP_API_URL" default:"https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"`
	QueryTimeout time.Duration `envconfig:"MYSTORE_VNP_QUERY_TIMEOUT" default:"10s"`
}

type OrdersConfig struct {
	PaymentConfirmationDeadlineMinutes int           `envconfig:"MYSTORE_ORDER_PAYMENT_CONFIRMATION_DEADLINE" default:"15"`
	CancelWindow                       time.Duration `envconfig:"MYSTORE_ORDER_CANCEL_WINDOW" default:"4h"`
	ExpirySweepInterval                time.Duration `envconfig:"MYSTORE_ORDER_EXPIRY_SWEEP_INTERVAL" default:"5m"`
}

// PaymentConfirmationDeadline returns how long a banking order may stay unpaid.
func (o OrdersConfig) PaymentConfirmationDeadline() time.Duration {
	if o.PaymentConfirmationDeadlineMinutes <= 0 {
		return 0
	}
	return time.Duration(o.PaymentConfirmationDeadlineMinutes) * time.Minute
}

type PushConfig struct {
	ChannelPrefix string        `envconfig:"MYSTORE_PUSH_CHANNEL_PREFIX" default:"push"`
	Timeout       time.Duration `envconfig:"MYSTORE_PUSH_TIMEOUT" default:"2s"`
}

type CronConfig struct {
	LockKey                   string        `envconfig:"MYSTORE_CRON_LOCK_KEY" default:"mystore:cron:lock"`
	LockTTL                   time.Duration `envconfig:"MYSTORE_CRON_LOCK_TTL" default:"10m"`
	NotificationRetentionDays int           `envconfig:"MYSTORE_NOTIFICATION_RETENTION_DAYS" default:"30"`
	ExpiryBatchSize           int           `envconfig:"MYSTORE_ORDER_EXPIRY_BATCH_SIZE" default:"100"`
}

// RateLimitConfig throttles the endpoints that reach external gateways.
type RateLimitConfig struct {
	PaymentConfirmWindow time.Duration `envconfig:"MYSTORE_RATE_LIMIT_PAYMENT_CONFIRM_WINDOW" default:"1m"`
	PaymentConfirmLimit  int           `envconfig:"MYSTORE_RATE_LIMIT_PAYMENT_CONFIRM_LIMIT" default:"10"`
	PlaceOrderWindow     time.Duration `envconfig:"MYSTORE_RATE_LIMIT_PLACE_ORDER_WINDOW" default:"1m"`
	PlaceOrderLimit      int           `envconfig:"MYSTORE_RATE_LIMIT_PLACE_ORDER_LIMIT" default:"20"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
