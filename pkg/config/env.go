package config

const (
	EnvPrefix = "MYSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	OutboxTransportPubSub = "pubsub"
	OutboxTransportKafka  = "kafka"
)

// Environment variable names referenced outside of struct tags.
const (
	EnvAppEnv      = "MYSTORE_APP_ENV"
	EnvPort        = "MYSTORE_APP_PORT"
	EnvDBDSN       = "MYSTORE_DB_DSN"
	EnvDBHost      = "MYSTORE_DB_HOST"
	EnvDBUser      = "MYSTORE_DB_USER"
	EnvDBName      = "MYSTORE_DB_NAME"
	EnvRedisURL    = "MYSTORE_REDIS_URL"
	EnvJWTSecret   = "MYSTORE_JWT_SECRET"
	EnvJWTIssuer   = "MYSTORE_JWT_ISSUER"
	EnvVNPTmnCode  = "MYSTORE_VNP_TMNCODE"
	EnvVNPSecret   = "MYSTORE_VNP_HASH_SECRET"
	EnvOutboxKind  = "MYSTORE_OUTBOX_TRANSPORT"
	EnvKafkaBroker = "MYSTORE_KAFKA_BROKERS"
	EnvOrderTTL    = "MYSTORE_ORDER_PAYMENT_CONFIRMATION_DEADLINE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
