package constants

import "time"

const (
	ViperConfigName = "certzone"
	ViperEnvPrefix  = "CERTZONE"

	ViperDatabaseDSN     = "database.dsn"
	ViperRegistryURL     = "registry.url"
	ViperRegistryTimeout = "registry.timeout"
	ViperRegistryIsMain  = "registry.is_main"
	ViperSchemaPath      = "ingest.schema_path"
	ViperLogDir          = "ingest.log_dir"
	ViperLogLevel        = "log.level"
	ViperLogDevelopment  = "log.development"
	ViperHTTPAddr        = "http.addr"
	ViperWorkers         = "jobs.workers"
	ViperRedisAddr       = "redis.addr"
	ViperRedisTTL        = "redis.ttl"
)

const (
	DefaultRegistryTimeout = 10 * time.Second
	DefaultHTTPAddr        = ":8080"
	DefaultWorkers         = 2
	DefaultRedisTTL        = 5 * time.Minute
	DefaultDBConnectWait   = 30 * time.Second

	// LogTimeLayout используется в именах файлов логов и архивов.
	LogTimeLayout = "2006-01-02_15-04-05"
)

// OtherTerritoriesRegionCode это регион "Иные территории", в него попадают неизвестные коды.
const OtherTerritoriesRegionCode = 99
