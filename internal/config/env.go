package config

// Environment variable names, for tests and error messages.
const (
	EnvAppEnv            = "UPLOADS_APP_ENV"
	EnvLogLevel          = "UPLOADS_LOG_LEVEL"
	EnvLogFormat         = "UPLOADS_LOG_FORMAT"
	EnvStorageBackend    = "UPLOADS_STORAGE_BACKEND"
	EnvMinioEndpoint     = "UPLOADS_MINIO_ENDPOINT"
	EnvMinioAccessKey    = "UPLOADS_MINIO_ACCESS_KEY"
	EnvMinioSecretKey    = "UPLOADS_MINIO_SECRET_KEY"
	EnvMinioSSL          = "UPLOADS_MINIO_SSL"
	EnvTableName         = "UPLOADS_TABLE_NAME"
	EnvThumbnailDir      = "UPLOADS_THUMBNAIL_DIR"
	EnvThumbnailMaxDim   = "UPLOADS_THUMBNAIL_MAX_DIM"
	EnvReportSender      = "UPLOADS_REPORT_SENDER"
	EnvReportRecipients  = "UPLOADS_REPORT_RECIPIENTS"
	EnvDigestWindowHours = "UPLOADS_DIGEST_WINDOW_HOURS"
	EnvMetricsPushURL    = "UPLOADS_METRICS_PUSH_URL"
)
