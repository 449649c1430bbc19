package config

const (
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyHTTPHost       = "http_host"
	KeyHTTPPort       = "http_port"
	KeyAllowedOrigins = "allowed_origins"

	KeyLLMProvider     = "llm_provider"
	KeyLLMModel        = "llm_model"
	KeyLLMBaseURL      = "llm_base_url"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyLLMTemperature  = "llm_temperature"
	KeyLLMCallTimeout  = "llm_call_timeout"

	KeyPostgresURL   = "postgres_url"
	KeyDBDebug       = "db_debug"
	KeyAutoMigrate   = "auto_migrate"
	KeyMigrationsDir = "db_migrations_dir"

	KeyEmbeddingProvider = "embedding_provider"
	KeyEmbeddingModel    = "embedding_model"
	KeyEmbeddingBaseURL  = "embedding_base_url"
	KeyRAGTopK           = "rag_top_k"
	KeyRAGThreshold      = "rag_similarity_threshold"

	KeyGitHubToken = "github_token"

	KeyMediaEnabled       = "media_enabled"
	KeyImageModel         = "image_model"
	KeyTranscriptionModel = "transcription_model"
	KeySpeechModel        = "speech_model"
)
