package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envFile = ".env"

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(envFile)
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyHTTPHost, "0.0.0.0")
	viper.SetDefault(KeyHTTPPort, 8080)
	viper.SetDefault(KeyAllowedOrigins, "*")
	viper.SetDefault(KeyLLMProvider, "openai")
	viper.SetDefault(KeyLLMModel, "gpt-4o-mini")
	viper.SetDefault(KeyLLMTemperature, 0.2)
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyAutoMigrate, true)
	viper.SetDefault(KeyMigrationsDir, "")
	viper.SetDefault(KeyEmbeddingProvider, "openai")
	viper.SetDefault(KeyEmbeddingModel, "text-embedding-3-small")
	viper.SetDefault(KeyRAGTopK, 5)
	viper.SetDefault(KeyRAGThreshold, 0.0)
	viper.SetDefault(KeyMediaEnabled, true)
	viper.SetDefault(KeyImageModel, "dall-e-3")
	viper.SetDefault(KeyTranscriptionModel, "whisper-1")
	viper.SetDefault(KeySpeechModel, "tts-1")
}

func LogLevel() string           { return viper.GetString(KeyLogLevel) }
func LogFormat() string          { return viper.GetString(KeyLogFormat) }
func HTTPHost() string           { return viper.GetString(KeyHTTPHost) }
func HTTPPort() int              { return viper.GetInt(KeyHTTPPort) }
func LLMProvider() string        { return viper.GetString(KeyLLMProvider) }
func LLMModel() string           { return viper.GetString(KeyLLMModel) }
func LLMBaseURL() string         { return viper.GetString(KeyLLMBaseURL) }
func OpenAIAPIKey() string       { return viper.GetString(KeyOpenAIAPIKey) }
func AnthropicAPIKey() string    { return viper.GetString(KeyAnthropicAPIKey) }
func LLMTemperature() float64    { return viper.GetFloat64(KeyLLMTemperature) }
func LLMCallTimeout() string     { return viper.GetString(KeyLLMCallTimeout) }
func PostgresURL() string        { return viper.GetString(KeyPostgresURL) }
func DBDebug() bool              { return viper.GetBool(KeyDBDebug) }
func AutoMigrate() bool          { return viper.GetBool(KeyAutoMigrate) }
func MigrationsDir() string      { return viper.GetString(KeyMigrationsDir) }
func EmbeddingProvider() string  { return viper.GetString(KeyEmbeddingProvider) }
func EmbeddingModel() string     { return viper.GetString(KeyEmbeddingModel) }
func EmbeddingBaseURL() string   { return viper.GetString(KeyEmbeddingBaseURL) }
func RAGTopK() int               { return viper.GetInt(KeyRAGTopK) }
func RAGThreshold() float64      { return viper.GetFloat64(KeyRAGThreshold) }
func GitHubToken() string        { return viper.GetString(KeyGitHubToken) }
func MediaEnabled() bool         { return viper.GetBool(KeyMediaEnabled) }
func ImageModel() string         { return viper.GetString(KeyImageModel) }
func TranscriptionModel() string { return viper.GetString(KeyTranscriptionModel) }
func SpeechModel() string        { return viper.GetString(KeySpeechModel) }

// AllowedOrigins splits the comma separated origin list.
func AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(viper.GetString(KeyAllowedOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Settings is a resolved snapshot of the configuration used to wire the
// server and CLI commands.
type Settings struct {
	LogLevel       string
	LogFormat      string
	Addr           string
	AllowedOrigins []string

	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMTemperature  float64
	LLMCallTimeout  time.Duration

	PostgresURL   string
	DBDebug       bool
	AutoMigrate   bool
	MigrationsDir string

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingBaseURL  string
	RAGTopK           int
	RAGThreshold      float64

	GitHubToken string

	MediaEnabled       bool
	ImageModel         string
	TranscriptionModel string
	SpeechModel        string
}

func Load() (Settings, error) {
	s := Settings{
		LogLevel:           LogLevel(),
		LogFormat:          LogFormat(),
		Addr:               fmt.Sprintf("%s:%d", HTTPHost(), HTTPPort()),
		AllowedOrigins:     AllowedOrigins(),
		LLMProvider:        strings.ToLower(LLMProvider()),
		LLMModel:           LLMModel(),
		LLMBaseURL:         LLMBaseURL(),
		OpenAIAPIKey:       OpenAIAPIKey(),
		AnthropicAPIKey:    AnthropicAPIKey(),
		LLMTemperature:     LLMTemperature(),
		PostgresURL:        PostgresURL(),
		DBDebug:            DBDebug(),
		AutoMigrate:        AutoMigrate(),
		MigrationsDir:      MigrationsDir(),
		EmbeddingProvider:  strings.ToLower(EmbeddingProvider()),
		EmbeddingModel:     EmbeddingModel(),
		EmbeddingBaseURL:   EmbeddingBaseURL(),
		RAGTopK:            RAGTopK(),
		RAGThreshold:       RAGThreshold(),
		GitHubToken:        GitHubToken(),
		MediaEnabled:       MediaEnabled(),
		ImageModel:         ImageModel(),
		TranscriptionModel: TranscriptionModel(),
		SpeechModel:        SpeechModel(),
	}

	timeout, err := parseDuration(LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", KeyLLMCallTimeout, err)
	}
	s.LLMCallTimeout = timeout
	return s, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	return time.ParseDuration(trimmed)
}
