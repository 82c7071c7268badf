package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Auth         Auth
	Evaluation   Evaluation
	Quotas       Quotas
	CatalogPath  string
	GeminiApiKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Auth struct {
	JWTSecret          string
	TokenTTLHours      int
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type Evaluation struct {
	// UseDummy switches the evaluator to the offline deterministic backend.
	UseDummy            bool
	TimeoutSeconds      int
	SimilarityThreshold float64
	RelevanceMinScore   float64
	MaxClaimLength      int
	MaxArgumentLength   int
}

// Quotas maps a tier name to its daily caps. Injected into the guard,
// never read by the core directly.
type Quotas struct {
	DailyEvaluations    map[string]int
	DailyTranscriptions map[string]int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_TTL_HOURS", 72)
	viper.SetDefault("EVALUATION_TIMEOUT_SECONDS", 60)
	viper.SetDefault("SIMILARITY_THRESHOLD", 0.85)
	viper.SetDefault("RELEVANCE_MIN_SCORE", 5.0)
	viper.SetDefault("MAX_CLAIM_LENGTH", 500)
	viper.SetDefault("MAX_ARGUMENT_LENGTH", 5000)
	viper.SetDefault("CATALOG_PATH", "questions.yaml")
	viper.SetDefault("DAILY_EVALUATIONS_ANONYMOUS", 3)
	viper.SetDefault("DAILY_EVALUATIONS_FREE", 5)
	viper.SetDefault("DAILY_EVALUATIONS_PLUS", 20)
	viper.SetDefault("DAILY_EVALUATIONS_PRO", 50)
	viper.SetDefault("DAILY_TRANSCRIPTIONS_ANONYMOUS", 0)
	viper.SetDefault("DAILY_TRANSCRIPTIONS_FREE", 1)
	viper.SetDefault("DAILY_TRANSCRIPTIONS_PLUS", 10)
	viper.SetDefault("DAILY_TRANSCRIPTIONS_PRO", 30)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTLHours = viper.GetInt("TOKEN_TTL_HOURS")
	config.Auth.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	config.Auth.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	config.Auth.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")

	config.Evaluation.UseDummy = viper.GetBool("EVALUATION_USE_DUMMY")
	config.Evaluation.TimeoutSeconds = viper.GetInt("EVALUATION_TIMEOUT_SECONDS")
	config.Evaluation.SimilarityThreshold = viper.GetFloat64("SIMILARITY_THRESHOLD")
	config.Evaluation.RelevanceMinScore = viper.GetFloat64("RELEVANCE_MIN_SCORE")
	config.Evaluation.MaxClaimLength = viper.GetInt("MAX_CLAIM_LENGTH")
	config.Evaluation.MaxArgumentLength = viper.GetInt("MAX_ARGUMENT_LENGTH")

	config.Quotas.DailyEvaluations = map[string]int{
		"anonymous": viper.GetInt("DAILY_EVALUATIONS_ANONYMOUS"),
		"free":      viper.GetInt("DAILY_EVALUATIONS_FREE"),
		"plus":      viper.GetInt("DAILY_EVALUATIONS_PLUS"),
		"pro":       viper.GetInt("DAILY_EVALUATIONS_PRO"),
	}
	config.Quotas.DailyTranscriptions = map[string]int{
		"anonymous": viper.GetInt("DAILY_TRANSCRIPTIONS_ANONYMOUS"),
		"free":      viper.GetInt("DAILY_TRANSCRIPTIONS_FREE"),
		"plus":      viper.GetInt("DAILY_TRANSCRIPTIONS_PLUS"),
		"pro":       viper.GetInt("DAILY_TRANSCRIPTIONS_PRO"),
	}

	config.CatalogPath = viper.GetString("CATALOG_PATH")
	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Str("catalog", config.CatalogPath).Msg("Config loaded")
	return &config, nil
}
