// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Labeler LabelerConfig `yaml:"labeler" mapstructure:"labeler"`
	Review  ReviewConfig  `yaml:"review" mapstructure:"review"`
	Train   TrainConfig   `yaml:"train" mapstructure:"train"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// MatchConfig configures the rule-based scoring engine. All components take
// this struct by value at construction time; there is no mutable shared state.
type MatchConfig struct {
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`

	// Lexical scorer.
	StopWords          []string `yaml:"stop_words" mapstructure:"stop_words"`
	MinTokenLen        int      `yaml:"min_token_len" mapstructure:"min_token_len"`
	VeryHighSimilarity float64  `yaml:"very_high_similarity" mapstructure:"very_high_similarity"`
	HighSimilarity     float64  `yaml:"high_similarity" mapstructure:"high_similarity"`
	DescThreshold      float64  `yaml:"desc_threshold" mapstructure:"desc_threshold"`

	// Contributing weights.
	ExactNameWeight    float64 `yaml:"exact_name_weight" mapstructure:"exact_name_weight"`
	ExactPhraseWeight  float64 `yaml:"exact_phrase_weight" mapstructure:"exact_phrase_weight"`
	AltTitleWeight     float64 `yaml:"alt_title_weight" mapstructure:"alt_title_weight"`
	VeryHighWordWeight float64 `yaml:"very_high_word_weight" mapstructure:"very_high_word_weight"`
	HighWordWeight     float64 `yaml:"high_word_weight" mapstructure:"high_word_weight"`
	AllKeywordsWeight  float64 `yaml:"all_keywords_weight" mapstructure:"all_keywords_weight"`
	DescriptionWeight  float64 `yaml:"description_weight" mapstructure:"description_weight"`
	TrustedBonus       float64 `yaml:"trusted_bonus" mapstructure:"trusted_bonus"`

	// Penalties.
	SequelMismatchPenalty   float64 `yaml:"sequel_mismatch_penalty" mapstructure:"sequel_mismatch_penalty"`
	NumberedSequelPenalty   float64 `yaml:"numbered_sequel_penalty" mapstructure:"numbered_sequel_penalty"`
	NonGameMediaPenalty     float64 `yaml:"non_game_media_penalty" mapstructure:"non_game_media_penalty"`
	AdultContentPenalty     float64 `yaml:"adult_content_penalty" mapstructure:"adult_content_penalty"`
	SecondaryContentPenalty float64 `yaml:"secondary_content_penalty" mapstructure:"secondary_content_penalty"`
	DemoPenalty             float64 `yaml:"demo_penalty" mapstructure:"demo_penalty"`
	ModPenalty              float64 `yaml:"mod_penalty" mapstructure:"mod_penalty"`
	UnsafePenalty           float64 `yaml:"unsafe_penalty" mapstructure:"unsafe_penalty"`
	TinySizePenalty         float64 `yaml:"tiny_size_penalty" mapstructure:"tiny_size_penalty"`
	PreReleasePenalty       float64 `yaml:"pre_release_penalty" mapstructure:"pre_release_penalty"`
	ManyExtraWordsPenalty   float64 `yaml:"many_extra_words_penalty" mapstructure:"many_extra_words_penalty"`

	// Structural thresholds.
	MinSizeMB      int64 `yaml:"min_size_mb" mapstructure:"min_size_mb"`
	PreReleaseDays int   `yaml:"pre_release_days" mapstructure:"pre_release_days"`
	ExtraWordsOver int   `yaml:"extra_words_over" mapstructure:"extra_words_over"`

	// Exclusion classifier.
	AdultKeywords []string `yaml:"adult_keywords" mapstructure:"adult_keywords"`

	// Fallback source -> trust tier mapping, used when the caller supplies
	// no per-candidate trust data.
	SourceTiers map[string]string `yaml:"source_tiers" mapstructure:"source_tiers"`

	// Learned reranker.
	ModelPath           string  `yaml:"model_path" mapstructure:"model_path"`
	RerankOverrideFloor float64 `yaml:"rerank_override_floor" mapstructure:"rerank_override_floor"`
}

// LabelerConfig configures the offline heuristic auto-labeler.
type LabelerConfig struct {
	MinSizeMB      int64   `yaml:"min_size_mb" mapstructure:"min_size_mb"`
	PreReleaseDays int     `yaml:"pre_release_days" mapstructure:"pre_release_days"`
	HighScore      float64 `yaml:"high_score" mapstructure:"high_score"`
	LowScore       float64 `yaml:"low_score" mapstructure:"low_score"`
	RecoverScore   float64 `yaml:"recover_score" mapstructure:"recover_score"`
}

// ReviewConfig configures the review-bucket sampler.
type ReviewConfig struct {
	BucketCap        int   `yaml:"bucket_cap" mapstructure:"bucket_cap"`
	ValidationSample int   `yaml:"validation_sample" mapstructure:"validation_sample"`
	Seed             int64 `yaml:"seed" mapstructure:"seed"` // 0 = non-deterministic
}

// TrainConfig configures the training-set builder and model trainer.
type TrainConfig struct {
	MinRows      int     `yaml:"min_rows" mapstructure:"min_rows"`
	Epochs       int     `yaml:"epochs" mapstructure:"epochs"`
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	L2           float64 `yaml:"l2" mapstructure:"l2"`
	Folds        int     `yaml:"folds" mapstructure:"folds"`
	DedupPolicy  string  `yaml:"dedup_policy" mapstructure:"dedup_policy"` // keep-first or keep-last
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the audit store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the scoring HTTP service.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GAMEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("match.threshold", 70)
	v.SetDefault("match.concurrency", 8)
	v.SetDefault("match.stop_words", []string{
		"the", "with", "from", "game", "games", "edition", "deluxe",
		"ultimate", "complete", "definitive", "goty", "repack", "multi",
		"free", "download", "windows",
	})
	v.SetDefault("match.min_token_len", 3)
	v.SetDefault("match.very_high_similarity", 0.85)
	v.SetDefault("match.high_similarity", 0.65)
	v.SetDefault("match.desc_threshold", 0.4)
	v.SetDefault("match.exact_name_weight", 50)
	v.SetDefault("match.exact_phrase_weight", 40)
	v.SetDefault("match.alt_title_weight", 30)
	v.SetDefault("match.very_high_word_weight", 35)
	v.SetDefault("match.high_word_weight", 25)
	v.SetDefault("match.all_keywords_weight", 15)
	v.SetDefault("match.description_weight", 25)
	v.SetDefault("match.trusted_bonus", 5)
	v.SetDefault("match.sequel_mismatch_penalty", 60)
	v.SetDefault("match.numbered_sequel_penalty", 25)
	v.SetDefault("match.non_game_media_penalty", 60)
	v.SetDefault("match.adult_content_penalty", 50)
	v.SetDefault("match.secondary_content_penalty", 35)
	v.SetDefault("match.demo_penalty", 30)
	v.SetDefault("match.mod_penalty", 25)
	v.SetDefault("match.unsafe_penalty", 10)
	v.SetDefault("match.tiny_size_penalty", 25)
	v.SetDefault("match.pre_release_penalty", 30)
	v.SetDefault("match.many_extra_words_penalty", 10)
	v.SetDefault("match.min_size_mb", 50)
	v.SetDefault("match.pre_release_days", 30)
	v.SetDefault("match.extra_words_over", 5)
	v.SetDefault("match.adult_keywords", []string{
		"xxx", "porn", "porno", "hentai", "erotic", "nsfw",
		"adult only", "brazzers", "onlyfans", "parody xxx",
	})
	v.SetDefault("match.rerank_override_floor", 0.85)

	v.SetDefault("labeler.min_size_mb", 50)
	v.SetDefault("labeler.pre_release_days", 180)
	v.SetDefault("labeler.high_score", 90)
	v.SetDefault("labeler.low_score", 20)
	v.SetDefault("labeler.recover_score", 80)

	v.SetDefault("review.bucket_cap", 150)
	v.SetDefault("review.validation_sample", 40)
	v.SetDefault("review.seed", 0)

	v.SetDefault("train.min_rows", 200)
	v.SetDefault("train.epochs", 400)
	v.SetDefault("train.learning_rate", 0.1)
	v.SetDefault("train.l2", 0.001)
	v.SetDefault("train.folds", 5)
	v.SetDefault("train.dedup_policy", "keep-first")
	v.SetDefault("train.seed", 42)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "gamematch.db")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
