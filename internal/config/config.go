package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"azor/internal/conversation"
	"azor/internal/credential"
	"azor/internal/llm"
	"azor/internal/logger"
)

const (
	EnvPrefix      = "AZOR"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

type Config struct {
	LLM LLMConfig `mapstructure:"llm"`
	Log LogConfig `mapstructure:"log"`
}

type LLMConfig struct {
	Backend        string        `mapstructure:"backend"`
	URL            string        `mapstructure:"url"`
	Model          string        `mapstructure:"model"`
	CredentialEnv  string        `mapstructure:"credential_env"`
	ThinkingBudget int32         `mapstructure:"thinking_budget"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Debug  bool   `mapstructure:"debug"`
	Format string `mapstructure:"format"`
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			Backend:        llm.BackendSDK,
			URL:            DefaultBaseURL,
			Model:          conversation.DefaultModel,
			CredentialEnv:  credential.DefaultEnv,
			ThinkingBudget: 0,
		},
		Log: LogConfig{
			Format: logger.FormatPretty,
		},
	}
}

// New returns a viper instance with defaults registered and AZOR_* env
// overrides enabled. configFile, when set, must exist.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("azor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/azor")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("llm.backend", d.LLM.Backend)
	v.SetDefault("llm.url", d.LLM.URL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.credential_env", d.LLM.CredentialEnv)
	v.SetDefault("llm.thinking_budget", d.LLM.ThinkingBudget)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.format", d.Log.Format)
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LLM.Backend {
	case llm.BackendSDK, llm.BackendREST:
	default:
		return fmt.Errorf("invalid llm.backend: %s", c.LLM.Backend)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.ThinkingBudget < -1 {
		return fmt.Errorf("invalid llm.thinking_budget: %d", c.LLM.ThinkingBudget)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("invalid llm.timeout: %s", c.LLM.Timeout)
	}
	switch c.Log.Format {
	case logger.FormatPretty, logger.FormatText, logger.FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}
}
