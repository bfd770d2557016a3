package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"azor/internal/config"
	"azor/internal/credential"
	"azor/internal/logger"
)

type Options struct {
	Config string
	Debug  bool
	Format string
}

// state is filled in by the root PersistentPreRunE and shared with subcommands.
type state struct {
	viper  *viper.Viper
	config config.Config
	logger *slog.Logger
}

var flagKeys = map[string]string{
	"debug":           "log.debug",
	"log-format":      "log.format",
	"backend":         "llm.backend",
	"url":             "llm.url",
	"model":           "llm.model",
	"thinking-budget": "llm.thinking_budget",
	"timeout":         "llm.timeout",
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}
	st := &state{}
	root := &cobra.Command{
		Use:          "azor",
		Short:        "azor - send a fixed conversation to Gemini and print the reply",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExchange(cmd, st)
		},
	}

	root.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default: ./azor.yaml)")
	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.Format, "log-format", logger.FormatPretty, "log format: pretty, text or json")
	addLLMFlags(root.Flags())

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newRequestCmd(st))
	root.AddCommand(newVersionCmd())
	return root
}

func addLLMFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.String("backend", d.LLM.Backend, "gemini transport: sdk or rest")
	flags.String("url", d.LLM.URL, "override base url")
	flags.String("model", d.LLM.Model, "override model name")
	flags.Int32("thinking-budget", d.LLM.ThinkingBudget, "thinking budget, -1 for dynamic")
	flags.Duration("timeout", d.LLM.Timeout, "request timeout, 0 for none")
}

func (s *state) init(cmd *cobra.Command, opts *Options) error {
	if err := credential.LoadDotEnv(""); err != nil {
		return err
	}
	v, err := config.New(opts.Config)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	s.viper = v
	s.config = cfg
	s.logger = logger.New(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithFormat(cfg.Log.Format),
		logger.WithDebug(cfg.Log.Debug),
	)
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
