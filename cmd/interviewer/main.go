package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/interviewer/cmd/interviewer/cmds"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var rootCmd = &cobra.Command{
	Use:   "interviewer",
	Short: "interviewer runs practice interviews against synthetic DX personas",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger now that flags are parsed
		initLogger()
	},
	SilenceUsage: true,
}

type logConfig struct {
	WithCaller bool
	Level      string
	LogFormat  string
	LogFile    string
}

func initLogger() {
	logLevel := viper.GetString("log-level")
	if viper.GetBool("verbose") && logLevel != "trace" {
		logLevel = "debug"
	}

	err := InitLogger(&logConfig{
		Level:      logLevel,
		LogFile:    viper.GetString("log-file"),
		LogFormat:  viper.GetString("log-format"),
		WithCaller: viper.GetBool("with-caller"),
	})
	cobra.CheckErr(err)
}

func InitLogger(config *logConfig) error {
	if config.WithCaller {
		log.Logger = log.With().Caller().Logger()
	}
	var logWriter io.Writer
	if config.LogFormat == "text" {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	} else {
		logWriter = os.Stderr
	}

	if config.LogFile != "" {
		logWriter = io.MultiWriter(
			logWriter,
			zerolog.ConsoleWriter{
				NoColor: true,
				Out: &lumberjack.Logger{
					Filename:   config.LogFile,
					MaxSize:    10, // megabytes
					MaxBackups: 3,
					MaxAge:     28, // days
				},
			})
	}

	log.Logger = log.Output(logWriter)

	if config.Level == "" {
		config.Level = "info"
	}
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	return nil
}

func initConfig(configPath string) error {
	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env")
	}

	viper.SetEnvPrefix("interviewer")
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.interviewer")
		viper.AddConfigPath("/etc/interviewer")

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(xdgConfigPath + "/interviewer")
		}
	}

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// no config file, flags and environment only
	} else if err != nil {
		return err
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// OPENAI_API_KEY is honoured without the prefix as well
	if err := viper.BindEnv("openai-api-key", "INTERVIEWER_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return err
	}

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return err
	}

	initLogger()

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.String("config", "", "Path to a config file")
	pf.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (json, text)")
	pf.String("log-file", "", "Also log to this file, rotated")
	pf.Bool("with-caller", false, "Log caller")
	pf.Bool("verbose", false, "Verbose output")

	pf.String("personas", "personas.json", "Persona file (JSON or YAML)")
	pf.String("questions", "interview_questions.json", "Interview question file")
	pf.String("checklist", "", "Optional checklist passed to question generation")
	pf.String("dx-checklist", "", "Optional DX checklist text file for coaching answers")
	pf.Int64("seed", 0, "Seed for RANDOM stage resolution (0 uses the clock)")

	pf.String("export-dir", ".", "Directory export files are written to")
	pf.String("export-format", "xlsx", "Export format (txt, json, xlsx, sqlite)")

	pf.String("model", "", "Completion model")
	pf.Int("max-tokens", 0, "Override the maximum response tokens")
	pf.Float64("temperature", 0, "Override the sampling temperature")
	pf.Float64("top-p", 0, "Override top-p")
	pf.String("openai-api-key", "", "OpenAI API key")
	pf.String("openai-base-url", "", "OpenAI compatible base URL")
	pf.String("openai-organization", "", "OpenAI organization")
	pf.Int("timeout", 0, "Request timeout in seconds")
	pf.Bool("dry-run", false, "Answer with canned replies instead of calling the API")

	// config has to be read before the subcommands look at viper, and
	// --config itself has to be parsed first
	configPath := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configPath = os.Args[i+1]
		} else if strings.HasPrefix(arg, "--config=") {
			configPath = strings.TrimPrefix(arg, "--config=")
		}
	}
	cobra.CheckErr(initConfig(configPath))

	rootCmd.AddCommand(
		cmds.NewPersonasCommand(),
		cmds.NewQuestionsCommand(),
		cmds.NewInterviewCommand(),
		cmds.NewChatCommand(),
		cmds.NewClassifyCommand(),
		cmds.NewTokensCommand(),
		cmds.NewServeCommand(),
	)
}
