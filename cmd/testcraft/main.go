package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nkarim/testcraft/internal/handler"
	appI18n "github.com/nkarim/testcraft/internal/i18n"
	"github.com/nkarim/testcraft/internal/llm"
	"github.com/nkarim/testcraft/internal/model"
	"github.com/nkarim/testcraft/internal/store"
	"github.com/nkarim/testcraft/internal/syllabus"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "testcraft",
		Short: "Practice test generator powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `testcraft --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringSliceP("syllabus", "s", nil, "Paths to extra syllabus YAML files (repeatable)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "Server-level API key for LLM (clients supply their own when unset)")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.Float32("temperature", 0.7, "Sampling temperature for generation")
	f.Int("max-tokens", 4000, "Maximum tokens per completion")
	f.Int("min-questions", 5, "Minimum number of questions per test")
	f.Int("max-questions", 25, "Maximum number of questions per test")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.Duration("session-ttl", 2*time.Hour, "Idle lifetime of quiz sessions")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("TESTCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("testcraft")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/testcraft")
	v.AddConfigPath("/etc/testcraft")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Local overrides such as TESTCRAFT_LLM_KEY live in .env during development.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	setupLogging(cmd)
	v := viperForCmd(cmd)

	catalog, err := syllabus.Load(v.GetStringSlice("syllabus")...)
	if err != nil {
		return fmt.Errorf("load syllabus: %w", err)
	}
	slog.Info("syllabus loaded", "subjects", len(catalog.Subjects()))

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	serverKey := v.GetString("llm-key")
	llmClient := llm.New(
		v.GetString("llm-url"),
		serverKey,
		v.GetString("llm-model"),
		float32(v.GetFloat64("temperature")),
		v.GetInt("max-tokens"),
	)
	if llmClient.HasKey() {
		if err := llmClient.Ping(context.Background()); err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	} else {
		slog.Info("no server-level LLM key configured, clients must supply their own")
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	sessions := store.New(v.GetDuration("session-ttl"))
	defer sessions.Close()

	appCfg := model.AppConfig{
		MinQuestions:  v.GetInt("min-questions"),
		MaxQuestions:  v.GetInt("max-questions"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		HasServerKey:  llmClient.HasKey(),
	}

	h := handler.New(catalog, llmClient, sessions, appCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"min_questions", appCfg.MinQuestions,
		"max_questions", appCfg.MaxQuestions,
		"session_ttl", v.GetDuration("session-ttl"),
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}
