package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/approval"
	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
	"github.com/ashokgit/Ultimate-Translator-sub000/classify"
	"github.com/ashokgit/Ultimate-Translator-sub000/config"
	"github.com/ashokgit/Ultimate-Translator-sub000/credentials"
	"github.com/ashokgit/Ultimate-Translator-sub000/numeral"
	"github.com/ashokgit/Ultimate-Translator-sub000/provider"
	"github.com/ashokgit/Ultimate-Translator-sub000/sqlstore"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath      string
	logLevel        string
	apiKey          string
	credentialsFile string
}

// app holds the components built from the configuration. Everything it
// opens is released by close.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	sqlite  map[string]*sqlstore.Store
	redis   map[string]*redis.Client
	closers []io.Closer
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// newApp loads the configuration named by g and sets up logging.
func newApp(g *globals, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.credentialsFile != "" {
		cfg.CredentialsFile = g.credentialsFile
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		sqlite: map[string]*sqlstore.Store{},
		redis:  map[string]*redis.Client{},
	}, nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// sqliteStore opens path once per run.
func (a *app) sqliteStore(path string) (*sqlstore.Store, error) {
	if s, ok := a.sqlite[path]; ok {
		return s, nil
	}
	s, err := sqlstore.Open(path)
	if err != nil {
		return nil, err
	}
	a.sqlite[path] = s
	a.closers = append(a.closers, s)
	return s, nil
}

// redisClient connects to url once per run.
func (a *app) redisClient(ctx context.Context, url string) (*redis.Client, error) {
	if c, ok := a.redis[url]; ok {
		return c, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.redis[url] = c
	a.closers = append(a.closers, c)
	return c, nil
}

// translationCache returns the configured cache, or nil for "none".
func (a *app) translationCache(ctx context.Context) (translator.TranslationCache, error) {
	c := a.cfg.Cache
	switch c.Backend {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		client, err := a.redisClient(ctx, c.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCacheFromClient(client, c.KeyPrefix), nil
	case config.CacheSQLite:
		s, err := a.sqliteStore(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s.TranslationCache(), nil
	}
	return cache.NewInMemoryCache(), nil
}

// numeralConverter caches conversions in the configured backend, apart from
// the translations: its own table for SQLite, its own key prefix for Redis.
func (a *app) numeralConverter(ctx context.Context) (*numeral.Converter, error) {
	opts := []numeral.Option{numeral.WithLogger(a.logger)}
	c := a.cfg.Cache
	switch c.Backend {
	case config.CacheNone:
	case config.CacheRedis:
		client, err := a.redisClient(ctx, c.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, numeral.WithCache(cache.NewRedisCacheFromClient(client, numeralKeyPrefix(c.KeyPrefix))))
	case config.CacheSQLite:
		s, err := a.sqliteStore(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, numeral.WithCache(s.NumeralCache()))
	default:
		opts = append(opts, numeral.WithCache(cache.NewInMemoryCache()))
	}
	return numeral.NewConverter(opts...), nil
}

func numeralKeyPrefix(prefix string) string {
	if prefix == "" {
		prefix = cache.DefaultKeyPrefix
	}
	return prefix + "numeral:"
}

func (a *app) registry() (*classify.Registry, error) {
	reg := classify.NewRegistry()
	if a.cfg.Rules.File == "" {
		return reg, nil
	}
	diags, err := reg.LoadFile(a.cfg.Rules.File)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		a.logger.Warn("classification rule skipped", "file", a.cfg.Rules.File, "error", d)
	}
	return reg, nil
}

func (a *app) detector() *classify.Detector {
	r := a.cfg.Rules
	if !r.AutoDetect {
		return nil
	}
	opts := []classify.DetectorOption{
		classify.WithMinFrequency(r.MinFrequency),
		classify.WithConfidenceThreshold(r.ConfidenceThreshold),
		classify.WithDetectorLogger(a.logger),
	}
	if r.StateFile != "" {
		opts = append(opts, classify.WithStateStore(classify.NewFileStateStore(r.StateFile)))
	}
	return classify.NewDetector(opts...)
}

func (a *app) classifier() (*classify.Classifier, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	opts := []classify.Option{classify.WithLogger(a.logger)}
	if d := a.detector(); d != nil {
		opts = append(opts, classify.WithDetector(d))
	}
	return classify.NewClassifier(reg, opts...), nil
}

// provider builds the configured provider with retry and rate limiting.
func (a *app) provider(apiKey string) (translator.Provider, error) {
	pc := a.cfg.Provider
	creds := credentials.Resolve(pc.Name, apiKey, a.cfg.CredentialsFile)

	p, err := provider.New(pc.Name, provider.Config{
		Model:       pc.Model,
		BaseURL:     pc.BaseURL,
		Temperature: pc.Temperature,
		Timeout:     pc.Timeout,
	}, creds)
	if err != nil {
		return nil, err
	}

	if pc.RequestsPerMinute > 0 {
		p = translator.NewRateLimitedProvider(p, translator.RateLimitConfig{
			RequestsPerMinute: pc.RequestsPerMinute,
			Logger:            a.logger,
		})
	}
	if pc.MaxRetries > 0 {
		rc := translator.DefaultRetryConfig()
		rc.MaxRetries = pc.MaxRetries
		rc.Logger = a.logger
		p = translator.NewRetryableProvider(p, rc)
	}
	return p, nil
}

// translator wires every configured component into a Translator.
func (a *app) translator(ctx context.Context, apiKey string) (*translator.Translator, error) {
	p, err := a.provider(apiKey)
	if err != nil {
		return nil, err
	}
	c, err := a.translationCache(ctx)
	if err != nil {
		return nil, err
	}
	clf, err := a.classifier()
	if err != nil {
		return nil, err
	}

	tc := a.cfg.Translation
	opts := []translator.TranslatorOption{
		translator.WithSourceLang(a.cfg.SourceLang),
		translator.WithClassifier(clf),
		translator.WithConcurrency(tc.Concurrency),
		translator.WithCallTimeout(tc.CallTimeout),
		translator.WithSlugs(tc.Slugs),
		translator.WithLogger(a.logger),
	}
	if c != nil {
		opts = append(opts, translator.WithCache(c))
	}
	if tc.Numerals {
		cv, err := a.numeralConverter(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, translator.WithNumerals(cv))
	}
	return translator.NewTranslator(p, opts...), nil
}

// approvalStores returns the record and document stores for approvals.
func (a *app) approvalStores(ctx context.Context) (approval.RecordStore, approval.DocumentStore, error) {
	ac := a.cfg.Approvals
	switch ac.Backend {
	case config.CacheRedis:
		url := ac.RedisURL
		if url == "" {
			url = a.cfg.Cache.RedisURL
		}
		client, err := a.redisClient(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		s := approval.NewRedisStore(client, "")
		return s, s, nil
	case config.CacheMemory:
		s := approval.NewMemoryStore()
		return s, s, nil
	}
	s, err := a.sqliteStore(ac.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

func (a *app) propagator(ctx context.Context) (*approval.Propagator, approval.DocumentStore, error) {
	records, docs, err := a.approvalStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	return approval.NewPropagator(records, docs, approval.WithLogger(a.logger)), docs, nil
}
