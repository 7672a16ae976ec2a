package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"PostGenius/config"
	"PostGenius/database"
	"PostGenius/media"
	"PostGenius/publishers"
	"PostGenius/queue"
	"PostGenius/services"
	"PostGenius/store"
	"PostGenius/utils"
	"PostGenius/valkey"
)

// app holds the wired services shared by every command.
type app struct {
	kv        store.KeyValue
	posts     *store.PostStore
	postSvc   *services.PostService
	scheduler *services.Scheduler
	settings  *services.SettingsService
	content   services.ContentGenerator
	closers   []func()
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	kv, closeKV, err := openKeyValue(cfg)
	if err != nil {
		return nil, err
	}
	a.kv = kv
	a.closers = append(a.closers, closeKV)

	notifier := services.Notifier(services.LogNotifier{})
	if cfg.AMQPURL != "" {
		amqpNotifier, err := queue.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			utils.Warnf("[Events] AMQP disabled: %v", err)
		} else {
			notifier = services.MultiNotifier{notifier, amqpNotifier}
			a.closers = append(a.closers, func() { _ = amqpNotifier.Close() })
		}
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	publisher := publishers.NewFacebookPublisher(
		client,
		media.NewLoader(client, cfg.MaxImageDim),
		cfg.GraphAPIBase,
		cfg.FacebookVersion,
	)

	a.posts = store.NewPostStore(kv)
	a.postSvc = services.NewPostService(a.posts, publisher,
		services.WithLocation(cfg.Location()),
		services.WithLeadTime(cfg.ScheduleLeadTime),
		services.WithNotifier(notifier),
	)
	a.scheduler = services.NewScheduler(a.posts, publisher,
		services.WithInterval(cfg.SchedulerInterval),
		services.WithMaxAttempts(cfg.SchedulerMaxAttempts),
		services.WithSchedulerNotifier(notifier),
	)
	a.settings = services.NewSettingsService(kv, cfg.TokenEncryptionKey, cfg.GeminiAPIKey)
	a.content = services.NewGeminiGenerator(cfg.GeminiTextModel, cfg.GeminiImageModel, cfg.PostLanguage)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openKeyValue(cfg *config.Config) (store.KeyValue, func(), error) {
	switch strings.ToLower(cfg.StoreDriver) {
	case "", "file":
		kv, err := store.NewFileKV(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		utils.Infof("[Store] using file %s", cfg.StorePath)
		return kv, func() {}, nil
	case "memory":
		utils.Warnf("[Store] using in-memory store, posts are lost on exit")
		return store.NewMemoryKV(), func() {}, nil
	case "postgres":
		db, err := database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		utils.Infof("[Store] using PostgreSQL")
		return db, func() { _ = db.Close() }, nil
	case "valkey":
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.ValkeyAddress,
			Password:  cfg.ValkeyPassword,
			DB:        cfg.ValkeyDB,
			KeyPrefix: cfg.ValkeyKeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		utils.Infof("[Store] using Valkey at %s", cfg.ValkeyAddress)
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
