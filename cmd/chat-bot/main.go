package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"twitch-chat-bot/auth"
	"twitch-chat-bot/command"
	"twitch-chat-bot/config"
	"twitch-chat-bot/helix"
	"twitch-chat-bot/logging"
	"twitch-chat-bot/service"
	"twitch-chat-bot/speedrun"
	"twitch-chat-bot/storage"
	"twitch-chat-bot/tokens"
	"twitch-chat-bot/twitch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatal().Err(err).Msg("не удалось загрузить конфигурацию")
	}

	logging.Init(logging.Config{Level: logging.ParseLevel(cfg.Log.Level), Output: os.Stderr, Pretty: cfg.Log.Pretty})
	log := logging.Component("main")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("pgxpool.New")
	}
	defer pool.Close()

	states := storage.NewStateStore(pool, storage.StateConfig{
		Timeout:     cfg.Bot.StateTimeout,
		MaxRetries:  cfg.Bot.StateMaxRetries,
		SlotsEmotes: cfg.Bot.SlotsEmotes,
	})
	if err := states.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("не удалось подготовить схему")
	}

	batcher := storage.NewBatcher(ctx, pool, storage.BatchConfig{
		MaxBatch:      cfg.Batch.MaxBatch,
		FlushEvery:    cfg.Batch.FlushEvery,
		ChanBuffer:    cfg.Batch.ChanBuffer,
		StatsLogEvery: cfg.Batch.StatsLogEvery,
		FlushTimeout:  cfg.Batch.FlushTimeout,
	})

	client := twitch.NewClient(cfg.Twitch, twitch.Options{
		MessagesPer30s: cfg.Bot.MessagesPer30s,
		OutgoingBuffer: cfg.Bot.OutgoingBuffer,
	}, nil)

	opts := command.Options{
		Sender:   client,
		Store:    states,
		Speedrun: speedrun.NewClient(cfg.Speedrun.BaseURL, &http.Client{Timeout: cfg.Speedrun.Timeout}),
		Logger:   logging.Component("command"),
	}

	var emotes service.EmoteSource
	if cfg.HelixEnabled() {
		httpClient := &http.Client{Timeout: cfg.Helix.Timeout}
		creds := auth.AppCredentials{
			ClientID:     cfg.Twitch.ClientID,
			ClientSecret: cfg.Twitch.ClientSecret,
			TokenURL:     cfg.Helix.TokenURL,
			HTTPClient:   httpClient,
			MaxRetries:   3,
		}
		manager := tokens.NewAppTokenManager(tokens.FileTokenStore{Path: cfg.Twitch.TokenFile}, creds.GetAppToken)
		hc := helix.NewClient(cfg.Helix.BaseURL, cfg.Twitch.ClientID, manager, httpClient)
		opts.Streams = hc
		emotes = hc
	} else {
		log.Warn().Msg("TWITCH_CLIENT_ID/TWITCH_CLIENT_SECRET не заданы: !uptime недоступна, эмоуты из резервного списка")
	}

	bot := service.NewBot(service.Config{
		Username:       cfg.Twitch.Username,
		Channels:       cfg.Twitch.Channels,
		FallbackEmotes: cfg.Bot.FallbackEmotes,
		TimerTick:      cfg.Bot.TimerTick,
	}, command.NewDispatcher(opts), client, states, emotes, batcher)
	client.SetHandler(bot)

	log.Info().Strs("channels", cfg.Twitch.Channels).Msg("бот запускается")

	if err := service.New(client, bot).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("сервис завершился с ошибкой")
	}

	log.Info().Msg("завершение работы...")
}
