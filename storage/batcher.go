package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"

	"twitch-chat-bot/logging"
	"twitch-chat-bot/model"
)

// BatchConfig задаёт параметры батчинга для журнала команд.
type BatchConfig struct {
	MaxBatch      int
	FlushEvery    time.Duration
	ChanBuffer    int
	StatsLogEvery time.Duration
	FlushTimeout  time.Duration
}

// Batcher асинхронно пишет журнал обработанных команд через pgx.Batch.
type Batcher struct {
	input   chan model.CommandLog
	config  BatchConfig
	sender  batchSender
	dropped atomic.Uint64
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewBatcher создаёт батчер и запускает фоновые флаши.
func NewBatcher(ctx context.Context, sender batchSender, cfg BatchConfig) *Batcher {
	b := &Batcher{
		input:  make(chan model.CommandLog, cfg.ChanBuffer),
		config: cfg,
		sender: sender,
	}

	go b.run(ctx)

	return b
}

// Enqueue пытается добавить запись в очередь; при переполнении возвращает false.
func (b *Batcher) Enqueue(entry model.CommandLog) bool {
	select {
	case b.input <- entry:
		return true
	default:
		dropped := b.dropped.Add(1)
		if dropped%100 == 0 {
			logging.Logger.Warn().Uint64("dropped", dropped).Msg("батчер: очередь заполнена")
		}
		return false
	}
}

// Dropped возвращает число записей, отброшенных из-за переполнения.
func (b *Batcher) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Batcher) run(ctx context.Context) {
	flushTicker := time.NewTicker(b.config.FlushEvery)
	statsTicker := time.NewTicker(b.config.StatsLogEvery)
	defer flushTicker.Stop()
	defer statsTicker.Stop()

	var (
		batch            = &pgx.Batch{}
		pending          = 0
		totalInserted    uint64
		intervalInserted uint64
	)

	const q = `
insert into command_log (
  message_id, channel, user_id, username, trigger, args, reply, handled_at
) values ($1,$2,$3,$4,$5,$6,$7,$8)
on conflict (message_id) do nothing;`

	flush := func() {
		if pending == 0 {
			return
		}

		dbCtx, cancel := context.WithTimeout(context.Background(), b.config.FlushTimeout)
		defer cancel()

		br := b.sender.SendBatch(dbCtx, batch)
		if err := br.Close(); err != nil {
			logging.Logger.Error().Err(err).Int("rows", pending).Msg("батчер: ошибка флаша")
		}

		totalInserted += uint64(pending)
		intervalInserted += uint64(pending)

		batch = &pgx.Batch{}
		pending = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			logging.Logger.Info().Uint64("total", totalInserted).Msg("батчер: контекст отменён")
			return
		case <-flushTicker.C:
			flush()
		case <-statsTicker.C:
			logging.Logger.Info().
				Uint64("inserted", intervalInserted).
				Uint64("total", totalInserted).
				Dur("interval", b.config.StatsLogEvery).
				Msg("батчер: статистика")
			intervalInserted = 0
		case entry := <-b.input:
			batch.Queue(q,
				entry.MessageID, entry.Channel, entry.UserID, entry.Username,
				entry.Trigger, entry.Args, entry.Reply, entry.HandledAt.UTC(),
			)
			pending++
			if pending >= b.config.MaxBatch {
				flush()
			}
		}
	}
}
