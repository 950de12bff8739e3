package life

import (
	"context"
	"sync"

	"github.com/intrntsrfr/life/database"
	"github.com/intrntsrfr/life/kvstore"
	"github.com/intrntsrfr/life/usercache"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/utils"
)

type Bot struct {
	Bot    *bot.Bot
	logger *ZapLogger
	config *utils.Config
	db     database.DB
	users  *usercache.Cache
	store  *kvstore.Store

	// ready gates the first flush cycle; it closes once the gateway is up
	// and the cache is loaded
	ready     chan struct{}
	readyOnce sync.Once
}

func NewBot(config *utils.Config, db database.DB) (*Bot, error) {
	logger := newLogger("bot")

	b := bot.NewBotBuilder(config).
		WithDefaultHandlers().
		WithLogger(logger).
		Build()

	kvStore, err := kvstore.NewStore(logger.log.Named("kvstore"))
	if err != nil {
		return nil, err
	}

	return &Bot{
		Bot:    b,
		logger: logger,
		config: config,
		db:     db,
		users:  usercache.NewCache(db, logger.log.Named("usercache")),
		store:  kvStore,
		ready:  make(chan struct{}),
	}, nil
}

// Run loads the user cache, registers everything and connects. A cache
// load failure aborts startup; the bot must not serve commands over an
// empty cache.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.users.Load(ctx); err != nil {
		return err
	}

	b.registerModules()
	b.registerDiscordHandlers()
	b.registerMioHandlers()

	go b.users.Run(ctx, b.ready)

	return b.Bot.Run(ctx)
}

func (b *Bot) Close() {
	b.Bot.Close()
	if err := b.store.Close(); err != nil {
		b.logger.Error("failed to close kvstore", "error", err)
	}
}

func (b *Bot) signalReady() {
	b.readyOnce.Do(func() {
		close(b.ready)
	})
}

func (b *Bot) registerModules() {
	modules := []bot.Module{
		NewModule(b, b.logger),
	}
	for _, mod := range modules {
		b.Bot.RegisterModule(mod)
	}
}

func (b *Bot) registerDiscordHandlers() {
	b.Bot.Discord.AddEventHandler(readyHandler(b))
	b.Bot.Discord.AddEventHandler(disconnectHandler(b))
	b.Bot.Discord.AddEventHandler(messageCreateHandler(b))
}

func (b *Bot) registerMioHandlers() {
	b.Bot.AddHandler(logApplicationCommandPanicked(b))
	b.Bot.AddHandler(logApplicationCommandRan(b))
}
