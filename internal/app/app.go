package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"media-approve/internal/config"
	"media-approve/internal/handlers"
	"media-approve/internal/handlers/callbacks"
	"media-approve/internal/notifier"
	"media-approve/internal/repositories"
	"media-approve/internal/services"
	"media-approve/internal/services/gallery"
	"media-approve/internal/services/review"
	"media-approve/internal/utils"
	"media-approve/pkg/db"
	rdb "media-approve/pkg/db/redis"
	"media-approve/pkg/vkbot"
)

type App struct {
	cfg       *config.Config
	bot       *vkbot.Client
	db        *gorm.DB
	store     *rdb.Store
	messages  *handlers.MessageHandler
	callbacks *callbacks.Handler
}

// New connects the bot, the database and redis and wires the pipeline.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	bot, err := vkbot.New(vkbot.Options{Token: cfg.Bot.Token, APIURL: cfg.Bot.APIURL, Debug: cfg.Bot.Debug})
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	store, err := rdb.Connect(ctx, rdb.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	mirror := cfg.MirroringEnabled()
	media := repositories.NewMediaRepository(gdb)
	directory := services.NewCachedDirectory(bot, cfg.Review.MembershipTTL)
	codec := review.NewCodec(cfg.Review.FooterLimit)
	lychee := gallery.NewClient(gallery.Config{
		Enabled:         mirror,
		BaseURL:         cfg.Lychee.APIURL,
		APIKey:          cfg.Lychee.APIKey,
		ImportTimeout:   cfg.Lychee.ImportTimeout,
		DownloadTimeout: cfg.Lychee.DownloadTimeout,
		UploadTimeout:   cfg.Lychee.UploadTimeout,
	})

	reviews := services.NewReviewService(services.ReviewConfig{
		ReviewerGroupID: cfg.Review.ReviewerGroupID,
		AlbumID:         cfg.Lychee.AlbumID,
		MirrorEnabled:   mirror,
		DenyReasonMin:   cfg.Review.DenyReasonMin,
		DenyReasonMax:   cfg.Review.DenyReasonMax,
	}, codec, media, lychee, directory, bot, repositories.NewLedgerRepository(store, cfg.Review.ResolvedTTL))

	submissions := services.NewSubmissionService(services.SubmissionConfig{
		SubmitterGroupID: cfg.Review.SubmitterGroupID,
		ReviewChatID:     cfg.Review.ReviewChatID,
		MirrorEnabled:    mirror,
	}, directory, repositories.NewCooldownRepository(store, cfg.Review.SubmitCooldown),
		services.NewValidator(media, cfg.Review.MaxFiles), codec, bot)

	cb := callbacks.NewHandler(callbacks.Config{
		DenyReasonMin: cfg.Review.DenyReasonMin,
		DenyReasonMax: cfg.Review.DenyReasonMax,
		DialogTTL:     utils.FormatRemaining(cfg.Review.DenyDialogTTL),
	}, reviews, repositories.NewDialogRepository(store, cfg.Review.DenyDialogTTL), bot, bot, notifier.New(bot))

	messages := handlers.NewMessageHandler(handlers.MessageConfig{
		CommunityID:     cfg.Review.CommunityID,
		ReviewerGroupID: cfg.Review.ReviewerGroupID,
		Command:         cfg.Bot.Command,
		MirrorEnabled:   mirror,
		Cooldown:        utils.FormatRemaining(cfg.Review.SubmitCooldown),
	}, submissions, cb, media, directory, bot)

	return &App{cfg: cfg, bot: bot, db: gdb, store: store, messages: messages, callbacks: cb}, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.close()

	if a.cfg.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	updates := a.bot.Updates(ctx)

	log.WithField("review_chat", a.cfg.Review.ReviewChatID).Info("bot started")
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return errors.New("updates channel closed")
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.Updates(ctx, update)
			}()
		case sig := <-quit:
			log.Infof("Received signal: %s. Shutting down...", sig)
			cancel()
			wg.Wait()
			return nil
		}
	}
}

func (a *App) serveMetrics(ctx context.Context) {
	http.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.MetricsAddr, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.WithField("addr", a.cfg.MetricsAddr).Info("serving metrics and pprof")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

func (a *App) close() {
	if err := a.store.Close(); err != nil {
		log.WithError(err).Warn("closing redis")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
