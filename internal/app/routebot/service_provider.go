// Package routebot provides dependency injection and service management for the routing bot.
// It initializes and provides access to the directory, stores, transport and dialogue engine.
package routebot

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/api/console"
	botHand "github.com/DenisKhanov/RouteBOT/internal/routebot/api/http"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/api/telegram"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/config"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/directory"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/metrics"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/repository"
	botServ "github.com/DenisKhanov/RouteBOT/internal/routebot/service"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/status"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Transport is a messaging channel: it delivers replies and feeds inbound messages to a handler.
type Transport interface {
	botServ.Sender
	Run(ctx context.Context, handle func(ctx context.Context, senderID, body string) error) error
}

// ServiceProvider manages the dependency injection for routing bot components.
type ServiceProvider struct {
	config *config.Config

	directory   *directory.Directory
	registry    *prometheus.Registry
	metrics     *metrics.DialogueMetrics
	hub         *status.Hub
	memoryStore *repository.Conversations // nil when conversations live in Redis
	repo        botServ.ConversationRepository
	transport   Transport
	engine      *botServ.Engine
	handler     *botHand.Handler

	directoryOnce sync.Once
	registryOnce  sync.Once
	hubOnce       sync.Once
	repoOnce      sync.Once
	transportOnce sync.Once
	engineOnce    sync.Once
	handlerOnce   sync.Once

	directoryErr error
	repoErr      error
	transportErr error
}

// NewServiceProvider creates a new instance of the service provider.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{config: cfg}
}

// Directory returns the department directory loaded from DIRECTORY_FILE or the built-in one.
func (s *ServiceProvider) Directory() (*directory.Directory, error) {
	s.directoryOnce.Do(func() {
		s.directory, s.directoryErr = directory.LoadFile(s.config.EnvDirectoryFile)
		if s.directoryErr == nil {
			logrus.Infof("Directory initialized with departments: %v", s.directory.Labels())
		}
	})
	return s.directory, s.directoryErr
}

// Registry returns the Prometheus registry with dialogue and runtime collectors.
func (s *ServiceProvider) Registry() *prometheus.Registry {
	s.registryOnce.Do(func() {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.metrics = metrics.NewDialogueMetrics(s.registry)
		logrus.Info("Metrics initialized")
	})
	return s.registry
}

// Metrics returns the dialogue metrics.
func (s *ServiceProvider) Metrics() *metrics.DialogueMetrics {
	s.Registry()
	return s.metrics
}

// StatusHub returns the live status hub.
func (s *ServiceProvider) StatusHub() *status.Hub {
	s.hubOnce.Do(func() {
		s.hub = status.NewHub(s.config.EnvTransport)
	})
	return s.hub
}

// ConversationRepository returns the configured conversation store.
func (s *ServiceProvider) ConversationRepository() (botServ.ConversationRepository, error) {
	s.repoOnce.Do(func() {
		switch s.config.EnvStore {
		case config.StoreRedis:
			client := redis.NewClient(&redis.Options{Addr: s.config.EnvRedisAddr})
			store := repository.NewRedisConversations(client, s.config.ConversationTTL())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				s.repoErr = fmt.Errorf("connect to redis %s: %w", s.config.EnvRedisAddr, err)
				return
			}
			s.repo = store
			logrus.Infof("Redis conversation store initialized at %s", s.config.EnvRedisAddr)
		default:
			s.memoryStore = repository.NewConversations(s.config.EnvMaxConversations)
			s.repo = s.memoryStore
			logrus.Info("In-memory conversation store initialized")
		}
	})
	return s.repo, s.repoErr
}

// MemoryStore returns the in-memory store, or nil when another store is configured.
func (s *ServiceProvider) MemoryStore() *repository.Conversations {
	_, _ = s.ConversationRepository()
	return s.memoryStore
}

// Transport returns the configured messaging transport.
func (s *ServiceProvider) Transport() (Transport, error) {
	s.transportOnce.Do(func() {
		switch s.config.EnvTransport {
		case config.TransportConsole:
			s.transport = console.New(os.Stdin, os.Stdout)
			logrus.Info("Console transport initialized")
		default:
			botAPI, err := tgbotapi.NewBotAPIWithClient(s.config.EnvBotToken, tgbotapi.APIEndpoint, telegram.NewHTTPClient())
			if err != nil {
				s.transportErr = fmt.Errorf("can't make telegram bot: %w", err)
				return
			}
			botAPI.Debug = s.config.EnvBotDebug
			s.transport = telegram.NewBot(botAPI)
			logrus.Infof("Bot API created successfully for %s", botAPI.Self.UserName)
		}
	})
	return s.transport, s.transportErr
}

// Engine returns the dialogue engine wired to the directory, store and transport.
func (s *ServiceProvider) Engine() (*botServ.Engine, error) {
	var err error
	s.engineOnce.Do(func() {
		var (
			dir       *directory.Directory
			repo      botServ.ConversationRepository
			transport Transport
		)
		if dir, err = s.Directory(); err != nil {
			return
		}
		if repo, err = s.ConversationRepository(); err != nil {
			return
		}
		if transport, err = s.Transport(); err != nil {
			return
		}
		s.engine = botServ.NewEngine(dir, repo, transport, botServ.Options{
			GreetingToken: s.config.EnvGreetingToken,
			DeepLinkBase:  s.config.EnvDeepLinkBase,
			Metrics:       s.Metrics(),
			Notifier:      s.StatusHub(),
		})
		logrus.Info("Dialogue engine initialized")
	})
	if err != nil {
		return nil, err
	}
	if s.engine == nil {
		return nil, fmt.Errorf("dialogue engine not initialized")
	}
	return s.engine, nil
}

// Handler returns the status page handler.
func (s *ServiceProvider) Handler() *botHand.Handler {
	s.handlerOnce.Do(func() {
		var conversations func() int
		if store := s.MemoryStore(); store != nil {
			conversations = store.Len
		}
		s.handler = botHand.NewHandler(s.StatusHub(), s.Registry(), conversations)
		logrus.Info("Status handler initialized")
	})
	return s.handler
}
