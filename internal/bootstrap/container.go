package bootstrap

import (
	"context"
	"log"

	"grant-assistant-be/internal/config"
	"grant-assistant-be/internal/controller"
	"grant-assistant-be/internal/handler"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/memory"
	"grant-assistant-be/internal/service"
	"grant-assistant-be/internal/websocket"
	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/llm/factory"
	pktNats "grant-assistant-be/pkg/nats"
	"grant-assistant-be/pkg/proposal"
	"grant-assistant-be/pkg/speech/elevenlabs"
	"grant-assistant-be/pkg/voice"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ProposalController controller.IProposalController
	VoiceController    controller.IVoiceController

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Background Services (Exposed for main.go to run)
	TurnConsumerService service.ITurnConsumerService
	ActivityService     *service.ActivityService

	Logger logger.ILogger

	sessionRepo *memory.SessionRepository
	closers     []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	activityLogger := logger.NewIsolatedLogger(cfg.App.ActivityLogPath)
	c := &Container{Logger: sysLogger}

	// 2. Turn queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS (optional)
	var natsPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		nc, js, err := pktNats.Connect(context.Background(), cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS, domain events disabled: %v", err)
		} else {
			natsPub = pktNats.NewPublisher(js)
			natsSub := pktNats.NewSubscriber(js, sysLogger)
			c.ActivityService = service.NewActivityService(natsSub, activityLogger)
			c.closers = append(c.closers, func() { drain(nc) }, natsSub.Close)
		}
	}

	// Redis (optional)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WebSocketLogPath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Repositories
	c.sessionRepo = memory.NewSessionRepository(cfg.App.SessionTTL)
	audioRepo := memory.NewAudioRepository(cfg.App.AudioTTL)

	// 5. Core
	proposalMapper := mapper.NewProposalMapper(cfg.App.BaseURL)
	driver := proposal.NewDriver(proposal.DemoScript(), proposal.Delays{
		Reply:        cfg.Demo.ReplyDelay,
		Notice:       cfg.Demo.NoticeDelay,
		Patch:        cfg.Demo.PatchDelay,
		Analysis:     cfg.Demo.AnalysisDelay,
		UploadNotice: cfg.Demo.UploadNoticeDelay,
	})

	notifier := service.NewSessionNotifier(c.WebSocketHub, c.sessionRepo, proposalMapper, driver.Script().Len())
	activity := service.NewActivityPublisher(natsPub, sysLogger)
	runner := proposal.NewRunner(driver, proposal.TimerSleeper(), proposal.Observers{notifier, activity})

	// 6. Voice
	llmProvider, err := factory.NewLLMProvider(factory.Params{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OpenAIKey:     cfg.Ai.OpenAIKey,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	speech := elevenlabs.NewClient(cfg.Voice.Endpoint, cfg.Voice.APIKey, cfg.Voice.Language, cfg.Voice.Voice)
	completer := voice.NewLLMCompleter(llmProvider,
		llm.WithTemperature(cfg.Ai.Temperature),
		llm.WithMaxTokens(cfg.Ai.MaxTokens),
	)
	adapter := voice.NewAdapter(speech, completer, speech, audioRepo, notifier, sysLogger, cfg.Voice.Timeout)

	// 7. Services
	publisherService := service.NewPublisherService(pubSub)
	c.TurnConsumerService = service.NewTurnConsumerService(pubSub, c.sessionRepo, runner, activity, sysLogger)

	proposalService := service.NewProposalService(
		c.sessionRepo,
		runner,
		publisherService,
		c.TurnConsumerService,
		notifier,
		activity,
		proposalMapper,
		sysLogger,
		cfg.Ai.SystemPrompt,
	)
	voiceService := service.NewVoiceService(c.sessionRepo, audioRepo, adapter, notifier, activity, proposalMapper)

	// 8. Controllers
	c.ProposalController = controller.NewProposalController(proposalService)
	c.VoiceController = controller.NewVoiceController(voiceService)
	c.StreamHandler = handler.NewStreamHandler(proposalService, c.WebSocketHub, wsLogger)

	return c
}

func (c *Container) SessionCount() int {
	return c.sessionRepo.Count()
}

// Close stops background consumers and releases connections, newest first.
func (c *Container) Close() {
	c.TurnConsumerService.StopAll()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}
