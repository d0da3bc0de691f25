package cmd

import (
	"context"
	"net/http"

	httpapi "deliveryhub/internal/adapters/in/http"
	inkafka "deliveryhub/internal/adapters/in/kafka"
	"deliveryhub/internal/adapters/in/ws"
	outkafka "deliveryhub/internal/adapters/out/kafka"
	"deliveryhub/internal/adapters/out/postgres"
	"deliveryhub/internal/adapters/out/redisstore"
	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/application/usecases/queries"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/jobs"
	"deliveryhub/internal/pkg/metrics"
	"deliveryhub/internal/pkg/validation"
	"deliveryhub/internal/tracking"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CompositionRoot builds every component once and hands out the handlers.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	redis      redis.Cmdable
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     zerolog.Logger
	validate   *validator.Validate

	hub               *tracking.Hub
	deliveryCache     *redisstore.DeliveryCache
	producer          *outkafka.Producer
	publisher         ports.DeliveryEventPublisher
	assignmentMetrics *metrics.AssignmentMetrics
	cronMetrics       *metrics.CronJobMetrics
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	redisClient redis.Cmdable,
	reg prometheus.Registerer,
	log zerolog.Logger,
) *CompositionRoot {
	c := &CompositionRoot{
		cfg:               cfg,
		gormDB:            gormDB,
		redis:             redisClient,
		uowFactory:        postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:            log,
		validate:          validation.New(),
		deliveryCache:     redisstore.NewDeliveryCache(redisClient, cfg.Redis.CacheTTL),
		assignmentMetrics: metrics.NewAssignmentMetrics(reg),
		cronMetrics:       metrics.NewCronJobMetrics(reg),
	}

	c.hub = tracking.NewHub(tracking.Options{
		Retention: cfg.Tracking.Retention,
		Metrics:   metrics.NewHubMetrics(reg),
		Logger:    log,
	})

	publishers := fanoutPublisher{tracking.NewNotifier(c.hub, log)}
	if cfg.Kafka.Enabled {
		writer := outkafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.DeliveryEventsTopic)
		c.producer = outkafka.NewProducer(writer, cfg.Kafka.ProducerBuffer, log)
		publishers = append(publishers, outkafka.NewEventPublisher(c.producer, cfg.App.ServiceName, log))
	}
	c.publisher = publishers

	return c
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateAssignDeliveryCommandHandler() commands.AssignDeliveryCommandHandler {
	return commands.NewAssignDeliveryCommandHandler(
		c.uow(), c.publisher, c.assignmentMetrics, c.logger,
	)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(
		c.uow(), c.publisher, c.deliveryCache, c.assignmentMetrics, c.logger,
	)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB, c.deliveryCache, c.hub, c.logger)
}

func (c *CompositionRoot) CreateGetPartnerActiveDeliveriesQueryHandler() queries.GetPartnerActiveDeliveriesQueryHandler {
	return queries.NewGetPartnerActiveDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) Hub() *tracking.Hub {
	return c.hub
}

// Producer returns nil when Kafka is disabled.
func (c *CompositionRoot) Producer() *outkafka.Producer {
	return c.producer
}

func (c *CompositionRoot) CreateHTTPServer() *httpapi.Server {
	return httpapi.NewServer(
		c.CreateAssignDeliveryCommandHandler(),
		c.CreateUpdateDeliveryStatusCommandHandler(),
		c.CreateGetDeliveryQueryHandler(),
		c.CreateGetPartnerActiveDeliveriesQueryHandler(),
	)
}

func (c *CompositionRoot) CreateGateway() *ws.Gateway {
	return ws.NewGateway(
		c.hub,
		c.CreateUpdateDeliveryStatusCommandHandler(),
		c.CreateGetDeliveryQueryHandler(),
		c.validate,
		ws.Options{
			SendBuffer:     c.cfg.Tracking.SendBuffer,
			WriteWait:      c.cfg.Tracking.WriteWait,
			PongWait:       c.cfg.Tracking.PongWait,
			MaxMessageSize: c.cfg.Tracking.MaxMessageSize,
			CheckOrigin:    originChecker(c.cfg.Tracking.AllowedOrigins),
		},
		c.logger,
	)
}

// CreateOrderConfirmedConsumer returns the consumer and its handler, or nils when
// Kafka is disabled.
func (c *CompositionRoot) CreateOrderConfirmedConsumer() (*inkafka.Consumer, inkafka.Handler) {
	if !c.cfg.Kafka.Enabled {
		return nil, nil
	}
	handler := inkafka.NewOrderConfirmedHandler(
		c.CreateAssignDeliveryCommandHandler(),
		redisstore.NewDedupStore(c.redis, c.cfg.Redis.DedupTTL),
		c.publisher,
		c.validate,
		c.logger,
	)
	reader := inkafka.NewReader(c.cfg.Kafka.Brokers, c.cfg.Kafka.ConsumerGroup, c.cfg.Kafka.OrderConfirmedTopic)
	consumer := inkafka.NewConsumer(reader, inkafka.ConsumerOptions{
		Workers:     c.cfg.Kafka.ConsumerWorkers,
		OnExhausted: handler.Exhausted,
	}, c.logger)
	return consumer, handler.Handle
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.logger,
		jobs.NewTrackingSweepJob(c.hub, c.cfg.Tracking.SweepSchedule, c.cronMetrics, c.logger),
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// fanoutPublisher hands every event to each publisher in order: live viewers
// first, then downstream services.
type fanoutPublisher []ports.DeliveryEventPublisher

func (f fanoutPublisher) DeliveryCreated(ctx context.Context, event ports.DeliveryCreated) {
	for _, p := range f {
		p.DeliveryCreated(ctx, event)
	}
}

func (f fanoutPublisher) DeliveryStatusChanged(ctx context.Context, event ports.DeliveryStatusChanged) {
	for _, p := range f {
		p.DeliveryStatusChanged(ctx, event)
	}
}

func (f fanoutPublisher) DeliveryUnassigned(ctx context.Context, event ports.DeliveryUnassigned) {
	for _, p := range f {
		p.DeliveryUnassigned(ctx, event)
	}
}

// originChecker allows any origin when the list is empty.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
