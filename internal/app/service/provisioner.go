package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProvisionOutcome describes what a provisioning task did
type ProvisionOutcome string

const (
	ProvisionCreated ProvisionOutcome = "created"
	ProvisionExists  ProvisionOutcome = "exists"
	ProvisionSkipped ProvisionOutcome = "skipped"
	ProvisionFailed  ProvisionOutcome = "failed"
)

// ErrProvisionerStopped is reported for tasks enqueued after Close
var ErrProvisionerStopped = errors.New("provisioner stopped")

// ErrProvisionQueueFull is reported for tasks dropped because the queue was full
var ErrProvisionQueueFull = errors.New("provision queue full")

// ProvisionResult is the independently reported outcome of one provisioning task
type ProvisionResult struct {
	RequestID string
	SellerID  string
	Outcome   ProvisionOutcome
	Err       error
}

// SellerEnsurer creates a seller for an email unless one already exists
type SellerEnsurer interface {
	EnsureSeller(ctx context.Context, p SellerProvision) (*domain.Seller, bool, error)
}

// ProvisionerConfig sizes the provisioning worker pool
type ProvisionerConfig struct {
	Workers   int
	QueueSize int
}

type provisionTask struct {
	requestID string
	link      trace.Link
}

// Provisioner creates seller accounts for approved seller requests. It runs
// after the approval is stored, on its own workers, and reports each outcome
// through logs, metrics, domain events and subscriber channels.
type Provisioner struct {
	instruments
	requests    domain.SellerRequestRepository
	sellers     SellerEnsurer
	workers     int
	queue       chan provisionTask
	provisioned metric.Int64Counter

	mu          sync.Mutex
	closed      bool
	wg          sync.WaitGroup
	subscribers []chan ProvisionResult
}

// NewProvisioner creates a provisioner. Call Start to begin processing.
func NewProvisioner(
	requests domain.SellerRequestRepository,
	sellers SellerEnsurer,
	cfg ProvisionerConfig,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *Provisioner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}

	provisioned, _ := meter.Int64Counter(
		"sellers.provisioned.total",
		metric.WithDescription("Seller provisioning outcomes for approved seller requests"),
	)

	return &Provisioner{
		instruments: newInstruments("seller_provisioning", publisher, tracer, meter, logger),
		requests:    requests,
		sellers:     sellers,
		workers:     cfg.Workers,
		queue:       make(chan provisionTask, cfg.QueueSize),
		provisioned: provisioned,
	}
}

// Start launches the workers. They stop when Close drains the queue.
func (p *Provisioner) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.queue {
				taskCtx, span := p.tracer.Start(context.WithoutCancel(ctx), "Provisioner.Task",
					trace.WithLinks(task.link))
				p.Provision(taskCtx, task.requestID)
				span.End()
			}
		}()
	}
	p.logger.InfoContext(ctx, "Seller provisioner started", slog.Int("workers", p.workers))
}

// Close stops accepting tasks, waits for queued tasks to finish and closes
// subscriber channels.
func (p *Provisioner) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
	p.mu.Unlock()
}

// Subscribe returns a channel receiving every result from now on. Results are
// dropped for a subscriber whose buffer is full.
func (p *Provisioner) Subscribe(buffer int) <-chan ProvisionResult {
	ch := make(chan ProvisionResult, buffer)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch
	}
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// Enqueue queues provisioning for an approved request. It never blocks and
// never fails the caller; a task that cannot be queued is reported as failed.
func (p *Provisioner) Enqueue(ctx context.Context, requestID string) {
	task := provisionTask{
		requestID: requestID,
		link:      trace.Link{SpanContext: trace.SpanContextFromContext(ctx)},
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.report(ctx, ProvisionResult{RequestID: requestID, Outcome: ProvisionFailed, Err: ErrProvisionerStopped})
		return
	}
	select {
	case p.queue <- task:
		p.mu.Unlock()
		p.logger.DebugContext(ctx, "Seller provisioning queued", slog.String("seller_request_id", requestID))
	default:
		p.mu.Unlock()
		p.report(ctx, ProvisionResult{RequestID: requestID, Outcome: ProvisionFailed, Err: ErrProvisionQueueFull})
	}
}

// Provision runs one provisioning task synchronously: it re-reads the stored
// request and ensures an approved seller exists for its email.
func (p *Provisioner) Provision(ctx context.Context, requestID string) ProvisionResult {
	ctx, span := p.tracer.Start(ctx, "Provisioner.Provision")
	defer span.End()

	span.SetAttributes(attribute.String("seller_request.id", requestID))

	result := p.provision(ctx, requestID)
	span.SetAttributes(attribute.String("provision.outcome", string(result.Outcome)))
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "Seller provisioning failed")
	} else {
		span.SetStatus(codes.Ok, "Seller provisioning finished")
	}

	p.report(ctx, result)
	return result
}

func (p *Provisioner) provision(ctx context.Context, requestID string) ProvisionResult {
	result := ProvisionResult{RequestID: requestID}

	req, err := p.requests.FindByID(ctx, requestID)
	if err != nil {
		result.Outcome, result.Err = ProvisionFailed, err
		return result
	}
	if req.Status != domain.SellerRequestApproved || req.Email == "" {
		result.Outcome = ProvisionSkipped
		return result
	}

	seller, created, err := p.sellers.EnsureSeller(ctx, SellerProvision{
		Name:  req.ProvisionedSellerName(),
		Email: req.Email,
		Phone: valueOf(req.Phone),
		Metadata: domain.Metadata{
			StoreName: req.Metadata.StoreName,
			Source:    domain.SourceSellerRequest,
			RequestID: req.ID,
		},
	})
	if err != nil {
		result.Outcome, result.Err = ProvisionFailed, err
		return result
	}

	result.SellerID = seller.ID
	result.Outcome = ProvisionExists
	if created {
		result.Outcome = ProvisionCreated
	}
	return result
}

func (p *Provisioner) report(ctx context.Context, result ProvisionResult) {
	p.provisioned.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))

	attrs := []any{
		slog.String("seller_request_id", result.RequestID),
		slog.String("outcome", string(result.Outcome)),
	}
	if result.SellerID != "" {
		attrs = append(attrs, slog.String("seller_id", result.SellerID))
	}

	if result.Err != nil {
		attrs = append(attrs, slog.String("error", result.Err.Error()))
		p.logger.ErrorContext(ctx, "Seller provisioning failed", attrs...)
		p.publish(ctx, domain.NewEvent(domain.EventSellerProvisionFailed, "seller_request", result.RequestID, map[string]any{
			"error": result.Err.Error(),
		}))
	} else {
		p.logger.InfoContext(ctx, "Seller provisioning finished", attrs...)
		if result.Outcome == ProvisionCreated {
			p.publish(ctx, domain.NewEvent(domain.EventSellerProvisioned, "seller_request", result.RequestID, map[string]any{
				"seller_id": result.SellerID,
			}))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subscribers {
		select {
		case ch <- result:
		default:
			p.logger.WarnContext(ctx, "Dropped provisioning result for slow subscriber",
				slog.String("seller_request_id", result.RequestID))
		}
	}
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
