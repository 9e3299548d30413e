// Package dispatch fans one composed batch out to a worker pool, tracks each
// message through its lifecycle and exposes job status, cancellation and
// retry. State lives in memory; redis holds best-effort snapshots and
// elasticsearch the delivery log.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/common/metrics"
	"card-dispatch/internal/common/observability"
	"card-dispatch/internal/composer"
	"card-dispatch/internal/guests"
	"card-dispatch/internal/transport"
)

// Options tunes the orchestrator. Mirror and Log are optional; a nil value
// disables that sink.
type Options struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	Mirror      *RedisMirror
	Log         *DeliveryLog
}

type task struct {
	job *job
	msg *message
}

// Orchestrator runs the dispatch worker pool.
type Orchestrator struct {
	registry *transport.Registry
	log      logger.Logger
	obs      *observability.Observability
	opts     Options

	mu   sync.RWMutex
	jobs map[string]*job

	queue chan task
	quit  chan struct{}
	wg    sync.WaitGroup
}

func NewOrchestrator(registry *transport.Registry, log logger.Logger, obs *observability.Observability, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	return &Orchestrator{
		registry: registry,
		log:      log.WithFields(map[string]interface{}{"component": "dispatch-orchestrator"}),
		obs:      obs,
		opts:     opts,
		jobs:     make(map[string]*job),
		queue:    make(chan task, opts.QueueSize),
		quit:     make(chan struct{}),
	}
}

// Start launches the worker pool.
func (o *Orchestrator) Start() {
	for i := 0; i < o.opts.Workers; i++ {
		o.wg.Add(1)
		go o.worker()
	}
	o.log.Info("dispatch workers started", map[string]interface{}{
		"workers":   o.opts.Workers,
		"queueSize": o.opts.QueueSize,
	})
}

// Stop drains the pool. Messages already claimed finish; unclaimed pending
// messages stay pending until the process exits.
func (o *Orchestrator) Stop() {
	close(o.quit)
	o.wg.Wait()
}

// Submit validates and composes the batch, creates the job and enqueues one
// task per recipient. Validation failures reject the whole batch before any
// message is queued.
func (o *Orchestrator) Submit(ctx context.Context, req composer.Request, recipients []guests.Guest) (string, error) {
	if _, ok := o.registry.For(req.Channel); !ok {
		return "", apperrors.NewNoChannelError()
	}

	artifacts, err := composer.Compose(req, recipients)
	if err != nil {
		return "", err
	}

	j := &job{
		id:        uuid.New().String(),
		channel:   req.Channel,
		request:   req,
		createdAt: time.Now().UTC(),
	}
	for _, g := range recipients {
		j.messages = append(j.messages, &message{
			id:        uuid.New().String(),
			guest:     g,
			to:        contactFor(g, req.Channel),
			rendered:  artifacts[g.ID],
			state:     StatePending,
			updatedAt: j.createdAt,
		})
	}

	o.mu.Lock()
	o.jobs[j.id] = j
	o.mu.Unlock()

	metrics.JobsActive.Inc()
	o.log.Info("dispatch job submitted", map[string]interface{}{
		"jobId":      j.id,
		"channel":    string(j.channel),
		"recipients": len(j.messages),
	})
	o.snapshot(j)

	// Enqueue off the caller's goroutine so a full queue never blocks the
	// submit path. Cancelled messages are skipped at claim time.
	go func() {
		for _, m := range j.messages {
			select {
			case o.queue <- task{job: j, msg: m}:
			case <-o.quit:
				return
			}
		}
	}()

	return j.id, nil
}

// Status returns the current summary of a job.
func (o *Orchestrator) Status(jobID string) (Summary, error) {
	j, ok := o.lookup(jobID)
	if !ok {
		return Summary{}, apperrors.NewJobNotFoundError(jobID)
	}
	return j.summary(), nil
}

// Cancel moves every not-yet-claimed pending message to cancelled. Messages
// a worker already claimed are past the point of no return and keep going.
func (o *Orchestrator) Cancel(jobID string) (Summary, error) {
	j, ok := o.lookup(jobID)
	if !ok {
		return Summary{}, apperrors.NewJobNotFoundError(jobID)
	}

	cancelled, done := j.cancelPending()
	if cancelled > 0 {
		metrics.MessagesCancelled.WithLabelValues(string(j.channel)).Add(float64(cancelled))
	}
	o.log.Info("dispatch job cancel requested", map[string]interface{}{
		"jobId":     jobID,
		"cancelled": cancelled,
	})
	if done {
		o.jobDone(j)
	}
	o.snapshot(j)
	return j.summary(), nil
}

// RetryFailed spawns a fresh job covering only the failed recipients of a
// finished or partially finished job. The original job is left untouched.
func (o *Orchestrator) RetryFailed(ctx context.Context, jobID string) (string, error) {
	j, ok := o.lookup(jobID)
	if !ok {
		return "", apperrors.NewJobNotFoundError(jobID)
	}

	failed := j.failedGuests()
	if len(failed) == 0 {
		return "", apperrors.NewNoRecipientsError(string(j.channel))
	}

	o.log.Info("retrying failed recipients", map[string]interface{}{
		"jobId":  jobID,
		"failed": len(failed),
	})
	return o.Submit(ctx, j.request, failed)
}

func (o *Orchestrator) lookup(jobID string) (*job, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	j, ok := o.jobs[jobID]
	return j, ok
}

func (o *Orchestrator) worker() {
	defer o.wg.Done()
	for {
		select {
		case <-o.quit:
			return
		case t := <-o.queue:
			o.process(t)
		}
	}
}

func (o *Orchestrator) process(t task) {
	if !t.job.claim(t.msg) {
		return
	}

	tr, ok := o.registry.For(t.job.channel)
	if !ok {
		o.complete(t, StateFailed, "no transport registered", string(apperrors.ErrCodeTransportSendFailed), "")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.opts.SendTimeout)
	defer cancel()

	start := time.Now()
	providerID, err := tr.Send(ctx, transport.Message{
		Channel: t.job.channel,
		To:      t.msg.to,
		Subject: t.msg.rendered.Subject,
		Body:    t.msg.rendered.Body,
		HTML:    t.msg.rendered.HTML,
	})
	o.obs.RecordSendDuration(ctx, time.Since(start), string(t.job.channel))

	if err != nil {
		code := string(apperrors.ErrCodeTransportSendFailed)
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			code = string(stdErr.Code)
		}
		o.complete(t, StateFailed, err.Error(), code, "")
		return
	}
	o.complete(t, StateSent, "", "", providerID)
}

// complete applies the terminal transition and fans the result out to
// metrics, the snapshot mirror and the delivery log.
func (o *Orchestrator) complete(t task, state State, errMsg, errCode, providerID string) {
	done := t.job.finish(t.msg, state, errMsg, errCode, providerID)
	channel := string(t.job.channel)

	ctx := context.Background()
	switch state {
	case StateSent:
		metrics.MessagesSent.WithLabelValues(channel).Inc()
		o.obs.RecordMessage(ctx, channel, string(StateSent))
	case StateFailed:
		metrics.MessagesFailed.WithLabelValues(channel, errCode).Inc()
		o.obs.RecordMessage(ctx, channel, string(StateFailed))
		o.log.Warn("message delivery failed", map[string]interface{}{
			"jobId":     t.job.id,
			"messageId": t.msg.id,
			"errorCode": errCode,
			"error":     errMsg,
		})
	}

	o.recordDelivery(t)
	if done {
		o.jobDone(t.job)
		o.snapshot(t.job)
	}
}

// jobDone emits the job-level wrap-up once every message is terminal.
func (o *Orchestrator) jobDone(j *job) {
	s := j.summary()
	metrics.JobsActive.Dec()
	if s.CompletedAt != nil {
		metrics.DispatchDuration.WithLabelValues(string(j.channel)).
			Observe(s.CompletedAt.Sub(s.CreatedAt).Seconds())
	}

	fields := map[string]interface{}{
		"jobId":     s.JobID,
		"sent":      s.Sent,
		"failed":    s.Failed,
		"cancelled": s.Cancelled,
	}
	if s.PartialDelivery {
		o.log.WithError(apperrors.NewPartialDeliveryError(s.Sent, s.Failed)).
			Warn("dispatch job finished with partial delivery", fields)
		return
	}
	o.log.Info("dispatch job finished", fields)
}

func (o *Orchestrator) snapshot(j *job) {
	if o.opts.Mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := o.opts.Mirror.Save(ctx, j.summary()); err != nil {
		o.log.Warn("job snapshot write failed", map[string]interface{}{
			"jobId": j.id,
			"error": err,
		})
	}
}

func (o *Orchestrator) recordDelivery(t task) {
	if o.opts.Log == nil {
		return
	}
	s := t.job.summaryOf(t.msg)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := o.opts.Log.Record(ctx, t.job.id, s); err != nil {
		o.log.Warn("delivery log write failed", map[string]interface{}{
			"jobId":     t.job.id,
			"messageId": s.ID,
			"error":     err,
		})
	}
}

func contactFor(g guests.Guest, channel guests.Channel) string {
	if channel == guests.ChannelEmail {
		return g.Email
	}
	return g.Phone
}
