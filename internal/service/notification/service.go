package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

var ErrQueueFull = errors.New("notification queue is full")

// Sender delivers a single approval notification.
type Sender interface {
	SendSalaryApproved(ctx context.Context, event payroll.SalaryApprovedEvent) error
}

// Config holds notification dispatcher configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	SendTimeout time.Duration // default: 30 seconds
}

// Dispatcher queues salary approval events and delivers them on background
// workers so approvals never wait on SMTP.
type Dispatcher struct {
	sender Sender
	config Config

	queue    chan payroll.SalaryApprovedEvent
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(sender Sender, cfg Config) *Dispatcher {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	d := &Dispatcher{
		sender: sender,
		config: cfg,
		queue:  make(chan payroll.SalaryApprovedEvent, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("Notification dispatcher started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)

	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.deliver(id, event)
		case <-d.stopCh:
			// drain what is already queued
			for {
				select {
				case event := <-d.queue:
					d.deliver(id, event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(workerID int, event payroll.SalaryApprovedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
	defer cancel()

	if err := d.sender.SendSalaryApproved(ctx, event); err != nil {
		slog.Error("Failed to deliver salary notification",
			"worker", workerID,
			"employee_id", event.EmployeeID,
			"month", event.Month,
			"year", event.Year,
			"error", err,
		)
		return
	}
	slog.Debug("Salary notification delivered", "worker", workerID, "employee_id", event.EmployeeID)
}

// NotifySalaryApproved enqueues the event. It never blocks: a full queue
// returns ErrQueueFull and the event is dropped.
func (d *Dispatcher) NotifySalaryApproved(ctx context.Context, event payroll.SalaryApprovedEvent) error {
	select {
	case <-d.stopCh:
		return ErrQueueFull
	default:
	}

	select {
	case d.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("Notification queue full, dropping salary notification", "employee_id", event.EmployeeID)
		return ErrQueueFull
	}
}

// Stop signals the workers, delivers whatever is still queued, and waits.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	d.wg.Wait()
	slog.Info("Notification dispatcher stopped")
}
