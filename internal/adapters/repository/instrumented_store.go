package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// InstrumentedStore records metrics and debug logs around another store
type InstrumentedStore struct {
	next     ports.TaskStore
	logger   *logger.Logger
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewInstrumentedStore wraps next and registers its collectors with reg
func NewInstrumentedStore(next ports.TaskStore, reg prometheus.Registerer, logger *logger.Logger) *InstrumentedStore {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklist_store_operations_total",
			Help: "Total number of task store operations",
		},
		[]string{"operation", "result"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklist_store_operation_duration_seconds",
			Help:    "Task store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	reg.MustRegister(ops, duration)

	return &InstrumentedStore{
		next:     next,
		logger:   logger.WithComponent("store"),
		ops:      ops,
		duration: duration,
	}
}

var (
	_ ports.TaskStore   = (*InstrumentedStore)(nil)
	_ ports.Initializer = (*InstrumentedStore)(nil)
)

// Init forwards to the wrapped store when it needs initialization
func (s *InstrumentedStore) Init(ctx context.Context) error {
	initializer, ok := s.next.(ports.Initializer)
	if !ok {
		return nil
	}
	start := time.Now()
	err := initializer.Init(ctx)
	s.observe("init", start, err)
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context) ([]entities.Task, error) {
	start := time.Now()
	tasks, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return tasks, err
}

func (s *InstrumentedStore) Save(ctx context.Context, tasks []entities.Task) error {
	start := time.Now()
	err := s.next.Save(ctx, tasks)
	s.observe("save", start, err)
	return err
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) {
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = "error"
	}

	s.ops.WithLabelValues(operation, result).Inc()
	s.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	s.logger.LogStoreOperation(operation, elapsed, err)
}
