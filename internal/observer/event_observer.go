package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// IngestEvent describes one lifecycle event in document processing.
type IngestEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	FileName       string                 `json:"file_name"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of ingestion event
type EventType string

const (
	// DocumentStarted when processing of a document begins
	DocumentStarted EventType = "document_started"
	// DocumentCompleted when processing finishes successfully
	DocumentCompleted EventType = "document_completed"
	// DocumentFailed when processing fails
	DocumentFailed EventType = "document_failed"
	// PageFailed when a single page fails but processing continues
	PageFailed EventType = "page_failed"
	// TierEscalated when local OCR was rejected and vision was invoked
	TierEscalated EventType = "tier_escalated"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event IngestEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event IngestEvent)
}

// LoggingObserver logs ingestion events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles ingestion events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event IngestEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"file_name":       event.FileName,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case DocumentStarted:
		o.logger.WithFields(fields).Info("Document processing started")
	case DocumentCompleted:
		o.logger.WithFields(fields).Info("Document processing completed")
	case DocumentFailed:
		o.logger.WithFields(fields).Error("Document processing failed")
	case PageFailed:
		o.logger.WithFields(fields).Warn("Page processing failed")
	case TierEscalated:
		o.logger.WithFields(fields).Debug("Escalated to vision tier")
	default:
		o.logger.WithFields(fields).Info("Ingestion event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from ingestion events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalDocuments      int64
	successfulDocuments int64
	failedDocuments     int64
	failedPages         int64
	escalations         int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles ingestion events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event IngestEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case DocumentStarted:
		o.totalDocuments++
	case DocumentCompleted:
		o.successfulDocuments++
		o.totalProcessingTime += event.ProcessingTime
	case DocumentFailed:
		o.failedDocuments++
	case PageFailed:
		o.failedPages++
	case TierEscalated:
		o.escalations++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulDocuments > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulDocuments)
	}

	return map[string]interface{}{
		"total_documents":       o.totalDocuments,
		"successful_documents":  o.successfulDocuments,
		"failed_documents":      o.failedDocuments,
		"failed_pages":          o.failedPages,
		"tier_escalations":      o.escalations,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event IngestEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
