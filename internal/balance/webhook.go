package balance

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/baely/balance/pkg/model"
	"github.com/go-chi/chi/v5"

	"github.com/baely/caffeine/internal/common/errors"
	commonHttp "github.com/baely/caffeine/internal/common/http"
)

// handlerTimeout bounds a single handler's work on one transaction
const handlerTimeout = 30 * time.Second

const (
	defaultQueueSize = 100
	maxBodyBytes     = 1 << 20
)

// WebhookService handles webhook events from Up Banking
type WebhookService struct {
	upClient            transactionSource
	secret              string
	rawChan             chan []byte
	router              chi.Router
	mu                  sync.RWMutex
	transactionHandlers []TransactionEventHandler
	logger              *slog.Logger
	done                chan struct{}
	stopOnce            sync.Once
}

// Config contains configuration for the WebhookService
type Config struct {
	UpAccessToken string
	WebhookSecret string
	QueueSize     int // buffered webhook bodies, 100 when zero
	Logger        *slog.Logger
}

// NewWithConfig creates a new WebhookService and starts its processor
func NewWithConfig(cfg *Config) *WebhookService {
	s := newService(cfg, NewUpClient(cfg.UpAccessToken))
	go s.processEvents()
	return s
}

// newService builds the service without starting its processor
func newService(cfg *Config, source transactionSource) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WebhookSecret == "" {
		logger.Warn("No Up webhook secret configured, all webhooks will be rejected")
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	service := &WebhookService{
		upClient: source,
		secret:   cfg.WebhookSecret,
		rawChan:  make(chan []byte, queueSize),
		logger:   logger,
		done:     make(chan struct{}),
	}

	r := commonHttp.NewRouter()
	r.Post("/up/event", service.handleWebhook)
	r.Post("/event", service.handleWebhook)
	service.router = r

	return service
}

// Chi returns the router for this service
func (s *WebhookService) Chi() chi.Router {
	return s.router
}

// RegisterHandler registers a handler for transaction events
func (s *WebhookService) RegisterHandler(handler TransactionEventHandler) {
	s.logger.Info("Registering transaction handler", "handler", handler)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactionHandlers = append(s.transactionHandlers, handler)
}

// Stop stops the event processor. Queued events are dropped.
func (s *WebhookService) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// handleWebhook processes incoming webhook requests
func (s *WebhookService) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("Webhook body too large", "limit", tooLarge.Limit)
			commonHttp.Error(w, errors.Invalid("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.logger.Error("Failed to read request body", "error", err)
		commonHttp.Error(w, errors.Wrap(err, "failed to read request body"), http.StatusInternalServerError)
		return
	}

	signature := r.Header.Get("X-Up-Authenticity-Signature")
	if !ValidateWebhookEvent(body, signature, s.secret) {
		s.logger.Warn("Invalid webhook signature", "signature", signature)
		commonHttp.Error(w, errors.ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	select {
	case s.rawChan <- body:
	default:
		s.logger.Error("Webhook queue full, dropping event")
		commonHttp.Error(w, errors.Wrap(errors.ErrInternal, "queue full"), http.StatusServiceUnavailable)
		return
	}

	// Return success immediately
	commonHttp.Success(w, map[string]string{"status": "accepted"})
}

// processEvents listens for events and processes them asynchronously
func (s *WebhookService) processEvents() {
	s.logger.Info("Starting webhook event processor")
	for {
		select {
		case raw := <-s.rawChan:
			s.processEvent(raw)
		case <-s.done:
			s.logger.Info("Stopping webhook event processor")
			return
		}
	}
}

// processEvent handles a single event
func (s *WebhookService) processEvent(raw []byte) {
	ctx := context.Background()
	event, err := parseEvent(raw)
	if err != nil {
		s.logger.Error("Failed to parse webhook event", "error", err)
		return
	}
	s.logger.Info("Processing event", "type", event.Data.Type, "id", event.Data.Id)

	eventTransaction := event.Data.Relationships.Transaction
	if eventTransaction == nil {
		s.logger.Warn("Event contains no transaction details")
		return
	}

	transaction, err := s.upClient.GetTransaction(ctx, eventTransaction.Data.Id)
	if err != nil {
		s.logger.Error("Failed to retrieve transaction", "id", eventTransaction.Data.Id, "error", err)
		return
	}

	accountID := transaction.Relationships.Account.Data.Id
	account, err := s.upClient.GetAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to retrieve account", "id", accountID, "error", err)
		return
	}

	data := TransactionEvent{
		Account:     account,
		Transaction: transaction,
	}

	s.mu.RLock()
	handlers := append([]TransactionEventHandler(nil), s.transactionHandlers...)
	s.mu.RUnlock()

	for _, handler := range handlers {
		go func(h TransactionEventHandler, d TransactionEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			if err := h.HandleEvent(ctx, d); err != nil {
				s.logger.Error("Handler failed to process event", "handler", h, "error", err)
			}
		}(handler, data)
	}
}

// parseEvent converts JSON data to a webhook event
func parseEvent(value []byte) (model.WebhookEventCallback, error) {
	event := model.WebhookEventCallback{}
	err := json.Unmarshal(value, &event)
	return event, err
}
