package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/models"
	"github.com/go-authgate/authbridge/internal/store"
	"github.com/go-authgate/authbridge/internal/util"

	"github.com/google/uuid"
)

var _ core.AuditLogger = (*AuditService)(nil)

// auditBatchSize is the number of buffered entries that forces a flush.
const auditBatchSize = 100

// AuditLogEntry represents the data needed to create a non-login audit entry
type AuditLogEntry struct {
	EventType    models.EventType
	Severity     models.EventSeverity
	Username     string
	ClientIP     string
	UserAgent    string
	RequestID    string
	Details      models.AuditDetails
	Success      bool
	ErrorMessage string
}

// AuditService handles audit logging operations
type AuditService struct {
	store      *store.Store
	enabled    bool
	bufferSize int

	// Async logging channel
	logChan chan *models.AuditLog

	// Batch buffer
	batchBuffer []*models.AuditLog
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	// Graceful shutdown
	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewAuditService creates a new audit service
func NewAuditService(s *store.Store, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000 // Default buffer size
	}
	enabled = enabled && s != nil

	service := &AuditService{
		store:       s,
		enabled:     enabled,
		bufferSize:  bufferSize,
		logChan:     make(chan *models.AuditLog, bufferSize),
		batchBuffer: make([]*models.AuditLog, 0, auditBatchSize),
		batchTicker: time.NewTicker(1 * time.Second),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		logger.Infof("Audit service started with buffer size %d", bufferSize)
	} else {
		service.batchTicker.Stop()
		logger.Infof("Audit service is disabled")
	}

	return service
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s.enabled
}

// worker is the background goroutine that processes audit logs
func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.logChan:
			s.addToBatch(entry)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain what is already queued, then flush.
			for {
				select {
				case entry := <-s.logChan:
					s.addToBatch(entry)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

// addToBatch adds a log entry to the batch buffer
func (s *AuditService) addToBatch(entry *models.AuditLog) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, entry)

	if len(s.batchBuffer) >= auditBatchSize {
		s.flushBatchUnsafe()
	}
}

// flushBatch flushes the batch buffer to the database (thread-safe)
func (s *AuditService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe flushes the batch buffer without locking (caller must hold lock)
func (s *AuditService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.AuditLog, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.CreateAuditLogBatch(ctx, toWrite); err != nil {
		logger.Errorf("Failed to write audit log batch: %v", err)
	}
}

// enqueue sends an entry to the worker without blocking the request.
func (s *AuditService) enqueue(entry *models.AuditLog) {
	select {
	case s.logChan <- entry:
	default:
		logger.Warnf("Audit log buffer full, dropping event: %s", entry.EventType)
	}
}

// LogAuthentication records a login attempt asynchronously.
func (s *AuditService) LogAuthentication(ctx context.Context, event core.AuditEvent) {
	if !s.enabled || event.Result == nil {
		return
	}
	s.enqueue(buildLoginAuditLog(ctx, event))
}

func buildLoginAuditLog(ctx context.Context, event core.AuditEvent) *models.AuditLog {
	result := event.Result
	if event.ClientIP == "" {
		event.ClientIP = util.GetIPFromContext(ctx)
	}

	now := time.Now()
	entry := &models.AuditLog{
		ID:         uuid.New().String(),
		EventType:  models.EventLoginSucceeded,
		EventTime:  now,
		Severity:   models.SeverityInfo,
		Method:     string(result.Method),
		Username:   truncate(event.Username, 255),
		Success:    result.Success(),
		DurationMs: result.Duration.Milliseconds(),
		ClientIP:   event.ClientIP,
		UserAgent:  truncate(event.UserAgent, 500),
		RequestID:  event.RequestID,
		CreatedAt:  now,
	}

	if result.Identity != nil {
		entry.FederatedArn = result.Identity.Arn
	}
	if result.Token != nil && result.Token.HasExpiry() {
		entry.Details = models.AuditDetails{"token_expires_at": result.Token.ExpiresAt.UTC()}
	}

	if f := result.Failure; f != nil {
		entry.EventType = models.EventLoginFailed
		entry.Severity = severityFor(f.Reason)
		entry.Stage = string(f.Stage)
		entry.Reason = string(f.Reason)
		if f.Err != nil {
			entry.ErrorMessage = strings.ToValidUTF8(f.Err.Error(), "")
		}
	}
	return entry
}

func severityFor(reason core.ErrorKind) models.EventSeverity {
	switch reason {
	case core.DirectoryUnavailable, core.CertificateUnavailable,
		core.TokenEndpointDown, core.FederationFailed:
		return models.SeverityError
	case core.RequestCanceled:
		return models.SeverityInfo
	default:
		return models.SeverityWarning
	}
}

// truncate drops invalid UTF-8 and cuts s to at most n bytes on a rune
// boundary. Text columns in Postgres reject invalid sequences.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Log records a non-login audit entry asynchronously
func (s *AuditService) Log(ctx context.Context, entry AuditLogEntry) {
	if !s.enabled {
		return
	}

	if entry.ClientIP == "" || entry.RequestID == "" {
		info := util.RequestInfoFromContext(ctx)
		if entry.ClientIP == "" {
			entry.ClientIP = info.ClientIP
		}
		if entry.UserAgent == "" {
			entry.UserAgent = info.UserAgent
		}
		if entry.RequestID == "" {
			entry.RequestID = info.RequestID
		}
	}

	now := time.Now()
	s.enqueue(&models.AuditLog{
		ID:           uuid.New().String(),
		EventType:    entry.EventType,
		EventTime:    now,
		Severity:     entry.Severity,
		Username:     entry.Username,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
		Details:      maskSensitiveDetails(entry.Details),
		ClientIP:     entry.ClientIP,
		UserAgent:    truncate(entry.UserAgent, 500),
		RequestID:    entry.RequestID,
		CreatedAt:    now,
	})
}

// GetAuditLogs retrieves audit logs with pagination and filtering
func (s *AuditService) GetAuditLogs(
	ctx context.Context,
	params store.PaginationParams,
	filters store.AuditLogFilters,
) ([]models.AuditLog, store.PaginationResult, error) {
	return s.store.GetAuditLogsPaginated(ctx, params, filters)
}

// GetAuditLogStats returns statistics about audit logs
func (s *AuditService) GetAuditLogStats(
	ctx context.Context,
	startTime, endTime time.Time,
) (store.AuditLogStats, error) {
	return s.store.GetAuditLogStats(ctx, startTime, endTime)
}

// CleanupOldLogs deletes audit logs older than the retention period
func (s *AuditService) CleanupOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	if !s.enabled {
		return 0, nil
	}
	return s.store.DeleteOldAuditLogs(ctx, time.Now().Add(-retention))
}

// Shutdown gracefully shuts down the audit service
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.shutdownOnce.Do(func() {
		s.batchTicker.Stop()
		close(s.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Infof("Audit service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timeout: %w", ctx.Err())
	}
}

// maskSensitiveDetails masks sensitive information in audit log details
func maskSensitiveDetails(details models.AuditDetails) models.AuditDetails {
	if details == nil {
		return details
	}

	masked := make(models.AuditDetails)
	for key, value := range details {
		if isSensitiveField(key) {
			masked[key] = "***REDACTED***"
			continue
		}
		masked[key] = value
	}
	return masked
}

// isSensitiveField checks if a field should be completely masked
func isSensitiveField(key string) bool {
	key = strings.ToLower(key)
	for _, field := range []string{
		"password",
		"secret",
		"access_token",
		"assertion",
		"private_key",
	} {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}
