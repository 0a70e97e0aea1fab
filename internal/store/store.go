package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-authgate/authbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// auditBatchSize bounds rows per INSERT when writing audit batches.
const auditBatchSize = 100

type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the audit schema.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		// Every new connection to :memory: is a separate empty database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(&models.AuditLog{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// CreateAuditLog writes a single audit entry.
func (s *Store) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

// CreateAuditLogBatch writes audit entries in chunks.
func (s *Store) CreateAuditLogBatch(ctx context.Context, logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(logs, auditBatchSize).Error
}

// DeleteOldAuditLogs removes entries created before cutoff.
func (s *Store) DeleteOldAuditLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// GetAuditLogsPaginated returns a page of audit entries, newest first.
func (s *Store) GetAuditLogsPaginated(
	ctx context.Context,
	params PaginationParams,
	filters AuditLogFilters,
) ([]models.AuditLog, PaginationResult, error) {
	query := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditLog{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var logs []models.AuditLog
	offset := (params.Page - 1) * params.PageSize
	if err := query.
		Order("event_time DESC").
		Offset(offset).
		Limit(params.PageSize).
		Find(&logs).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	return logs, CalculatePagination(total, params.Page, params.PageSize), nil
}

// GetAuditLogStats aggregates events in [startTime, endTime].
func (s *Store) GetAuditLogStats(
	ctx context.Context,
	startTime, endTime time.Time,
) (AuditLogStats, error) {
	stats := AuditLogStats{
		EventsByType:   make(map[models.EventType]int64),
		EventsByReason: make(map[string]int64),
	}

	base := func() *gorm.DB {
		return applyAuditFilters(
			s.db.WithContext(ctx).Model(&models.AuditLog{}),
			AuditLogFilters{StartTime: startTime, EndTime: endTime},
		)
	}

	if err := base().Count(&stats.TotalEvents).Error; err != nil {
		return stats, err
	}
	if err := base().Where("success = ?", true).Count(&stats.SuccessCount).Error; err != nil {
		return stats, err
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	var byType []struct {
		EventType models.EventType
		Count     int64
	}
	if err := base().
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&byType).Error; err != nil {
		return stats, err
	}
	for _, row := range byType {
		stats.EventsByType[row.EventType] = row.Count
	}

	var byReason []struct {
		Reason string
		Count  int64
	}
	if err := base().
		Select("reason, COUNT(*) AS count").
		Where("reason <> ''").
		Group("reason").
		Scan(&byReason).Error; err != nil {
		return stats, err
	}
	for _, row := range byReason {
		stats.EventsByReason[row.Reason] = row.Count
	}

	return stats, nil
}

func applyAuditFilters(query *gorm.DB, f AuditLogFilters) *gorm.DB {
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.Username != "" {
		query = query.Where("username = ?", f.Username)
	}
	if f.Method != "" {
		query = query.Where("method = ?", f.Method)
	}
	if f.Reason != "" {
		query = query.Where("reason = ?", f.Reason)
	}
	if f.Success != nil {
		query = query.Where("success = ?", *f.Success)
	}
	if !f.StartTime.IsZero() {
		query = query.Where("event_time >= ?", f.StartTime)
	}
	if !f.EndTime.IsZero() {
		query = query.Where("event_time <= ?", f.EndTime)
	}
	if f.ClientIP != "" {
		query = query.Where("client_ip = ?", f.ClientIP)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("username LIKE ? OR error_message LIKE ?", like, like)
	}
	return query
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}
