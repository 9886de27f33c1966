package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/houzhh15/peercert-common/cert"
	"github.com/houzhh15/peercert-common/logging"
)

// Status 证书记录状态
type Status string

const (
	StatusObserved Status = "observed" // 观测到但未固定
	StatusPinned   Status = "pinned"   // 已固定
	StatusRevoked  Status = "revoked"  // 已吊销
)

// Record 数据库中的对端证书记录
type Record struct {
	ID                uint   `gorm:"primaryKey"`
	Fingerprint       string `gorm:"uniqueIndex;not null"`
	SubjectCommonName string `gorm:"index"`
	IssuerCommonName  string
	SerialNumber      string
	NotBefore         string
	NotAfter          string
	AltNameCount      int
	Status            string `gorm:"default:'observed'"`
	PinnedAt          *time.Time
	RevokedAt         *time.Time
	RevokeReason      string
	FirstSeenAt       time.Time
	LastSeenAt        time.Time
	SightingCount     int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定表名
func (Record) TableName() string {
	return "peer_cert_records"
}

// Registry 对端证书注册表（数据库支持，带 LRU 读缓存）
type Registry struct {
	db     *gorm.DB
	logger logging.Logger
	mu     sync.RWMutex
	cache  *lru.Cache[string, *Record]
}

// NewRegistry 创建证书注册表
func NewRegistry(db *gorm.DB, cacheSize int, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}

	cache, err := lru.New[string, *Record](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	registry := &Registry{
		db:     db,
		logger: logger,
		cache:  cache,
	}

	// 自动迁移表结构
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate peer_cert_records table: %w", err)
	}

	return registry, nil
}

// Observe 记录一次证书观测
// 首次观测创建记录，重复观测累加计数并刷新元数据
func (r *Registry) Observe(fingerprint string, info *cert.CertInfo) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}
	if info == nil {
		return errors.New("cert info is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var record Record
	result := r.db.Where("fingerprint = ?", fingerprint).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		now := time.Now()
		record = Record{
			Fingerprint:       fingerprint,
			SubjectCommonName: info.Subject.CommonName,
			IssuerCommonName:  info.Issuer.CommonName,
			SerialNumber:      info.Serial,
			NotBefore:         info.NotBefore,
			NotAfter:          info.NotAfter,
			AltNameCount:      len(info.AltNames),
			Status:            string(StatusObserved),
			FirstSeenAt:       now,
			LastSeenAt:        now,
			SightingCount:     1,
		}

		if err := r.db.Create(&record).Error; err != nil {
			if r.logger != nil {
				r.logger.Error("Failed to record certificate", "fingerprint", fingerprint, "error", err)
			}
			return fmt.Errorf("failed to record certificate: %w", err)
		}

		r.cache.Remove(fingerprint)

		if r.logger != nil {
			r.logger.Info("Certificate observed",
				"fingerprint", fingerprint,
				"subject_cn", info.Subject.CommonName,
				"serial", info.Serial,
			)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to query certificate: %w", result.Error)
	}

	updates := map[string]interface{}{
		"last_seen_at":        time.Now(),
		"sighting_count":      gorm.Expr("sighting_count + 1"),
		"subject_common_name": info.Subject.CommonName,
		"issuer_common_name":  info.Issuer.CommonName,
		"serial_number":       info.Serial,
		"not_before":          info.NotBefore,
		"not_after":           info.NotAfter,
		"alt_name_count":      len(info.AltNames),
	}
	if err := r.db.Model(&Record{}).Where("fingerprint = ?", fingerprint).Updates(updates).Error; err != nil {
		if r.logger != nil {
			r.logger.Error("Failed to update certificate", "fingerprint", fingerprint, "error", err)
		}
		return fmt.Errorf("failed to update certificate: %w", err)
	}

	r.cache.Remove(fingerprint)

	return nil
}

// Get 按指纹查询记录
func (r *Registry) Get(fingerprint string) (*Record, error) {
	if fingerprint == "" {
		return nil, errors.New("fingerprint is required")
	}

	// 返回副本，避免调用方改动缓存条目
	if rec, ok := r.cache.Get(fingerprint); ok {
		cp := *rec
		return &cp, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var record Record
	result := r.db.Where("fingerprint = ?", fingerprint).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certificate not found: %s", fingerprint)
		}
		return nil, fmt.Errorf("failed to query certificate: %w", result.Error)
	}

	r.cache.Add(fingerprint, &record)

	cp := record
	return &cp, nil
}

// Pin 固定证书指纹
func (r *Registry) Pin(fingerprint string) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var record Record
	result := r.db.Where("fingerprint = ?", fingerprint).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("certificate not found: %s", fingerprint)
		}
		return fmt.Errorf("failed to query certificate: %w", result.Error)
	}

	if record.Status == string(StatusRevoked) {
		return fmt.Errorf("cannot pin revoked certificate: %s", fingerprint)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":    string(StatusPinned),
		"pinned_at": &now,
	}
	if err := r.db.Model(&Record{}).Where("fingerprint = ?", fingerprint).Updates(updates).Error; err != nil {
		if r.logger != nil {
			r.logger.Error("Failed to pin certificate", "fingerprint", fingerprint, "error", err)
		}
		return fmt.Errorf("failed to pin certificate: %w", err)
	}

	r.cache.Remove(fingerprint)

	if r.logger != nil {
		r.logger.Info("Certificate pinned", "fingerprint", fingerprint)
	}

	return nil
}

// Revoke 吊销证书指纹
func (r *Registry) Revoke(fingerprint, reason string) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	result := r.db.Model(&Record{}).
		Where("fingerprint = ?", fingerprint).
		Updates(map[string]interface{}{
			"status":        string(StatusRevoked),
			"revoked_at":    &now,
			"revoke_reason": reason,
		})

	if result.Error != nil {
		if r.logger != nil {
			r.logger.Error("Failed to revoke certificate", "fingerprint", fingerprint, "error", result.Error)
		}
		return fmt.Errorf("failed to revoke certificate: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("certificate not found: %s", fingerprint)
	}

	r.cache.Remove(fingerprint)

	if r.logger != nil {
		r.logger.Info("Certificate revoked", "fingerprint", fingerprint, "reason", reason)
	}

	return nil
}

// CheckPin 校验指纹是否已固定且未吊销
func (r *Registry) CheckPin(fingerprint string) error {
	record, err := r.Get(fingerprint)
	if err != nil {
		return err
	}

	switch Status(record.Status) {
	case StatusRevoked:
		return fmt.Errorf("certificate has been revoked: %s", fingerprint)
	case StatusPinned:
		return nil
	default:
		return fmt.Errorf("certificate is not pinned: %s", fingerprint)
	}
}

// List 列出证书记录（分页）
func (r *Registry) List(page, pageSize int, status Status) ([]*Record, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	query := r.db.Model(&Record{})

	// 状态过滤
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	// 分页查询
	var records []Record
	offset := (page - 1) * pageSize
	result := query.Offset(offset).Limit(pageSize).Find(&records)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list certificates: %w", result.Error)
	}

	out := make([]*Record, len(records))
	for i := range records {
		out[i] = &records[i]
	}

	return out, total, nil
}

// PurgeUnseen 删除指定时间之前未再观测到的普通记录
// 已固定和已吊销的记录不受影响
func (r *Registry) PurgeUnseen(since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := r.db.
		Where("status = ? AND last_seen_at < ?", string(StatusObserved), since).
		Delete(&Record{})

	if result.Error != nil {
		if r.logger != nil {
			r.logger.Error("Failed to purge stale records", "error", result.Error)
		}
		return 0, fmt.Errorf("failed to purge stale records: %w", result.Error)
	}

	r.cache.Purge()

	if r.logger != nil {
		r.logger.Info("Purged stale certificate records", "count", result.RowsAffected)
	}

	return result.RowsAffected, nil
}
