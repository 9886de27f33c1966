package logging

import "time"

// ExtractionEvent 提取事件
// 用于记录对端证书元数据提取的结果
type ExtractionEvent struct {
	Timestamp         time.Time              `json:"timestamp"`
	Fingerprint       string                 `json:"fingerprint,omitempty"`
	SubjectCommonName string                 `json:"subject_common_name,omitempty"`
	Result            string                 `json:"result"` // "success", "rejected"
	Reason            string                 `json:"reason,omitempty"`
	Details           map[string]interface{} `json:"details,omitempty"`
}

// SecurityEvent 安全事件
// 用于记录证书相关的异常和告警
type SecurityEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Fingerprint string                 `json:"fingerprint,omitempty"`
	EventType   SecurityEventType      `json:"event_type"`
	Severity    Severity               `json:"severity"` // "low", "medium", "high", "critical"
	Message     string                 `json:"message"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SecurityEventType 安全事件类型
type SecurityEventType string

const (
	EventCertCorruptValue    SecurityEventType = "cert_corrupt_value"
	EventCertInvalidAltName  SecurityEventType = "cert_invalid_alt_name"
	EventCertInvalidTime     SecurityEventType = "cert_invalid_time"
	EventCertBadSerial       SecurityEventType = "cert_bad_serial"
	EventCertMissingIdentity SecurityEventType = "cert_missing_identity"
	EventCertInvalidVersion  SecurityEventType = "cert_invalid_version"
	EventCertRevoked         SecurityEventType = "cert_revoked"
	EventBadFingerprintAlgo  SecurityEventType = "fingerprint_algorithm_rejected"
)

// Severity 严重程度
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AuditFilter 审计日志查询过滤器
type AuditFilter struct {
	Fingerprint string            `json:"fingerprint,omitempty"`
	Result      string            `json:"result,omitempty"`
	EventType   SecurityEventType `json:"event_type,omitempty"`
	Severity    Severity          `json:"severity,omitempty"`
	StartTime   time.Time         `json:"start_time,omitempty"`
	EndTime     time.Time         `json:"end_time,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// AuditLog 审计日志记录
// 通用审计日志结构，可以包含任意类型的事件
type AuditLog struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	EventType string                 `json:"event_type"` // "extraction", "security"
	Data      interface{}            `json:"data"`
	Indexed   map[string]interface{} `json:"indexed,omitempty"` // 用于快速查询的索引字段
}
