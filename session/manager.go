package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/houzhh15/peercert-common/cert"
	"github.com/houzhh15/peercert-common/logging"
)

// PeerSession 一条按证书建立的对端会话
type PeerSession struct {
	Token       string         `json:"token"`
	Fingerprint string         `json:"fingerprint"`
	Info        *cert.CertInfo `json:"cert_info"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
}

// Manager 对端会话管理器
type Manager struct {
	sessions      map[string]*PeerSession // token -> session
	byFingerprint map[string][]string     // fingerprint -> tokens（同一证书允许多条会话）
	mu            sync.RWMutex

	tokenTTL        time.Duration
	cleanupInterval time.Duration
	algo            string
	logger          logging.Logger
	stopChan        chan struct{}
}

// Config 管理器配置
type Config struct {
	TokenTTL        time.Duration // Token 有效期，默认 3600s
	CleanupInterval time.Duration // 清理间隔，默认 300s (5分钟)
	Algorithm       string        // 指纹算法，默认 sha256
}

// NewManager 创建对端会话管理器
func NewManager(cfg *Config, logger logging.Logger) *Manager {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 3600 * time.Second // 默认 1 小时
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 300 * time.Second // 默认 5 分钟
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "sha256"
	}

	return &Manager{
		sessions:        make(map[string]*PeerSession),
		byFingerprint:   make(map[string][]string),
		tokenTTL:        cfg.TokenTTL,
		cleanupInterval: cfg.CleanupInterval,
		algo:            cfg.Algorithm,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Track 从 TLS 会话提取证书元数据并建立对端会话
// 证书任一字段非法时整体拒绝，不建立会话
func (m *Manager) Track(ctx context.Context, sess cert.Session) (*PeerSession, error) {
	info, err := cert.Extract(sess)
	if err != nil {
		return nil, fmt.Errorf("extract peer cert: %w", err)
	}

	fingerprint, err := cert.FingerprintHex(sess, m.algo)
	if err != nil {
		return nil, fmt.Errorf("fingerprint peer cert: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token failed: %w", err)
	}

	now := time.Now()
	ps := &PeerSession{
		Token:       token,
		Fingerprint: fingerprint,
		Info:        info,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.tokenTTL),
		LastSeenAt:  now,
	}

	m.mu.Lock()
	m.sessions[token] = ps
	m.byFingerprint[fingerprint] = append(m.byFingerprint[fingerprint], token)
	m.mu.Unlock()

	m.logger.Debug("Peer session created",
		"token", token,
		"fingerprint", fingerprint,
		"subject_cn", info.Subject.CommonName,
		"expires_at", ps.ExpiresAt.Format(time.RFC3339),
	)

	return ps, nil
}

// Validate 验证会话并更新最后访问时间
func (m *Manager) Validate(ctx context.Context, token string) (*PeerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ps, ok := m.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}

	// 检查过期
	if time.Now().After(ps.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	ps.LastSeenAt = time.Now()

	return ps, nil
}

// Refresh 刷新会话，延长过期时间
func (m *Manager) Refresh(ctx context.Context, token string) (*PeerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ps, ok := m.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}

	// 检查过期
	if time.Now().After(ps.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	ps.ExpiresAt = time.Now().Add(m.tokenTTL)
	ps.LastSeenAt = time.Now()

	m.logger.Debug("Peer session refreshed",
		"token", token,
		"fingerprint", ps.Fingerprint,
		"expires_at", ps.ExpiresAt.Format(time.RFC3339),
	)

	return ps, nil
}

// Revoke 撤销会话
func (m *Manager) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ps, ok := m.sessions[token]
	if !ok {
		return fmt.Errorf("session not found")
	}

	delete(m.sessions, token)

	// 从指纹索引中移除
	if tokens, exists := m.byFingerprint[ps.Fingerprint]; exists {
		newTokens := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if t != token {
				newTokens = append(newTokens, t)
			}
		}
		if len(newTokens) > 0 {
			m.byFingerprint[ps.Fingerprint] = newTokens
		} else {
			delete(m.byFingerprint, ps.Fingerprint)
		}
	}

	m.logger.Info("Peer session revoked",
		"token", token,
		"fingerprint", ps.Fingerprint,
	)

	return nil
}

// ActiveSessions 获取所有未过期会话
func (m *Manager) ActiveSessions(ctx context.Context) ([]*PeerSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	sessions := make([]*PeerSession, 0, len(m.sessions))

	for _, ps := range m.sessions {
		if now.Before(ps.ExpiresAt) {
			sessions = append(sessions, ps)
		}
	}

	return sessions, nil
}

// SessionsByFingerprint 获取同一证书指纹下的所有会话
func (m *Manager) SessionsByFingerprint(ctx context.Context, fingerprint string) ([]*PeerSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens, ok := m.byFingerprint[fingerprint]
	if !ok {
		return nil, nil
	}

	sessions := make([]*PeerSession, 0, len(tokens))
	now := time.Now()

	for _, token := range tokens {
		if ps, exists := m.sessions[token]; exists {
			if now.Before(ps.ExpiresAt) {
				sessions = append(sessions, ps)
			}
		}
	}

	return sessions, nil
}

// StartCleanup 启动定期清理
func (m *Manager) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	m.logger.Info("Session cleanup started",
		"interval", m.cleanupInterval.String(),
	)

	for {
		select {
		case <-ticker.C:
			m.cleanExpired()
		case <-ctx.Done():
			m.logger.Info("Session cleanup stopped (context done)")
			return
		case <-m.stopChan:
			m.logger.Info("Session cleanup stopped (manual)")
			return
		}
	}
}

// StopCleanup 停止清理
func (m *Manager) StopCleanup() {
	close(m.stopChan)
}

// cleanExpired 清理过期会话
func (m *Manager) cleanExpired() {
	now := time.Now()
	expiredTokens := make([]string, 0)

	m.mu.RLock()
	for token, ps := range m.sessions {
		if now.After(ps.ExpiresAt) {
			expiredTokens = append(expiredTokens, token)
		}
	}
	m.mu.RUnlock()

	if len(expiredTokens) == 0 {
		return
	}

	// 移除过期会话
	m.mu.Lock()
	for _, token := range expiredTokens {
		if ps, ok := m.sessions[token]; ok {
			delete(m.sessions, token)

			if tokens, exists := m.byFingerprint[ps.Fingerprint]; exists {
				newTokens := make([]string, 0, len(tokens))
				for _, t := range tokens {
					if t != token {
						newTokens = append(newTokens, t)
					}
				}
				if len(newTokens) > 0 {
					m.byFingerprint[ps.Fingerprint] = newTokens
				} else {
					delete(m.byFingerprint, ps.Fingerprint)
				}
			}
		}
	}
	m.mu.Unlock()

	m.logger.Info("Cleaned up expired sessions",
		"count", len(expiredTokens),
	)
}

// GetStats 获取统计信息
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	activeCount := 0
	expiredCount := 0
	now := time.Now()

	for _, ps := range m.sessions {
		if now.Before(ps.ExpiresAt) {
			activeCount++
		} else {
			expiredCount++
		}
	}

	return map[string]interface{}{
		"total":        len(m.sessions),
		"active":       activeCount,
		"expired":      expiredCount,
		"fingerprints": len(m.byFingerprint),
	}
}
