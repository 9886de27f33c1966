package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/houzhh15/peercert-common/cert"
)

// mockLogger 测试用的空日志器
type mockLogger struct{}

func (l *mockLogger) Debug(msg string, fields ...interface{}) {}
func (l *mockLogger) Info(msg string, fields ...interface{})  {}
func (l *mockLogger) Warn(msg string, fields ...interface{})  {}
func (l *mockLogger) Error(msg string, fields ...interface{}) {}

// setupTestRegistry 创建基于内存数据库的注册表
func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r, err := NewRegistry(db, 16, &mockLogger{})
	require.NoError(t, err)
	return r
}

// sampleInfo 构造一份提取结果
func sampleInfo(cn string) *cert.CertInfo {
	return &cert.CertInfo{
		Subject:   cert.Entity{CommonName: cn, Organization: "Acme Corp"},
		Issuer:    cert.Entity{CommonName: "Acme Root CA"},
		Version:   3,
		Serial:    "4294967296",
		NotBefore: "2024-01-01T00:00:00Z",
		NotAfter:  "2034-01-01T00:00:00Z",
		AltNames: []cert.AltName{
			{Type: cert.AltNameDNS, Name: cn},
		},
	}
}

// TestNewRegistryRequiresDB 测试数据库为空时报错
func TestNewRegistryRequiresDB(t *testing.T) {
	_, err := NewRegistry(nil, 0, nil)
	assert.Error(t, err)
}

// TestObserveAndGet 测试观测记录的创建与查询
func TestObserveAndGet(t *testing.T) {
	r := setupTestRegistry(t)
	fp := "sha256:aa01"

	require.NoError(t, r.Observe(fp, sampleInfo("client.test")))

	rec, err := r.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, fp, rec.Fingerprint)
	assert.Equal(t, "client.test", rec.SubjectCommonName)
	assert.Equal(t, "Acme Root CA", rec.IssuerCommonName)
	assert.Equal(t, "4294967296", rec.SerialNumber)
	assert.Equal(t, "2024-01-01T00:00:00Z", rec.NotBefore)
	assert.Equal(t, 1, rec.AltNameCount)
	assert.Equal(t, string(StatusObserved), rec.Status)
	assert.EqualValues(t, 1, rec.SightingCount)
	assert.False(t, rec.FirstSeenAt.IsZero())

	// 重复观测累加计数并刷新元数据
	info := sampleInfo("client.test")
	info.Serial = "1337"
	require.NoError(t, r.Observe(fp, info))

	rec, err = r.Get(fp)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rec.SightingCount)
	assert.Equal(t, "1337", rec.SerialNumber)
	assert.False(t, rec.LastSeenAt.Before(rec.FirstSeenAt))
}

// TestObserveValidation 测试入参校验
func TestObserveValidation(t *testing.T) {
	r := setupTestRegistry(t)

	assert.Error(t, r.Observe("", sampleInfo("x")))
	assert.Error(t, r.Observe("sha256:aa02", nil))
}

// TestGetNotFound 测试未知指纹
func TestGetNotFound(t *testing.T) {
	r := setupTestRegistry(t)

	_, err := r.Get("sha256:unknown")
	assert.ErrorContains(t, err, "not found")

	_, err = r.Get("")
	assert.Error(t, err)
}

// TestGetReturnsCopy 测试查询结果与缓存隔离
func TestGetReturnsCopy(t *testing.T) {
	r := setupTestRegistry(t)
	fp := "sha256:aa03"
	require.NoError(t, r.Observe(fp, sampleInfo("copy.test")))

	rec1, err := r.Get(fp)
	require.NoError(t, err)
	rec1.SubjectCommonName = "tampered"

	rec2, err := r.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, "copy.test", rec2.SubjectCommonName)
}

// TestPin 测试指纹固定
func TestPin(t *testing.T) {
	r := setupTestRegistry(t)
	fp := "sha256:aa04"
	require.NoError(t, r.Observe(fp, sampleInfo("pin.test")))

	require.NoError(t, r.Pin(fp))

	rec, err := r.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPinned), rec.Status)
	require.NotNil(t, rec.PinnedAt)

	assert.NoError(t, r.CheckPin(fp))

	assert.ErrorContains(t, r.Pin("sha256:unknown"), "not found")
}

// TestRevoke 测试指纹吊销
func TestRevoke(t *testing.T) {
	r := setupTestRegistry(t)
	fp := "sha256:aa05"
	require.NoError(t, r.Observe(fp, sampleInfo("revoke.test")))

	require.NoError(t, r.Revoke(fp, "key compromised"))

	rec, err := r.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, string(StatusRevoked), rec.Status)
	require.NotNil(t, rec.RevokedAt)
	assert.Equal(t, "key compromised", rec.RevokeReason)

	// 吊销后不可固定
	assert.ErrorContains(t, r.Pin(fp), "revoked")

	assert.ErrorContains(t, r.Revoke("sha256:unknown", "x"), "not found")
}

// TestCheckPinStates 测试各状态下的固定校验
func TestCheckPinStates(t *testing.T) {
	r := setupTestRegistry(t)

	observed := "sha256:bb01"
	pinned := "sha256:bb02"
	revoked := "sha256:bb03"
	require.NoError(t, r.Observe(observed, sampleInfo("a.test")))
	require.NoError(t, r.Observe(pinned, sampleInfo("b.test")))
	require.NoError(t, r.Observe(revoked, sampleInfo("c.test")))
	require.NoError(t, r.Pin(pinned))
	require.NoError(t, r.Revoke(revoked, "rotation"))

	assert.ErrorContains(t, r.CheckPin(observed), "not pinned")
	assert.NoError(t, r.CheckPin(pinned))
	assert.ErrorContains(t, r.CheckPin(revoked), "revoked")
	assert.ErrorContains(t, r.CheckPin("sha256:unknown"), "not found")
}

// TestList 测试分页列表
func TestList(t *testing.T) {
	r := setupTestRegistry(t)

	require.NoError(t, r.Observe("sha256:cc01", sampleInfo("a.test")))
	require.NoError(t, r.Observe("sha256:cc02", sampleInfo("b.test")))
	require.NoError(t, r.Observe("sha256:cc03", sampleInfo("c.test")))
	require.NoError(t, r.Pin("sha256:cc03"))

	records, total, err := r.List(1, 10, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, records, 3)

	records, total, err = r.List(1, 10, StatusObserved)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, records, 2)

	// 分页
	records, total, err = r.List(1, 2, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, records, 2)

	records, _, err = r.List(2, 2, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestPurgeUnseen 测试清理长期未观测的记录
func TestPurgeUnseen(t *testing.T) {
	r := setupTestRegistry(t)

	stale := "sha256:dd01"
	fresh := "sha256:dd02"
	pinnedStale := "sha256:dd03"
	require.NoError(t, r.Observe(stale, sampleInfo("stale.test")))
	require.NoError(t, r.Observe(fresh, sampleInfo("fresh.test")))
	require.NoError(t, r.Observe(pinnedStale, sampleInfo("pinned.test")))
	require.NoError(t, r.Pin(pinnedStale))

	// 把两条记录的观测时间改到一天前
	old := time.Now().Add(-24 * time.Hour)
	for _, fp := range []string{stale, pinnedStale} {
		err := r.db.Model(&Record{}).Where("fingerprint = ?", fp).
			Update("last_seen_at", old).Error
		require.NoError(t, err)
	}

	count, err := r.PurgeUnseen(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = r.Get(stale)
	assert.ErrorContains(t, err, "not found")

	// 新近观测和已固定的记录保留
	_, err = r.Get(fresh)
	assert.NoError(t, err)
	_, err = r.Get(pinnedStale)
	assert.NoError(t, err)
}
