package cert

import (
	"errors"
	"fmt"
)

// Code 证书处理错误码
type Code string

const (
	CodeNotConnected         Code = "not_connected"         // 会话未完成握手
	CodeNoPeerCert           Code = "no_peer_certificate"   // 对端未提供证书
	CodeMissingIdentity      Code = "missing_identity"      // 证书缺少 subject 或 issuer
	CodeInvalidVersion       Code = "invalid_version"       // 证书版本号非法
	CodeCorruptValue         Code = "corrupt_value"         // 名称属性包含 NUL 字节
	CodeInvalidAltName       Code = "invalid_alt_name"      // 备用名称条目非法
	CodeInvalidTime          Code = "invalid_time"          // 有效期时间无法解析
	CodeSerialDecodeFailed   Code = "serial_decode_failed"  // 序列号无法解析
	CodeUnsupportedAlgorithm Code = "unsupported_algorithm" // 不支持的指纹算法
	CodeOutOfMemory          Code = "out_of_memory"         // 外部证书源内存不足
)

// Error 证书处理错误
// Message 在首个失败点生成，后续不再覆盖
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewError 创建新错误
func NewError(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf 创建带格式化消息的错误
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf 提取错误携带的错误码，非本包错误返回空串
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
