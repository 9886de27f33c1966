package cert

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
)

// Fingerprint 计算对端证书摘要并写入调用方缓冲区
// algo 支持 "sha1" 与 "sha256"，大小写不敏感；
// 摘要超过缓冲区长度时静默截断，返回实际写入的字节数
func Fingerprint(sess Session, algo string, buf []byte) (int, error) {
	n, err := fingerprint(sess, algo, buf)

	label := strings.ToLower(algo)
	if label != "sha1" && label != "sha256" {
		label = "invalid"
	}
	if err != nil {
		recordFingerprint(label, string(CodeOf(err)))
		return 0, err
	}
	recordFingerprint(label, "ok")
	return n, nil
}

func fingerprint(sess Session, algo string, buf []byte) (int, error) {
	if sess == nil || !sess.Connected() {
		return 0, NewError(CodeNotConnected, "not connected")
	}

	peer := sess.PeerCertificate()
	if peer == nil {
		return 0, NewError(CodeNoPeerCert, "peer does not have cert")
	}

	var h hash.Hash
	switch strings.ToLower(algo) {
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return 0, NewError(CodeUnsupportedAlgorithm, "invalid fingerprint algorithm")
	}

	// 摘要先落在固定大小的临时缓冲区，拷贝后整体清零
	var scratch [sha256.Size]byte
	h.Write(peer.RawDER())
	digest := h.Sum(scratch[:0])

	n := copy(buf, digest)
	zeroize(scratch[:])
	return n, nil
}

// FingerprintHex 返回 "<算法>:<十六进制>" 形式的指纹字符串
func FingerprintHex(sess Session, algo string) (string, error) {
	buf := make([]byte, sha256.Size)
	n, err := Fingerprint(sess, algo, buf)
	if err != nil {
		return "", err
	}
	return strings.ToLower(algo) + ":" + hex.EncodeToString(buf[:n]), nil
}

// zeroize 清除临时摘要内容
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
