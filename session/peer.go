package session

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"

	"github.com/houzhh15/peercert-common/cert"
)

// oidSubjectAltName subjectAltName 扩展的 OID (2.5.29.17)
var oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

// attrOIDs 名称属性到 X.500 OID 的映射
var attrOIDs = map[cert.Attr]asn1.ObjectIdentifier{
	cert.AttrCommonName:         {2, 5, 4, 3},
	cert.AttrCountry:            {2, 5, 4, 6},
	cert.AttrStateOrProvince:    {2, 5, 4, 8},
	cert.AttrLocality:           {2, 5, 4, 7},
	cert.AttrStreetAddress:      {2, 5, 4, 9},
	cert.AttrOrganization:       {2, 5, 4, 10},
	cert.AttrOrganizationalUnit: {2, 5, 4, 11},
}

// timeLayout ASN1_TIME_print 风格的时间格式，单数字日以空格补齐
const timeLayout = "Jan _2 15:04:05 2006"

// Peer 把 TLS 连接状态适配成证书会话句柄
type Peer struct {
	state *tls.ConnectionState
}

// NewPeer 从连接状态创建会话句柄
func NewPeer(state *tls.ConnectionState) *Peer {
	return &Peer{state: state}
}

// PeerFromConn 从 TLS 连接创建会话句柄
// conn 为 nil 时返回未连接状态的句柄
func PeerFromConn(conn *tls.Conn) *Peer {
	if conn == nil {
		return &Peer{}
	}
	state := conn.ConnectionState()
	return &Peer{state: &state}
}

// Connected 握手完成后才视为已连接
func (p *Peer) Connected() bool {
	return p.state != nil && p.state.HandshakeComplete
}

// PeerCertificate 返回对端证书链的叶子证书，未提供证书时返回 nil
func (p *Peer) PeerCertificate() cert.Source {
	if p.state == nil || len(p.state.PeerCertificates) == 0 {
		return nil
	}
	return NewX509Source(p.state.PeerCertificates[0])
}

// X509Source 把标准库解析的证书适配成证书句柄
type X509Source struct {
	c *x509.Certificate
}

// NewX509Source 包装一份已解析的证书
func NewX509Source(c *x509.Certificate) *X509Source {
	return &X509Source{c: c}
}

func (s *X509Source) Version() int {
	return s.c.Version
}

func (s *X509Source) Subject() cert.DName {
	return &dname{name: s.c.Subject}
}

func (s *X509Source) Issuer() cert.DName {
	return &dname{name: s.c.Issuer}
}

func (s *X509Source) NotBeforeRaw() string {
	return s.c.NotBefore.UTC().Format(timeLayout) + " GMT"
}

func (s *X509Source) NotAfterRaw() string {
	return s.c.NotAfter.UTC().Format(timeLayout) + " GMT"
}

// SerialBytes 返回序列号的大端字节，零值序列号返回单个零字节
func (s *X509Source) SerialBytes() []byte {
	if s.c.SerialNumber == nil {
		return nil
	}
	b := s.c.SerialNumber.Bytes()
	if len(b) == 0 {
		return []byte{0}
	}
	return b
}

// AltNameDER 返回 subjectAltName 扩展的原始 DER 值
func (s *X509Source) AltNameDER() ([]byte, bool) {
	for _, ext := range s.c.Extensions {
		if ext.Id.Equal(oidSubjectAltName) {
			return ext.Value, true
		}
	}
	return nil, false
}

func (s *X509Source) RawDER() []byte {
	return s.c.Raw
}

// dname 把 pkix.Name 适配成名称句柄
type dname struct {
	name pkix.Name
}

// Text 按属性查找名称中的首个匹配值
// 遍历解析出的全部属性而不是 pkix.Name 的便捷字段，以区分缺失和空值
func (d *dname) Text(attr cert.Attr) (string, bool) {
	oid, ok := attrOIDs[attr]
	if !ok {
		return "", false
	}
	for _, atv := range d.name.Names {
		if !atv.Type.Equal(oid) {
			continue
		}
		if v, ok := atv.Value.(string); ok {
			return v, true
		}
		return "", false
	}
	return "", false
}
