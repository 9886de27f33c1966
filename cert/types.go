package cert

import "net"

// AltNameType 备用名称类型
type AltNameType int

const (
	AltNameDNS   AltNameType = iota + 1 // dNSName
	AltNameEmail                        // rfc822Name
	AltNameURI                          // uniformResourceIdentifier
	AltNameIPv4                         // iPAddress（4 字节）
	AltNameIPv6                         // iPAddress（16 字节）
)

// String 返回类型的小写标识
func (t AltNameType) String() string {
	switch t {
	case AltNameDNS:
		return "dns"
	case AltNameEmail:
		return "email"
	case AltNameURI:
		return "uri"
	case AltNameIPv4:
		return "ipv4"
	case AltNameIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// AltName 证书备用名称（subjectAltName 条目）
// 文本类名称填充 Name，地址类名称填充 IP
type AltName struct {
	Type AltNameType `json:"type"`
	Name string      `json:"name,omitempty"`
	IP   net.IP      `json:"ip,omitempty"` // 原始字节，IPv4 为 4 字节、IPv6 为 16 字节
}

// Entity 证书主体（subject 或 issuer）的属性集合
// 空字符串表示证书中不存在该属性
type Entity struct {
	CommonName         string `json:"common_name,omitempty"`
	Country            string `json:"country,omitempty"`
	StateOrProvince    string `json:"state_or_province,omitempty"`
	Locality           string `json:"locality,omitempty"`
	StreetAddress      string `json:"street_address,omitempty"`
	Organization       string `json:"organization,omitempty"`
	OrganizationalUnit string `json:"organizational_unit,omitempty"`
}

// CertInfo 对端证书元数据
// 仅由成功的提取流程构建，构建后不再修改
type CertInfo struct {
	Subject   Entity    `json:"subject"`
	Issuer    Entity    `json:"issuer"`
	Version   int       `json:"version"`
	Serial    string    `json:"serial"`     // 十进制字符串
	NotBefore string    `json:"not_before"` // ISO-8601 UTC（如 "2015-08-18T20:51:52Z"）
	NotAfter  string    `json:"not_after"`  // ISO-8601 UTC
	AltNames  []AltName `json:"alt_names,omitempty"`
}
