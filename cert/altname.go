package cert

import (
	"bytes"
	"net"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralName CHOICE 的 context-specific tag（RFC 5280 4.2.1.6）
const (
	tagEmail = 1 // rfc822Name
	tagDNS   = 2 // dNSName
	tagURI   = 6 // uniformResourceIdentifier
	tagIP    = 7 // iPAddress
)

// parseAltNames 解析 subjectAltName 扩展值中的 GeneralNames 序列
// 条目按出现顺序返回；otherName、directoryName 等未支持的类型
// 以及非原始编码的文本条目静默跳过
func parseAltNames(der []byte) ([]AltName, error) {
	outer := cryptobyte.String(der)
	var names cryptobyte.String
	if !outer.ReadASN1(&names, cbasn1.SEQUENCE) || !outer.Empty() {
		return nil, NewError(CodeInvalidAltName, "invalid alt name encoding")
	}

	var res []AltName
	for !names.Empty() {
		var entry cryptobyte.String
		var tag cbasn1.Tag
		if !names.ReadAnyASN1(&entry, &tag) {
			return nil, NewError(CodeInvalidAltName, "invalid alt name encoding")
		}

		var an AltName
		var err error
		switch tag {
		case cbasn1.Tag(tagEmail).ContextSpecific():
			an, err = textAltName(entry, AltNameEmail)
		case cbasn1.Tag(tagDNS).ContextSpecific():
			an, err = textAltName(entry, AltNameDNS)
		case cbasn1.Tag(tagURI).ContextSpecific():
			an, err = textAltName(entry, AltNameURI)
		case cbasn1.Tag(tagIP).ContextSpecific():
			an, err = ipAltName(entry)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, an)
	}

	return res, nil
}

// textAltName 装载文本类备用名称
// RFC 5280 4.2.1.6 禁止空名称；" " 是合法域名但必须拒绝
func textAltName(data cryptobyte.String, typ AltNameType) (AltName, error) {
	if len(data) == 0 || bytes.IndexByte(data, 0) >= 0 {
		return AltName{}, NewError(CodeInvalidAltName, "invalid string value")
	}
	if len(data) == 1 && data[0] == ' ' {
		return AltName{}, NewError(CodeInvalidAltName, "single space as name")
	}
	return AltName{Type: typ, Name: string(data)}, nil
}

// ipAltName 装载地址类备用名称
// RFC 5280 4.2.1.6 要求 IPv4 为 4 字节、IPv6 为 16 字节
func ipAltName(data cryptobyte.String) (AltName, error) {
	switch len(data) {
	case net.IPv4len:
		return AltName{Type: AltNameIPv4, IP: net.IP(bytes.Clone(data))}, nil
	case net.IPv6len:
		return AltName{Type: AltNameIPv6, IP: net.IP(bytes.Clone(data))}, nil
	default:
		return AltName{}, NewError(CodeInvalidAltName, "invalid length for ipaddress")
	}
}
