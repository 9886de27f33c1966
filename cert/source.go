package cert

// Attr 证书主体名称的属性类别
type Attr int

const (
	AttrCommonName Attr = iota
	AttrCountry
	AttrStateOrProvince
	AttrLocality
	AttrStreetAddress
	AttrOrganization
	AttrOrganizationalUnit
)

// DName 证书主体名称（distinguished name）句柄
type DName interface {
	// Text 返回属性的首个取值，第二个返回值表示属性是否存在
	Text(attr Attr) (string, bool)
}

// Source 单张证书的查询句柄
// 由调用方适配具体的证书实现，内置适配见 session 包
type Source interface {
	// Version 以 1 起始的 X.509 版本号
	Version() int

	// Subject 证书主体名称，nil 表示证书没有 subject
	Subject() DName

	// Issuer 签发者名称，nil 表示证书没有 issuer
	Issuer() DName

	// NotBeforeRaw 有效期起始的文本形式
	// 格式与 OpenSSL ASN1_TIME_print 一致："Aug 18 20:51:52 2015 GMT"
	NotBeforeRaw() string

	// NotAfterRaw 有效期截止的文本形式，格式同 NotBeforeRaw
	NotAfterRaw() string

	// SerialBytes 序列号的大端字节
	SerialBytes() []byte

	// AltNameDER subjectAltName 扩展的原始 DER，第二个返回值表示扩展是否存在
	AltNameDER() ([]byte, bool)

	// RawDER 证书的规范 DER 编码，用于指纹计算
	RawDER() []byte
}

// Session 对端会话句柄
type Session interface {
	// Connected 会话是否已完成握手
	Connected() bool

	// PeerCertificate 对端叶证书，nil 表示对端未提供证书
	PeerCertificate() Source
}
