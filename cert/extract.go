package cert

import "strings"

// Extract 提取对端证书元数据
// 按固定顺序装载 subject、issuer、备用名称、有效期、序列号；
// 任一字段失败则整体失败，不返回部分结果
func Extract(sess Session) (*CertInfo, error) {
	info, err := extract(sess)
	if err != nil {
		recordExtraction(string(CodeOf(err)))
		return nil, err
	}

	recordExtraction("ok")
	for _, an := range info.AltNames {
		recordAltName(an.Type.String())
	}
	return info, nil
}

func extract(sess Session) (*CertInfo, error) {
	if sess == nil || !sess.Connected() {
		return nil, NewError(CodeNotConnected, "not connected")
	}

	peer := sess.PeerCertificate()
	if peer == nil {
		return nil, NewError(CodeNoPeerCert, "peer does not have cert")
	}

	version := peer.Version()
	if version < 0 {
		return nil, NewError(CodeInvalidVersion, "invalid version")
	}

	subject := peer.Subject()
	if subject == nil {
		return nil, NewError(CodeMissingIdentity, "cert does not have subject")
	}

	issuer := peer.Issuer()
	if issuer == nil {
		return nil, NewError(CodeMissingIdentity, "cert does not have issuer")
	}

	info := &CertInfo{Version: version}

	if err := loadEntity(subject, &info.Subject); err != nil {
		return nil, err
	}
	if err := loadEntity(issuer, &info.Issuer); err != nil {
		return nil, err
	}

	if der, ok := peer.AltNameDER(); ok {
		altNames, err := parseAltNames(der)
		if err != nil {
			return nil, err
		}
		info.AltNames = altNames
	}

	var err error
	if info.NotBefore, err = parseTime(peer.NotBeforeRaw()); err != nil {
		return nil, err
	}
	if info.NotAfter, err = parseTime(peer.NotAfterRaw()); err != nil {
		return nil, err
	}
	if info.Serial, err = parseSerial(peer.SerialBytes()); err != nil {
		return nil, err
	}

	return info, nil
}

// loadEntity 从名称句柄装载主体属性
// 不存在的属性保持空串，属性值含 NUL 字节时整体拒绝
func loadEntity(name DName, ent *Entity) error {
	fields := []struct {
		attr Attr
		dst  *string
	}{
		{AttrCommonName, &ent.CommonName},
		{AttrCountry, &ent.Country},
		{AttrStateOrProvince, &ent.StateOrProvince},
		{AttrLocality, &ent.Locality},
		{AttrStreetAddress, &ent.StreetAddress},
		{AttrOrganization, &ent.Organization},
		{AttrOrganizationalUnit, &ent.OrganizationalUnit},
	}

	for _, f := range fields {
		v, ok := name.Text(f.attr)
		if !ok {
			continue
		}
		if strings.IndexByte(v, 0) >= 0 {
			return NewError(CodeCorruptValue, "corrupt cert - NUL bytes in value")
		}
		*f.dst = v
	}
	return nil
}
