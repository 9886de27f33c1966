package cert

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// months ASN1_TIME_print 输出使用的月份缩写
var months = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// parseTime 将 "Aug 18 20:51:52 2015 GMT" 形式的时间转换为 ISO-8601
// 时区字段可以缺省，存在时必须是 GMT
func parseTime(raw string) (string, error) {
	buf := []byte(raw)

	// "Jan  1" 形式的单数字日补零
	if len(buf) > 4 && buf[3] == ' ' && buf[4] == ' ' {
		buf[4] = '0'
	}

	parts := strings.Split(string(buf), " ")
	if len(parts) != 4 && len(parts) != 5 {
		return "", Errorf(CodeInvalidTime, "invalid time format: no year: %s", raw)
	}
	mon, day, clock, year := parts[0], parts[1], parts[2], parts[3]
	if len(parts) == 5 && parts[4] != "GMT" {
		return "", NewError(CodeInvalidTime, "invalid time format")
	}

	monIdx := -1
	for i, m := range months {
		if mon == m {
			monIdx = i
			break
		}
	}
	if monIdx < 0 {
		return "", NewError(CodeInvalidTime, "invalid time format")
	}

	if len(day) != 2 || !isDigits(day) {
		return "", NewError(CodeInvalidTime, "invalid time format")
	}
	if !isClock(clock) {
		return "", NewError(CodeInvalidTime, "invalid time format")
	}
	if (len(year) != 4 && len(year) != 2) || !isDigits(year) {
		return "", NewError(CodeInvalidTime, "invalid time format")
	}

	return fmt.Sprintf("%s-%02d-%sT%sZ", year, monIdx+1, day, clock), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isClock 校验 HH:MM:SS 形式
func isClock(s string) bool {
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return false
	}
	return isDigits(s[0:2]) && isDigits(s[3:5]) && isDigits(s[6:8])
}

// parseSerial 将序列号的大端字节转换为十进制字符串
// 字节串按无符号数解释，超过 8 字节时走 big.Int 路径
func parseSerial(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", NewError(CodeSerialDecodeFailed, "cannot parse serial")
	}

	if len(raw) <= 8 {
		var v uint64
		for _, b := range raw {
			v = v<<8 | uint64(b)
		}
		return strconv.FormatUint(v, 10), nil
	}

	return new(big.Int).SetBytes(raw).String(), nil
}
