package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename 把客户端提供的文件名转换成可直接落盘的本地文件名。
// 先做 NFKD 分解，带音标的字母退化为 ASCII 基字母；
// 路径分隔符变为 "_"，非 [A-Za-z0-9_.-] 字符被移除，首尾的 "." "_" 去掉，扩展名转小写。
// 结果为空时 ok=false。
func SanitizeFilename(raw string) (name string, ok bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range norm.NFKD.String(raw) {
		if r == 0 || r >= utf8.RuneSelf {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "._")
	if s == "" {
		return "", false
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		s = s[:i] + strings.ToLower(s[i:])
	}
	base := strings.ToUpper(strings.SplitN(s, ".", 2)[0])
	if _, reserved := windowsDeviceNames[base]; reserved {
		s = "_" + s
	}
	return s, true
}

// Ext 返回最后一个 "." 之后的部分（小写），没有 "." 返回空串
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// validName 存储层的最后一道校验：只允许目录内的单段文件名
func validName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.IsLocal(name)
}
