package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-portfolio/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的非负整数 id；非法时按路由不匹配处理 (404)
func pathID(c *gin.Context, key string) (int64, error) {
	v, err := strconv.ParseUint(c.Param(key), 10, 63)
	if err != nil {
		return 0, retcode.New(retcode.NotFound, "Not Found")
	}
	return int64(v), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// optString 字符串/数字/布尔统一转为文本；缺失或 null 为 nil
func optString(field string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		s = n.String()
		return &s, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		s = strconv.FormatBool(b)
		return &s, nil
	}
	return nil, fmt.Errorf("%s: cannot convert %s to text", field, string(raw))
}

// optInt 数字或数字字符串转为整数；缺失或 null 为 nil
func optInt(field string, raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	text := strings.TrimSpace(string(raw))
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = strings.TrimSpace(s)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &i, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		i := int64(f)
		return &i, nil
	}
	return nil, fmt.Errorf("%s: cannot convert %s to integer", field, string(raw))
}
