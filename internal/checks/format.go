package checks

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format：说明模板的占位符替换
// 支持 {n}、{n,number}、{n,number,#}、{n,number,#.##}、{n,number,0.00}；
// 越界或无法解析的占位符原样保留，单引号不做转义处理
func Format(template string, args ...any) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	var sb strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			sb.WriteString(template)
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			sb.WriteString(template)
			break
		}
		end += open
		sb.WriteString(template[:open])
		if s, ok := placeholder(template[open+1:end], args); ok {
			sb.WriteString(s)
		} else {
			sb.WriteString(template[open : end+1])
		}
		template = template[end+1:]
	}
	return sb.String()
}

func placeholder(spec string, args []any) (string, bool) {
	parts := strings.SplitN(spec, ",", 3)
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || idx < 0 || idx >= len(args) {
		return "", false
	}
	arg := args[idx]
	if len(parts) == 1 {
		return formatValue(arg), true
	}
	if strings.TrimSpace(parts[1]) != "number" {
		return formatValue(arg), true
	}
	pattern := ""
	if len(parts) == 3 {
		pattern = strings.TrimSpace(parts[2])
	}
	n, ok := toFloat(arg)
	if !ok {
		return formatValue(arg), true
	}
	return formatNumber(n, pattern), true
}

// formatNumber：# 为可选位、0 为必需位
func formatNumber(n float64, pattern string) string {
	switch pattern {
	case "", "number":
		return trimFloat(n, 3)
	case "integer":
		return strconv.FormatInt(int64(math.Round(n)), 10)
	}
	_, frac, found := strings.Cut(pattern, ".")
	if !found {
		return strconv.FormatInt(int64(math.Round(n)), 10)
	}
	required := strings.Count(frac, "0")
	s := strconv.FormatFloat(n, 'f', len(frac), 64)
	if required == len(frac) {
		return s
	}
	// 去除可选位上的尾随 0
	intPart, fracPart, _ := strings.Cut(s, ".")
	for len(fracPart) > required && strings.HasSuffix(fracPart, "0") {
		fracPart = fracPart[:len(fracPart)-1]
	}
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func trimFloat(n float64, digits int) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	s := strconv.FormatFloat(n, 'f', digits, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return trimFloat(float64(x), 3)
	case float64:
		return trimFloat(x, 3)
	case []int64:
		items := make([]string, len(x))
		for i, id := range x {
			items[i] = strconv.FormatInt(id, 10)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
