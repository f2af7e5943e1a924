// 包 resolver：按国家定位图文件
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern 相对根目录的匹配模式；{country} 替换为国家代码
const DefaultPattern = "{country}/**/*.geojson"

// Resolve：返回 国家 → 图文件路径（含 root 前缀，升序）
// 约束：countries 为空时取 root 下名称为三位大写字母的目录；没有文件的国家不出现在结果中
func Resolve(root, pattern string, countries []string) (map[string][]string, error) {
	return ResolveFS(os.DirFS(root), root, pattern, countries)
}

// ResolveFS 与 Resolve 相同，但在给定文件系统上匹配
func ResolveFS(fsys fs.FS, root, pattern string, countries []string) (map[string][]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if len(countries) == 0 {
		found, err := CountryDirs(fsys)
		if err != nil {
			return nil, err
		}
		countries = found
	}
	out := map[string][]string{}
	for _, c := range countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		p := strings.ReplaceAll(pattern, "{country}", c)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("resolver: invalid pattern %q", p)
		}
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("resolver: glob %s: %w", p, err)
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		for i, m := range matches {
			matches[i] = join(root, m)
		}
		out[c] = matches
	}
	return out, nil
}

// CountryDirs 根目录下的国家目录（ISO3 大写），升序
func CountryDirs(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("resolver: read root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && isISO3(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func isISO3(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func join(root, rel string) string {
	if root == "" || root == "." {
		return rel
	}
	return strings.TrimSuffix(root, "/") + "/" + rel
}

// Countries 结果中的国家，升序
func Countries(resolved map[string][]string) []string {
	out := make([]string, 0, len(resolved))
	for c := range resolved {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
