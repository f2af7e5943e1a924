// 包 version：构建信息，由 -ldflags "-X atlas-checks/internal/version.Commit=..." 注入
package version

var (
	Commit  = "dev"
	Version = "0.0.0"
)

// String 版本与提交
func String() string { return Version + " (" + Commit + ")" }
