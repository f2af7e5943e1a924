package runner

// 注册全部检查
import (
	_ "atlas-checks/internal/checks/areas"
	_ "atlas-checks/internal/checks/intersections"
	_ "atlas-checks/internal/checks/linear"
	_ "atlas-checks/internal/checks/points"
	_ "atlas-checks/internal/checks/relations"
	_ "atlas-checks/internal/checks/tag"
)
