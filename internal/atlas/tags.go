package atlas

import (
	"strconv"
	"strings"
)

// 常用标签键
const (
	TagCountry                 = "iso_country_code"
	TagSyntheticBoundary       = "synthetic_boundary_node"
	TagSyntheticRelationMember = "synthetic_relation_member_added"
	TagHighway                 = "highway"
	TagJunction                = "junction"
	TagOneWay                  = "oneway"
	TagLayer                   = "layer"
	TagBridge                  = "bridge"
	TagTunnel                  = "tunnel"
	TagBuilding                = "building"
	TagBuildingPart            = "building:part"
	TagRoute                   = "route"
	TagManMade                 = "man_made"
	TagArea                    = "area"
	TagAccess                  = "access"
	TagAmenity                 = "amenity"
	TagBarrier                 = "barrier"
	TagLanes                   = "lanes"
	TagName                    = "name"
)

// Tags：OSM 键值标签
type Tags map[string]string

// Value 缺失时返回空串
func (t Tags) Value(key string) string { return t[key] }

func (t Tags) Get(key string) (string, bool) {
	v, ok := t[key]
	return v, ok
}

func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Is：key 存在且取值属于 values 之一（忽略大小写）
func (t Tags) Is(key string, values ...string) bool {
	v, ok := t[key]
	if !ok {
		return false
	}
	for _, want := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// Clone 浅拷贝
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// OneWayValue：oneway 标签语义
type OneWayValue int

const (
	OneWayUnset OneWayValue = iota
	OneWayForward
	OneWayReversed
	OneWayTwoWay
)

// OneWay 解析 oneway 标签
func OneWay(e Entity) OneWayValue {
	v, ok := e.Tags().Get(TagOneWay)
	if !ok {
		return OneWayUnset
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return OneWayForward
	case "-1", "reverse":
		return OneWayReversed
	case "no", "false", "0":
		return OneWayTwoWay
	}
	return OneWayUnset
}

// 层级范围
const (
	MinLayer = -5
	MaxLayer = 5
)

// Layer：layer 标签数值；缺失时 (0, true)，非法或越界时 ok=false
func Layer(e Entity) (int, bool) {
	v, present := e.Tags().Get(TagLayer)
	if !present {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < MinLayer || n > MaxLayer {
		return n, false
	}
	return n, true
}

// LayerOrZero 仅取数值，非法时为 0
func LayerOrZero(e Entity) int {
	if n, ok := Layer(e); ok {
		return n
	}
	return 0
}

// IsRoundabout junction=roundabout
func IsRoundabout(e Entity) bool { return e.Tags().Is(TagJunction, "roundabout") }

// IsBridge bridge 存在且不为 no
func IsBridge(e Entity) bool {
	v, ok := e.Tags().Get(TagBridge)
	return ok && !strings.EqualFold(v, "no")
}

// IsTunnel tunnel 存在且不为 no
func IsTunnel(e Entity) bool {
	v, ok := e.Tags().Get(TagTunnel)
	return ok && !strings.EqualFold(v, "no")
}

// IsPier man_made=pier
func IsPier(e Entity) bool { return e.Tags().Is(TagManMade, "pier") }

// IsFerry route=ferry
func IsFerry(e Entity) bool { return e.Tags().Is(TagRoute, "ferry") }

// IsBuilding building 存在且不为 no
func IsBuilding(e Entity) bool {
	v, ok := e.Tags().Get(TagBuilding)
	return ok && !strings.EqualFold(v, "no")
}

// IsBuildingPart building:part 存在且不为 no
func IsBuildingPart(e Entity) bool {
	v, ok := e.Tags().Get(TagBuildingPart)
	return ok && !strings.EqualFold(v, "no")
}

// IsArea area=yes
func IsArea(e Entity) bool { return e.Tags().Is(TagArea, "yes") }

// IsPrivateAccess access=private/no
func IsPrivateAccess(e Entity) bool { return e.Tags().Is(TagAccess, "private", "no") }
