package atlas

import "strings"

// HighwayTag：highway 取值，按重要性排序（值越小越重要）
type HighwayTag int

const (
	HighwayMotorway HighwayTag = iota
	HighwayMotorwayLink
	HighwayTrunk
	HighwayTrunkLink
	HighwayPrimary
	HighwayPrimaryLink
	HighwaySecondary
	HighwaySecondaryLink
	HighwayTertiary
	HighwayTertiaryLink
	HighwayUnclassified
	HighwayResidential
	HighwayService
	HighwayLivingStreet
	HighwayTrack
	HighwayRoad
	HighwayPedestrian
	HighwayFootway
	HighwayCycleway
	HighwayPath
	HighwaySteps
	HighwayBridleway
	HighwayBusGuideway
	HighwayRaceway
	HighwayCorridor
	HighwayCrossing
	HighwayMiniRoundabout
	HighwayTurningCircle
	HighwayTurningLoop
	HighwayConstruction
	HighwayProposed
	HighwayNo
)

var highwayNames = [...]string{
	"motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link",
	"secondary", "secondary_link", "tertiary", "tertiary_link", "unclassified", "residential", "service",
	"living_street", "track", "road", "pedestrian", "footway", "cycleway", "path", "steps",
	"bridleway", "bus_guideway", "raceway", "corridor", "crossing", "mini_roundabout",
	"turning_circle", "turning_loop", "construction", "proposed", "no",
}

var highwayByName = func() map[string]HighwayTag {
	m := make(map[string]HighwayTag, len(highwayNames))
	for i, n := range highwayNames {
		m[n] = HighwayTag(i)
	}
	return m
}()

func (h HighwayTag) String() string {
	if int(h) >= 0 && int(h) < len(highwayNames) {
		return highwayNames[h]
	}
	return "unknown"
}

// ParseHighwayTag 忽略大小写
func ParseHighwayTag(s string) (HighwayTag, bool) {
	h, ok := highwayByName[strings.ToLower(strings.TrimSpace(s))]
	return h, ok
}

// HighwayOf 读取实体的 highway 标签
func HighwayOf(e Entity) (HighwayTag, bool) {
	v, ok := e.Tags().Get(TagHighway)
	if !ok {
		return 0, false
	}
	return ParseHighwayTag(v)
}

func (h HighwayTag) IsMoreImportantThan(o HighwayTag) bool          { return h < o }
func (h HighwayTag) IsMoreImportantThanOrEqualTo(o HighwayTag) bool { return h <= o }
func (h HighwayTag) IsLessImportantThan(o HighwayTag) bool          { return h > o }
func (h HighwayTag) IsLessImportantThanOrEqualTo(o HighwayTag) bool { return h >= o }

// IsLink *_link
func (h HighwayTag) IsLink() bool {
	return h <= HighwayTertiaryLink && h%2 == 1
}

// Base：link 对应的主干等级；非 link 返回自身
func (h HighwayTag) Base() HighwayTag {
	if h.IsLink() {
		return h - 1
	}
	return h
}

// IsOfEqualClassification 忽略 _link 后相等
func (h HighwayTag) IsOfEqualClassification(o HighwayTag) bool { return h.Base() == o.Base() }

// IsIdenticalClassification 完全相等
func (h HighwayTag) IsIdenticalClassification(o HighwayTag) bool { return h == o }

// IsCarNavigable 机动车可通行的道路等级
func (h HighwayTag) IsCarNavigable() bool {
	return h <= HighwayService || h == HighwayLivingStreet || h == HighwayRoad
}

// IsPedestrianNavigable 步行可通行的道路等级
func (h HighwayTag) IsPedestrianNavigable() bool {
	switch h {
	case HighwayPedestrian, HighwayFootway, HighwayPath, HighwaySteps, HighwayLivingStreet,
		HighwayTrack, HighwayResidential, HighwayCorridor, HighwayCycleway, HighwayBridleway:
		return true
	}
	return false
}

// IsCarNavigable 实体的 highway 标签可供机动车通行
func IsCarNavigable(e Entity) bool {
	h, ok := HighwayOf(e)
	return ok && h.IsCarNavigable()
}

// IsPedestrianNavigable 实体的 highway 标签可供步行
func IsPedestrianNavigable(e Entity) bool {
	h, ok := HighwayOf(e)
	return ok && h.IsPedestrianNavigable()
}

// HighwayAtLeast：highway 不低于 minimum
func HighwayAtLeast(e Entity, minimum HighwayTag) bool {
	h, ok := HighwayOf(e)
	return ok && h.IsMoreImportantThanOrEqualTo(minimum)
}
