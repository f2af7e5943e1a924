package tag

import (
	"fmt"
	"strings"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// UnusualLayerTagsName：注册名，亦为配置键前缀
const UnusualLayerTagsName = "UnusualLayerTagsCheck"

var (
	tunnelInstruction         = fmt.Sprintf("Case 1 Tunnels must have layer tags set to a value in [%d, %d].", atlas.MinLayer, -1)
	bridgeInstruction         = fmt.Sprintf("Case 3 Bridges must have a layer tag set to a value in [%d, %d].", 1, atlas.MaxLayer)
	invalidLayerInstruction   = fmt.Sprintf("Case 4 A layer tag must have a value in [%d, %d] and 0 should not be used explicitly.", atlas.MinLayer, atlas.MaxLayer)
	landUseInstruction        = "Case 5 Landuse feature is not on the ground"
	naturalUndergroundInstr   = "Case 6 Natural feature underground"
	highwayUndergroundInstr   = "Case 7 Highway underground and no tunnel"
	highwayAboveGroundInstr   = "Case 8 Highway above ground and no bridge"
	waterwayUndergroundInstr  = "Case 9 Waterway underground and no tunnel"
	waterwayAboveGroundInstr  = "Case 10 Waterway above ground and no bridge"
	unusualLayerTagsFallbacks = []string{tunnelInstruction, bridgeInstruction, invalidLayerInstruction, landUseInstruction, naturalUndergroundInstr, highwayUndergroundInstr, highwayAboveGroundInstr, waterwayUndergroundInstr, waterwayAboveGroundInstr}
)

// 说明序号与 unusualLayerTagsFallbacks 对应
const (
	caseTunnel = iota
	caseBridge
	caseInvalidLayer
	caseLandUse
	caseNaturalUnderground
	caseHighwayUnderground
	caseHighwayAboveGround
	caseWaterwayUnderground
	caseWaterwayAboveGround
)

// UnusualLayerTagsCheck：layer 与 bridge/tunnel 以及要素类型不一致
type UnusualLayerTagsCheck struct {
	*checks.BaseCheck
}

// NewUnusualLayerTagsCheck：按配置构造 UnusualLayerTagsCheck，缺省参数取内置默认值
func NewUnusualLayerTagsCheck(cfg *config.Configuration) *UnusualLayerTagsCheck {
	c := &UnusualLayerTagsCheck{}
	c.BaseCheck = checks.NewBaseCheck(UnusualLayerTagsName, cfg, c, unusualLayerTagsFallbacks...)
	return c
}

func (c *UnusualLayerTagsCheck) ValidCheckForObject(e atlas.Entity) bool {
	switch v := e.(type) {
	case *atlas.Node, *atlas.Area, *atlas.Line:
	case *atlas.Edge:
		if !v.IsMainEdge() {
			return false
		}
	default:
		return false
	}
	tags := e.Tags()
	eligibleTunnel := tags.Has(atlas.TagTunnel) && !tags.Is(atlas.TagTunnel, "building_passage")
	return (tags.Has(atlas.TagBridge) || tags.Has(atlas.TagLayer) || eligibleTunnel) && !c.IsFlagged(e.OsmIdentifier())
}

func (c *UnusualLayerTagsCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	c.MarkAsFlagged(e.OsmIdentifier())
	idx, ok := unusualLayerCase(e)
	if !ok {
		return nil, false
	}
	return c.CreateFlag(wayObjects(e), c.LocalizedInstruction(idx)), true
}

// taggedLayer：显式且合法的 layer 值
func taggedLayer(e atlas.Entity) (int, bool) {
	if !e.Tags().Has(atlas.TagLayer) {
		return 0, false
	}
	return atlas.Layer(e)
}

func isBridgeLike(e atlas.Entity) bool { return atlas.IsBridge(e) || e.Tags().Is(atlas.TagManMade, "bridge") }
func isTunnelLike(e atlas.Entity) bool { return atlas.IsTunnel(e) || e.Tags().Is(atlas.TagManMade, "tunnel") }

// unusualLayerCase 按顺序判定，返回首个命中的说明序号
func unusualLayerCase(e atlas.Entity) (int, bool) {
	layer, valid := taggedLayer(e)
	if isTunnelLike(e) && (!valid || layer > -1 || layer < atlas.MinLayer) {
		return caseTunnel, true
	}
	if isBridgeLike(e) && (!valid || layer != 0) && (!valid || layer > atlas.MaxLayer || layer < 1) {
		return caseBridge, true
	}
	if !valid {
		if e.Tags().Has(atlas.TagLayer) {
			return caseInvalidLayer, true
		}
		return 0, false
	}
	if layer == 0 {
		return 0, false
	}
	tags := e.Tags()
	natural, hasNatural := tags.Get("natural")
	water := hasNatural && strings.EqualFold(natural, "water")
	switch {
	case tags.Has("landuse"):
		return caseLandUse, true
	case hasNatural && !water && layer < 0:
		return caseNaturalUnderground, true
	}
	if highway, ok := tags.Get(atlas.TagHighway); ok && !strings.EqualFold(highway, "steps") {
		if layer < 0 && !isTunnelLike(e) {
			return caseHighwayUnderground, true
		}
		if layer > 0 && !isBridgeLike(e) && !atlas.IsPier(e) {
			return caseHighwayAboveGround, true
		}
	}
	if tags.Has("waterway") || water {
		if layer < 0 && !atlas.IsTunnel(e) && !tags.Is("location", "underground") {
			return caseWaterwayUnderground, true
		}
		if layer > 0 && !atlas.IsBridge(e) {
			return caseWaterwayAboveGround, true
		}
	}
	return 0, false
}
