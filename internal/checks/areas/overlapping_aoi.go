package areas

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// OverlappingAOIName：注册名，亦为配置键前缀
const OverlappingAOIName = "OverlappingAOIPolygonCheck"

var overlappingAOIInstructions = []string{
	"Area (id={0,number,#}) overlaps area (id={1,number,#}) and represent the same AOI.",
}

// 每个表达式代表一类不应相互重叠的兴趣区
var defaultAOIFilters = []string{
	"amenity->festival_grounds",
	"amenity->grave_yard|landuse->cemetery",
	"boundary->national_park,protected_area|leisure->nature_reserve,park",
	"historic->battlefield",
	"landuse->forest|natural->wood",
	"landuse->recreation_ground|leisure->recreation_ground",
	"landuse->village_green|leisure->park",
	"leisure->garden",
	"leisure->golf_course|sport->golf",
	"leisure->park&name->*",
	"natural->beach",
	"tourism->zoo",
}

// OverlappingAOIPolygonCheck：同类兴趣区相互重叠
type OverlappingAOIPolygonCheck struct {
	*checks.BaseCheck
	minimumIntersect float64
	filters          []*checks.TaggableFilter
}

// NewOverlappingAOIPolygonCheck：按配置构造 OverlappingAOIPolygonCheck，缺省参数取内置默认值
func NewOverlappingAOIPolygonCheck(cfg *config.Configuration) *OverlappingAOIPolygonCheck {
	c := &OverlappingAOIPolygonCheck{}
	c.BaseCheck = checks.NewBaseCheck(OverlappingAOIName, cfg, c, overlappingAOIInstructions...)
	p := checks.ParamsFor(OverlappingAOIName, cfg)
	c.minimumIntersect = p.Float("intersect.minimum.limit", 0.01)
	for _, def := range p.Strings("aoi.tags.filters", defaultAOIFilters) {
		f, err := checks.ParseTaggableFilter(def)
		if err != nil {
			c.Logger().Warn("aoi_filter_invalid", "filter", def, "err", err)
			continue
		}
		c.filters = append(c.filters, f)
	}
	return c
}

func (c *OverlappingAOIPolygonCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := e.(*atlas.Area)
	return ok && !c.IsFlagged(e.Identifier()) && c.anyFilter(e)
}

func (c *OverlappingAOIPolygonCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	aoi := e.(*atlas.Area)
	poly := aoi.Polygon()
	others := aoi.Atlas().AreasIntersecting(poly.Bounds(), func(o *atlas.Area) bool {
		return o.Identifier() != aoi.Identifier() && !c.IsFlagged(o.Identifier()) && c.anyFilter(o)
	})
	f := c.CreateFlagFor(aoi, "")
	overlaps := false
	for _, o := range others {
		if geo.OverlapPercentage(poly, o.Polygon()) < c.minimumIntersect || !c.sameFilter(aoi, o) {
			continue
		}
		f.AddObject(o)
		f.AddInstruction(c.LocalizedInstruction(0, aoi.OsmIdentifier(), o.OsmIdentifier()))
		c.MarkAsFlagged(o.Identifier())
		overlaps = true
	}
	if !overlaps {
		return nil, false
	}
	c.MarkAsFlagged(aoi.Identifier())
	return f, true
}

func (c *OverlappingAOIPolygonCheck) anyFilter(e atlas.Entity) bool {
	for _, f := range c.filters {
		if f.TestEntity(e) {
			return true
		}
	}
	return false
}

// sameFilter 两者同时满足同一表达式
func (c *OverlappingAOIPolygonCheck) sameFilter(a, b atlas.Entity) bool {
	for _, f := range c.filters {
		if f.TestEntity(a) && f.TestEntity(b) {
			return true
		}
	}
	return false
}
