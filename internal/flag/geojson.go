package flag

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"atlas-checks/internal/geo"
)

// 要素属性键
const (
	PropCheck         = "flag:check"
	PropIdentifier    = "flag:id"
	PropInstructions  = "flag:instructions"
	PropItemType      = "itemType"
	PropObjectID      = "identifier"
	PropOsmIdentifier = "osmIdentifier"
	PropGeohash       = "geohash"
	PropMarker        = "flag:marker"
)

// FeatureCollection：每个对象一个要素，标记点为额外的 Point 要素
func (f *CheckFlag) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	common := func(feat *geojson.Feature) {
		feat.Properties[PropCheck] = f.ChallengeName
		feat.Properties[PropIdentifier] = f.Identifier
		feat.Properties[PropInstructions] = f.InstructionText()
	}
	for _, o := range f.objects {
		feat := geojson.NewFeature(o.Geometry)
		for k, v := range o.Tags {
			feat.Properties[k] = v
		}
		feat.Properties[PropItemType] = o.Type.String()
		feat.Properties[PropObjectID] = o.Identifier
		feat.Properties[PropOsmIdentifier] = o.OsmIdentifier
		if pts := pointsOf(o.Geometry); len(pts) > 0 {
			feat.Properties[PropGeohash] = geo.Geohash(geo.FromPoint(pts[0]), 7)
		}
		common(feat)
		fc.Append(feat)
	}
	for _, p := range f.points {
		feat := geojson.NewFeature(p.Point())
		feat.Properties[PropMarker] = true
		feat.Properties[PropGeohash] = geo.Geohash(p, 7)
		common(feat)
		fc.Append(feat)
	}
	return fc
}

// GeoJSON 序列化后的 FeatureCollection
func (f *CheckFlag) GeoJSON() (json.RawMessage, error) {
	data, err := f.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal flag %s: %w", f.Identifier, err)
	}
	return data, nil
}

// GeometriesOf 多个标记合并为一个 FeatureCollection（导出整份检查结果用）
func GeometriesOf(flags []*CheckFlag) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range flags {
		out.Features = append(out.Features, f.FeatureCollection().Features...)
	}
	return out
}

// firstMarker：没有 Point 要素时取第一个线或面的首点
func firstMarker(fc *geojson.FeatureCollection) (orb.Point, bool) {
	for _, feat := range fc.Features {
		if _, ok := feat.Geometry.(orb.Point); ok {
			return orb.Point{}, false
		}
	}
	for _, feat := range fc.Features {
		if pts := pointsOf(feat.Geometry); len(pts) > 0 {
			return pts[0], true
		}
	}
	return orb.Point{}, false
}
