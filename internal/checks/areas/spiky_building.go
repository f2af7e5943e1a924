package areas

import (
	"fmt"
	"strings"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// SpikyBuildingName：注册名，亦为配置键前缀
const SpikyBuildingName = "SpikyBuildingCheck"

var spikyBuildingInstructions = []string{
	"This building has the following angle measurements under the minimum allowed angle of {0}: {1}",
}

// SpikyBuildingCheck：建筑轮廓中的尖刺角；弧形段上的顶点不计
type SpikyBuildingCheck struct {
	*checks.BaseCheck
	headingThreshold   float64
	curveThreshold     float64
	curveTotalMinimum  float64
	curvePointsMinimum int
}

// NewSpikyBuildingCheck：按配置构造 SpikyBuildingCheck，缺省参数取内置默认值
func NewSpikyBuildingCheck(cfg *config.Configuration) *SpikyBuildingCheck {
	c := &SpikyBuildingCheck{}
	c.BaseCheck = checks.NewBaseCheck(SpikyBuildingName, cfg, c, spikyBuildingInstructions...)
	p := checks.ParamsFor(SpikyBuildingName, cfg)
	c.headingThreshold = p.Float("spiky.angle.maximum", 15)
	c.curveThreshold = p.Float("curve.angle.maximum", 25)
	c.curveTotalMinimum = p.Float("curve.angle.total.minimum", 10)
	c.curvePointsMinimum = p.Int("curve.points.minimum", 4)
	return c
}

func (c *SpikyBuildingCheck) ValidCheckForObject(e atlas.Entity) bool {
	switch v := e.(type) {
	case *atlas.Area:
	case *atlas.Relation:
		if !v.IsMultiPolygon() {
			return false
		}
	default:
		return false
	}
	return atlas.IsBuilding(e) || atlas.IsBuildingPart(e)
}

func (c *SpikyBuildingCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	var spikes []spike
	for _, poly := range polygonsOf(e) {
		spikes = append(spikes, c.spikes(poly)...)
	}
	if len(spikes) == 0 {
		return nil, false
	}
	angles := make([]string, len(spikes))
	markers := make([]geo.Location, len(spikes))
	for i, s := range spikes {
		angles[i] = degrees(s.angle)
		markers[i] = s.at
	}
	instruction := c.LocalizedInstruction(0, degrees(c.headingThreshold), strings.Join(angles, ", "))
	if rel, ok := e.(*atlas.Relation); ok {
		return c.CreateFlag(rel.Flatten(), instruction, markers...), true
	}
	return c.CreateFlagFor(e, instruction, markers...), true
}

func degrees(v float64) string { return fmt.Sprintf("%.2f degrees", v) }

// polygonsOf 面本身或多面关系的面成员
func polygonsOf(e atlas.Entity) []geo.Polygon {
	switch v := e.(type) {
	case *atlas.Area:
		return []geo.Polygon{v.Polygon()}
	case *atlas.Relation:
		var out []geo.Polygon
		for _, m := range v.Members() {
			if ar, ok := m.Entity.(*atlas.Area); ok {
				out = append(out, ar.Polygon())
			}
		}
		return out
	}
	return nil
}

type spike struct {
	angle float64
	at    geo.Location
}

type segmentPair struct{ before, after geo.Segment }

// curve 连续的近似共线段对：count 个顶点，起于 start 段，止于 end 段
type curve struct {
	count      int
	start, end geo.Segment
}

// pairsOf 相邻段对，含末段与首段
func pairsOf(segs []geo.Segment) []segmentPair {
	if len(segs) == 0 {
		return nil
	}
	out := make([]segmentPair, 0, len(segs))
	for i := 1; i < len(segs); i++ {
		out = append(out, segmentPair{segs[i-1], segs[i]})
	}
	return append(out, segmentPair{segs[len(segs)-1], segs[0]})
}

func headingDifference(a, b geo.Segment, def float64) float64 {
	h1, ok1 := a.Heading()
	h2, ok2 := b.Heading()
	if !ok1 || !ok2 {
		return def
	}
	return geo.HeadingDifference(h1, h2)
}

func (c *SpikyBuildingCheck) spikes(poly geo.Polygon) []spike {
	segs := poly.Segments()
	curved := c.curvedLocations(segs)
	var out []spike
	for _, p := range pairsOf(segs) {
		if curved[p.after.End.Key()] || curved[p.before.Start.Key()] {
			continue
		}
		if diff := headingDifference(p.before, p.after.Reversed(), 180); diff < c.headingThreshold {
			out = append(out, spike{angle: diff, at: p.after.Start})
		}
	}
	return out
}

func (c *SpikyBuildingCheck) curvedLocations(segs []geo.Segment) map[[2]int64]bool {
	var gentle []segmentPair
	for _, p := range pairsOf(segs) {
		if headingDifference(p.before, p.after, 180) < c.curveThreshold {
			gentle = append(gentle, p)
		}
	}
	var curves []curve
	for _, cv := range summarizeCurves(gentle) {
		if cv.count >= c.curvePointsMinimum && headingDifference(cv.start, cv.end, 0) >= c.curveTotalMinimum {
			curves = append(curves, cv)
		}
	}
	return curveLocations(curves, segs)
}

// summarizeCurves 把首尾相接的段对合并为弧；跨越闭合点的首尾两段弧合并为一段
func summarizeCurves(pairs []segmentPair) []curve {
	if len(pairs) == 0 {
		return nil
	}
	var out []curve
	start, prev := pairs[0], pairs[0]
	count := 1
	for _, p := range pairs[1:] {
		if !prev.after.Equals(p.before) {
			out = append(out, curve{count: count, start: start.before, end: prev.after})
			count = 1
			start = p
		} else {
			count++
		}
		prev = p
	}
	out = append(out, curve{count: count, start: start.before, end: prev.after})
	if last := out[len(out)-1]; len(out) > 1 && out[0].start.Equals(last.end) {
		out[0] = curve{count: out[0].count + last.count, start: last.start, end: out[0].end}
		out = out[:len(out)-1]
	}
	return out
}

// curveLocations 沿轮廓顺序收集弧内顶点
func curveLocations(curves []curve, segs []geo.Segment) map[[2]int64]bool {
	out := map[[2]int64]bool{}
	if len(curves) == 0 {
		return out
	}
	idx := 0
	inside := false
	for _, p := range pairsOf(segs) {
		cv := curves[idx]
		if !inside {
			if cv.start.Equals(p.before) {
				inside = true
				out[cv.start.End.Key()] = true
			}
			continue
		}
		if !cv.end.Equals(p.after) {
			out[p.before.End.Key()] = true
			continue
		}
		inside = false
		out[cv.end.Start.Key()] = true
		if idx++; idx >= len(curves) {
			break
		}
	}
	return out
}
