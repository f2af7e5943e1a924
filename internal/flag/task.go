package flag

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Task：MapRoulette 任务载荷
type Task struct {
	Name        string          `json:"name"`
	Parent      int64           `json:"parent"`
	Instruction string          `json:"instruction"`
	Geometries  json.RawMessage `json:"geometries"`
}

// NewTask：从记录生成任务；几何中没有点时补一个标记点
func NewTask(r Record, parent int64) (Task, error) {
	if err := r.Validate(); err != nil {
		return Task{}, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(r.Geometry)
	if err != nil {
		return Task{}, fmt.Errorf("task %s: %w", r.Identifier, err)
	}
	if p, ok := firstMarker(fc); ok {
		feat := geojson.NewFeature(p)
		feat.Properties[PropMarker] = true
		fc.Append(feat)
	}
	geom, err := fc.MarshalJSON()
	if err != nil {
		return Task{}, fmt.Errorf("task %s: %w", r.Identifier, err)
	}
	return Task{Name: r.Identifier, Parent: parent, Instruction: r.Instructions, Geometries: geom}, nil
}

// ProjectName：任务所属项目取标记国家
func ProjectName(r Record) string {
	if r.Country == "" {
		return NoCountry
	}
	return r.Country
}
