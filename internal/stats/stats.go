// 包 stats：标记统计与两次运行之间的差异
package stats

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"atlas-checks/internal/flag"
)

// Row 一个 (检查, 国家) 组合的计数
type Row struct {
	Check   string `json:"check"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Summary 标记计数汇总
type Summary struct {
	Total     int            `json:"total"`
	ByCheck   map[string]int `json:"by_check"`
	ByCountry map[string]int `json:"by_country"`
	Table     []Row          `json:"table"`
}

// Summarize 按检查与国家计数；Table 按检查、国家排序
func Summarize(records []flag.Record) Summary {
	s := Summary{ByCheck: map[string]int{}, ByCountry: map[string]int{}}
	cells := map[[2]string]int{}
	for _, r := range records {
		country := flag.ProjectName(r)
		s.Total++
		s.ByCheck[r.Check]++
		s.ByCountry[country]++
		cells[[2]string{r.Check, country}]++
	}
	for k, n := range cells {
		s.Table = append(s.Table, Row{Check: k[0], Country: k[1], Count: n})
	}
	sort.Slice(s.Table, func(i, j int) bool {
		if s.Table[i].Check != s.Table[j].Check {
			return s.Table[i].Check < s.Table[j].Check
		}
		return s.Table[i].Country < s.Table[j].Country
	})
	return s
}

// WriteCSV 表头 check,country,count
func (s Summary) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"check", "country", "count"}); err != nil {
		return err
	}
	for _, r := range s.Table {
		if err := cw.Write([]string{r.Check, r.Country, strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DiffResult 以 (检查, 标识) 对齐的差异
type DiffResult struct {
	Added   []flag.Record `json:"added"`
	Removed []flag.Record `json:"removed"`
	Changed []flag.Record `json:"changed"`
}

// Diff：updated 中新增、old 中消失、以及说明或几何变化的标记；各列表按键排序
func Diff(old, updated []flag.Record) DiffResult {
	before := index(old)
	after := index(updated)
	var d DiffResult
	for k, r := range after {
		prev, ok := before[k]
		switch {
		case !ok:
			d.Added = append(d.Added, r)
		case prev.Instructions != r.Instructions || !sameGeometry(prev.Geometry, r.Geometry):
			d.Changed = append(d.Changed, r)
		}
	}
	for k, r := range before {
		if _, ok := after[k]; !ok {
			d.Removed = append(d.Removed, r)
		}
	}
	for _, list := range [][]flag.Record{d.Added, d.Removed, d.Changed} {
		sortByKey(list)
	}
	return d
}

// Summary 单行计数
func (d DiffResult) Summary() string {
	return fmt.Sprintf("added=%d removed=%d changed=%d", len(d.Added), len(d.Removed), len(d.Changed))
}

func index(records []flag.Record) map[string]flag.Record {
	out := make(map[string]flag.Record, len(records))
	for _, r := range records {
		out[r.Key()] = r
	}
	return out
}

func sortByKey(records []flag.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].Key() < records[j].Key() })
}

// sameGeometry 忽略空白与键顺序比较 JSON
func sameGeometry(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	ca, _ := json.Marshal(va)
	cb, _ := json.Marshal(vb)
	return bytes.Equal(ca, cb)
}
