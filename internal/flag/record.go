package flag

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidRecord 记录缺少必填字段
var ErrInvalidRecord = errors.New("flag: invalid record")

// maxLineBytes 单行记录上限
const maxLineBytes = 16 << 20

// Record：标记的持久化形式；标记文件每行一条
type Record struct {
	Check        string          `json:"check"`
	Country      string          `json:"country"`
	Identifier   string          `json:"identifier"`
	Instructions string          `json:"instructions"`
	Objects      []string        `json:"objects,omitempty"`
	Geometry     json.RawMessage `json:"geometry"`
}

// Key 检查名+标识，用于比对
func (r Record) Key() string { return r.Check + "|" + r.Identifier }

// Validate 必填字段校验
func (r Record) Validate() error {
	switch {
	case r.Check == "":
		return fmt.Errorf("%w: empty check", ErrInvalidRecord)
	case r.Identifier == "":
		return fmt.Errorf("%w: empty identifier", ErrInvalidRecord)
	case len(r.Geometry) == 0:
		return fmt.Errorf("%w: %s has no geometry", ErrInvalidRecord, r.Identifier)
	}
	return nil
}

// Record 转为持久化记录
func (f *CheckFlag) Record(check string) (Record, error) {
	geom, err := f.GeoJSON()
	if err != nil {
		return Record{}, err
	}
	if check == "" {
		check = f.ChallengeName
	}
	return Record{
		Check:        check,
		Country:      f.Country(),
		Identifier:   f.Identifier,
		Instructions: f.InstructionText(),
		Objects:      f.UniqueIdentifiers(),
		Geometry:     geom,
	}, nil
}

// WriteLines 逐行写出 JSON 记录
func WriteLines(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode %s: %w", r.Identifier, err)
		}
	}
	return bw.Flush()
}

// ReadLines：读取逐行记录；空行跳过，非法行返回带行号的错误
func ReadLines(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []Record
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
