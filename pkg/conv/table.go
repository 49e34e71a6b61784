package conv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table 是带表头的 CSV 数据，按列名读取单元格。
type Table struct {
	columns map[string]int
	Rows    []Row
}

// Row 是 Table 中的一行。
type Row struct {
	Line    int // 记录序号，表头为第 1 条
	columns map[string]int
	cells   []string
}

// ReadTable 读取首行为表头的 CSV。空输入返回空表。
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{columns: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	t := &Table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		t.columns[strings.TrimSpace(name)] = i
	}

	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		t.Rows = append(t.Rows, Row{Line: line, columns: t.columns, cells: cells})
	}
	return t, nil
}

// HasColumn 判断表头中是否有该列。
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

func (r Row) Has(col string) bool {
	_, ok := r.columns[col]
	return ok
}

// Get 返回去掉首尾空白的单元格；列不存在时返回空串。
func (r Row) Get(col string) string {
	i, ok := r.columns[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Float 解析数值列，空单元格为 0。
func (r Row) Float(col string) (float64, error) {
	v, err := r.OptionalFloat(col)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

// OptionalFloat 解析可选数值列：列不存在或单元格为空时返回 nil。
func (r Row) OptionalFloat(col string) (*float64, error) {
	s := r.Get(col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("record %d: column %s: %w", r.Line, col, err)
	}
	return &v, nil
}

// Int 解析整数列，空单元格为 0；带小数部分的值（如 "34.0"）按整数截断。
func (r Row) Int(col string) (int, error) {
	v, err := r.Float(col)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Bool 支持 yes/no、true/false、1/0（不区分大小写），空单元格为 false。
func (r Row) Bool(col string) (bool, error) {
	switch strings.ToLower(r.Get(col)) {
	case "", "no", "false", "0", "n":
		return false, nil
	case "yes", "true", "1", "y":
		return true, nil
	default:
		return false, fmt.Errorf("record %d: column %s: not a boolean: %q", r.Line, col, r.Get(col))
	}
}

// List 解析列表列，单元格形如 ['Books', 'Fashion'] 或 ["Books"]。
// 列不存在时返回 nil；单元格为空时返回空切片。
func (r Row) List(col string) ([]string, error) {
	if !r.Has(col) {
		return nil, nil
	}
	items, err := ParseList(r.Get(col))
	if err != nil {
		return nil, fmt.Errorf("record %d: column %s: %w", r.Line, col, err)
	}
	return items, nil
}

// ParseList 解析方括号包裹、单引号或双引号的字符串列表。
// 这种写法同时是合法的 YAML flow 序列，直接交给 yaml 解析。
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("list must be enclosed in brackets: %q", s)
	}
	var items []string
	if err := yaml.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("parse list %q: %w", s, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
