// Package coordinate 解析检测模型输出的损伤坐标文件
//
// 文件格式为纯文本，每行一条记录：
//
//	<type> <x>,<y>,<x2>,<y2>
//
// type 为 "1" 表示 Repair，其余数值表示 Replace。
package coordinate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMalformedLine 行格式错误
var ErrMalformedLine = errors.New("malformed coordinate line")

// RepairReplace 坐标文件中的维修/更换标记
type RepairReplace string

const (
	Repair  RepairReplace = "Repair"
	Replace RepairReplace = "Replace"
)

// repairToken 坐标文件中表示 Repair 的类型标记
const repairToken = "1"

// Box 像素坐标下的损伤框，宽高由两个角点相减得到，可能为负
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Record 坐标文件中的一条损伤记录
type Record struct {
	RepairReplace RepairReplace `json:"repair_replace"`
	Coordinates   Box           `json:"coordinates"`
}

// Parser 坐标文件解析器
type Parser struct {
	logger *zap.Logger
}

// NewParser 创建解析器，logger 为 nil 时不输出日志
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse 解析整个文件内容，格式错误的行被丢弃并记录警告，不会返回错误
func (p *Parser) Parse(content []byte) []Record {
	lines := strings.Split(decodeText(content), "\n")

	records := make([]Record, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			p.logger.Warn("Skip invalid coordinate line",
				zap.Int("line_no", i+1),
				zap.String("line", line),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// ParseLine 解析单行（调用方负责去除首尾空白）
func ParseLine(line string) (Record, error) {
	tokens := strings.Split(line, " ")
	if len(tokens) != 2 || tokens[0] == "" || tokens[1] == "" {
		return Record{}, fmt.Errorf("%w: expect \"<type> <x>,<y>,<x2>,<y2>\"", ErrMalformedLine)
	}
	typeToken, coords := tokens[0], tokens[1]

	if _, err := parseFinite(typeToken); err != nil {
		return Record{}, fmt.Errorf("%w: type token %q: %v", ErrMalformedLine, typeToken, err)
	}

	fields := strings.Split(coords, ",")
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("%w: expect 4 coordinates, got %d", ErrMalformedLine, len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		n, err := parseFinite(f)
		if err != nil {
			return Record{}, fmt.Errorf("%w: coordinate %d %q: %v", ErrMalformedLine, i+1, f, err)
		}
		v[i] = n
	}
	x, y, x2, y2 := v[0], v[1], v[2], v[3]

	rr := Replace
	if typeToken == repairToken {
		rr = Repair
	}
	return Record{
		RepairReplace: rr,
		Coordinates: Box{
			X:      x,
			Y:      y,
			Width:  x2 - x,
			Height: y2 - y,
		},
	}, nil
}

func parseFinite(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty field")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New("not a finite number")
	}
	return n, nil
}

// decodeText 按 BOM 识别 UTF-8/UTF-16 编码，无 BOM 时按 UTF-8 处理
func decodeText(content []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return string(content)
	}
	return string(text)
}
