package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/client"
)

// 与服务端持久化编码一致
var (
	damageTypeLabels    = []string{"Scratch", "Dent", "Broken"}
	repairReplaceLabels = []string{"Repair", "Replace", "NA"}
)

const (
	fieldPart = iota
	fieldDamage
	fieldAction
	fieldCost
	fieldCount
)

// costLoadedMsg 费用查询返回，seq 不是最新时丢弃
type costLoadedMsg struct {
	seq int
	est *client.Estimate
	err error
}

// saveFailedMsg 新增/修改提交失败
type saveFailedMsg struct{ err error }

// editForm 新增或修改一条损伤评估
type editForm struct {
	id        uint // 0 表示新增
	imageName string
	parts     []client.CarPart

	partIdx int
	damage  int
	action  int
	field   int
	cost    textinput.Model

	costSeq    int
	costSource string
	saving     bool
	err        string
}

func newEditForm(imageName string, parts []client.CarPart, existing *client.Annotation) *editForm {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 12
	ti.Width = 12
	ti.Placeholder = "0.00"
	ti.Cursor.SetMode(cursor.CursorStatic)

	f := &editForm{imageName: imageName, parts: parts, cost: ti}
	if existing != nil {
		f.id = existing.ID
		for i, p := range parts {
			if p.ID == existing.CarPartID {
				f.partIdx = i
				break
			}
		}
		f.damage = clampOption(existing.DamageTypeID, len(damageTypeLabels))
		f.action = clampOption(existing.RepairReplaceID, len(repairReplaceLabels))
		f.setCost(existing.ActualCostRepair)
		f.costSource = "已保存"
	}
	return f
}

func clampOption(v, n int) int {
	if v < 0 || v >= n {
		return 0
	}
	return v
}

func (f *editForm) partID() int {
	if f.partIdx < 0 || f.partIdx >= len(f.parts) {
		return 0
	}
	return f.parts[f.partIdx].ID
}

func (f *editForm) setCost(v float64) {
	f.cost.SetValue(strconv.FormatFloat(v, 'f', 2, 64))
	f.cost.CursorEnd()
}

// focus 切换焦点字段，只有费用字段接收文本输入
func (f *editForm) focus(field int) {
	f.field = (field + fieldCount) % fieldCount
	if f.field == fieldCost {
		f.cost.Focus()
	} else {
		f.cost.Blur()
	}
}

// shift 修改当前选择字段，返回是否改变了选择
func (f *editForm) shift(delta int) bool {
	wrap := func(v, n int) int { return ((v+delta)%n + n) % n }
	switch f.field {
	case fieldPart:
		if len(f.parts) == 0 {
			return false
		}
		f.partIdx = wrap(f.partIdx, len(f.parts))
	case fieldDamage:
		f.damage = wrap(f.damage, len(damageTypeLabels))
	case fieldAction:
		f.action = wrap(f.action, len(repairReplaceLabels))
	default:
		return false
	}
	return true
}

func (f *editForm) parseCost() (float64, error) {
	raw := strings.TrimSpace(f.cost.Value())
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errors.New("费用必须是非负数字")
	}
	return v, nil
}

// openForm 打开表单，existing 为 nil 时新增
func (m *Model) openForm(existing *client.Annotation) tea.Cmd {
	cur, ok := m.state.Current()
	if !ok || m.state.Phase != PhaseReady {
		return nil
	}
	if len(m.state.CarParts) == 0 {
		m.status = "部件列表未加载"
		return nil
	}
	m.form = newEditForm(cur.ImageName, m.state.CarParts, existing)
	m.status = ""
	if existing != nil {
		return nil
	}
	return m.lookupCost()
}

// lookupCost 按当前选择查询费用，返回后覆盖费用字段
func (m *Model) lookupCost() tea.Cmd {
	f := m.form
	f.costSeq++
	seq := f.costSeq
	partID, damage, action := f.partID(), f.damage, f.action
	f.costSource = "查询中"
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		est, err := m.backend.CostOfRepair(ctx, partID, damage, action)
		return costLoadedMsg{seq: seq, est: est, err: err}
	}
}

func (m *Model) handleCostLoaded(msg costLoadedMsg) {
	f := m.form
	if f == nil || msg.seq != f.costSeq {
		return
	}
	if msg.err != nil {
		f.costSource = ""
		f.err = "费用查询失败: " + msg.err.Error()
		return
	}
	f.err = ""
	f.setCost(msg.est.CostOfRepair)
	f.costSource = msg.est.Source
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	if f.saving {
		return nil
	}
	switch msg.String() {
	case "esc":
		m.form = nil
		return nil
	case "enter":
		return m.submitForm()
	case "tab", "down":
		f.focus(f.field + 1)
		return nil
	case "shift+tab", "up":
		f.focus(f.field - 1)
		return nil
	case "left", "right", "h", "l":
		if f.field != fieldCost {
			delta := 1
			if s := msg.String(); s == "left" || s == "h" {
				delta = -1
			}
			if f.shift(delta) {
				return m.lookupCost()
			}
			return nil
		}
	}

	if f.field == fieldCost {
		before := f.cost.Value()
		f.cost, _ = f.cost.Update(msg)
		if f.cost.Value() != before {
			// 手工输入后丢弃尚未返回的查询
			f.costSeq++
			f.costSource = "手工"
		}
	}
	return nil
}

func (m *Model) submitForm() tea.Cmd {
	f := m.form
	cost, err := f.parseCost()
	if err != nil {
		f.err = err.Error()
		return nil
	}
	partID := f.partID()
	if partID <= 0 {
		f.err = "请选择部件"
		return nil
	}
	f.saving = true
	f.err = ""

	ref, imageName, id := m.state.ReferenceNo, f.imageName, f.id
	damage, action := f.damage, f.action
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		var err error
		if id == 0 {
			_, err = m.backend.CreateAnnotation(ctx, client.AnnotationInput{
				ReferenceNo:      ref,
				ImageName:        imageName,
				CarPartID:        partID,
				DamageTypeID:     damage,
				RepairReplaceID:  action,
				ActualCostRepair: cost,
			})
		} else {
			err = m.backend.UpdateAnnotation(ctx, id, client.AnnotationUpdate{
				CarPartID:        partID,
				DamageTypeID:     damage,
				RepairReplaceID:  action,
				ActualCostRepair: cost,
			})
		}
		if err != nil {
			return saveFailedMsg{err: err}
		}
		return eventMsg{AnnotationSaved{ImageName: imageName}}
	}
}

func (m *Model) renderForm() string {
	f := m.form
	var b strings.Builder
	if f.id == 0 {
		fmt.Fprintf(&b, "新增评估 · %s\n", f.imageName)
	} else {
		fmt.Fprintf(&b, "修改评估 #%d · %s\n", f.id, f.imageName)
	}

	partLabel := "-"
	if f.partIdx >= 0 && f.partIdx < len(f.parts) {
		partLabel = f.parts[f.partIdx].Name
	}
	rows := []struct {
		label string
		value string
	}{
		{"部件", "‹ " + partLabel + " ›"},
		{"损伤", "‹ " + damageTypeLabels[f.damage] + " ›"},
		{"处理", "‹ " + repairReplaceLabels[f.action] + " ›"},
		{"费用", f.cost.View()},
	}
	for i, r := range rows {
		line := r.label + ": " + r.value
		if i == fieldCost && f.costSource != "" {
			line += mutedStyle.Render(" (" + f.costSource + ")")
		}
		if i == f.field {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	switch {
	case f.saving:
		b.WriteString(mutedStyle.Render("保存中..."))
	case f.err != "":
		b.WriteString(errorStyle.Render(f.err))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab 切换 | ←/→ 选择 | enter 保存 | esc 取消"))
	return boxStyle.Width(m.boxWidth()).Render(b.String())
}
