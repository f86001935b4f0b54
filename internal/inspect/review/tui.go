package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/client"
)

// Backend 终端界面依赖的服务端接口，*client.Client 实现了它
type Backend interface {
	ListImages(ctx context.Context, referenceNo string) ([]client.AnnotatedImage, error)
	ListCarParts(ctx context.Context) ([]client.CarPart, error)
	ListAnnotations(ctx context.Context, referenceNo, imageName string) ([]client.Annotation, error)
	DeleteAnnotation(ctx context.Context, id uint) error
	CreateAnnotation(ctx context.Context, in client.AnnotationInput) (uint, error)
	UpdateAnnotation(ctx context.Context, id uint, in client.AnnotationUpdate) error
	CostOfRepair(ctx context.Context, carPartID, damageTypeID, repairReplaceID int) (*client.Estimate, error)
}

var _ Backend = (*client.Client)(nil)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// eventMsg 执行器回送给状态机的事件
type eventMsg struct{ ev Event }

// deleteFailedMsg 删除失败，只在状态栏提示
type deleteFailedMsg struct{ err error }

// Model bubbletea 模型，包装纯状态机并执行其副作用
type Model struct {
	ctx     context.Context
	backend Backend
	timeout time.Duration

	state  State
	cursor int // 当前图片损伤评估列表中的选中行
	status string
	width  int
	form   *editForm // 非 nil 时按键交给表单
}

// NewModel 创建审核界面
func NewModel(ctx context.Context, backend Backend, referenceNo string) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Model{
		ctx:     ctx,
		backend: backend,
		timeout: 30 * time.Second,
		state:   State{ReferenceNo: referenceNo},
		width:   80,
	}
}

// State 当前状态快照
func (m *Model) State() State {
	return m.state
}

// Init 打开参考号
func (m *Model) Init() tea.Cmd {
	return m.apply(Start{ReferenceNo: m.state.ReferenceNo})
}

// Update 处理按键和回送事件
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		return m, m.apply(msg.ev)

	case deleteFailedMsg:
		m.status = "删除失败: " + msg.err.Error()
		return m, nil

	case costLoadedMsg:
		m.handleCostLoaded(msg)
		return m, nil

	case saveFailedMsg:
		if m.form != nil {
			m.form.saving = false
			m.form.err = "保存失败: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.form != nil {
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		return m.handleFormKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "right", "l", "n":
		return m.apply(Next{})
	case "left", "h", "p":
		return m.apply(Prev{})
	case "home", "g":
		return m.apply(Select{Index: 0})
	case "end", "G":
		return m.apply(Select{Index: len(m.state.Images) - 1})
	case "down", "j":
		if m.cursor < len(m.state.Annotations)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m.apply(Start{ReferenceNo: m.state.ReferenceNo})
	case "d":
		return m.deleteSelected()
	case "a":
		return m.openForm(nil)
	case "e":
		if m.state.AnnotationsLoading || m.cursor >= len(m.state.Annotations) {
			return nil
		}
		selected := m.state.Annotations[m.cursor]
		return m.openForm(&selected)
	}
	return nil
}

// apply 执行一次状态迁移并把副作用转换为命令
func (m *Model) apply(ev Event) tea.Cmd {
	prev := m.state.Index
	next, intents := Transition(m.state, ev)
	m.state = next
	if next.Index != prev || m.cursor >= len(next.Annotations) {
		m.cursor = 0
	}
	switch e := ev.(type) {
	case AnnotationDeleted:
		m.status = "已删除"
	case AnnotationSaved:
		if m.form != nil && m.form.saving && m.form.imageName == e.ImageName {
			m.form = nil
			m.status = "已保存"
		}
	}

	cmds := make([]tea.Cmd, 0, len(intents))
	for _, in := range intents {
		cmds = append(cmds, m.run(in))
	}
	return tea.Batch(cmds...)
}

// run 执行单个副作用
func (m *Model) run(in Intent) tea.Cmd {
	switch in := in.(type) {
	case FetchImages:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
			defer cancel()
			images, err := m.backend.ListImages(ctx, in.ReferenceNo)
			if err != nil {
				if client.IsNotFound(err) {
					return eventMsg{ImagesLoaded{ReferenceNo: in.ReferenceNo}}
				}
				return eventMsg{ImagesFailed{ReferenceNo: in.ReferenceNo, Err: err}}
			}
			return eventMsg{ImagesLoaded{ReferenceNo: in.ReferenceNo, Images: images}}
		}
	case FetchAnnotations:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
			defer cancel()
			items, err := m.backend.ListAnnotations(ctx, in.ReferenceNo, in.ImageName)
			if err != nil {
				return eventMsg{AnnotationsFailed{ImageName: in.ImageName, Err: err}}
			}
			return eventMsg{AnnotationsLoaded{ImageName: in.ImageName, Items: items}}
		}
	case FetchCarParts:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
			defer cancel()
			parts, err := m.backend.ListCarParts(ctx)
			if err != nil {
				// 部件名只用于展示，失败时保持空列表
				return nil
			}
			return eventMsg{CarPartsLoaded{Parts: parts}}
		}
	}
	return nil
}

func (m *Model) deleteSelected() tea.Cmd {
	if m.state.AnnotationsLoading || m.cursor >= len(m.state.Annotations) {
		return nil
	}
	id := m.state.Annotations[m.cursor].ID
	m.status = fmt.Sprintf("正在删除 #%d", id)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		if err := m.backend.DeleteAnnotation(ctx, id); err != nil {
			return deleteFailedMsg{err: err}
		}
		return eventMsg{AnnotationDeleted{ID: id}}
	}
}

// View 渲染界面
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("损伤审核 · " + m.state.ReferenceNo))
	b.WriteString("\n\n")

	switch m.state.Phase {
	case PhaseIdle, PhaseLoading:
		b.WriteString(mutedStyle.Render("加载图片中..."))
	case PhaseFailed:
		b.WriteString(errorStyle.Render(m.state.Err))
	case PhaseReady:
		b.WriteString(m.renderImage())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("←/→ 翻页 | ↑/↓ 选择 | a 新增 | e 修改 | d 删除 | r 刷新 | q 退出"))
	return b.String()
}

func (m *Model) renderImage() string {
	cur, _ := m.state.Current()
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s  %dx%d\n", m.state.Index+1, len(m.state.Images),
		cur.ImageName, cur.ImageDimensions.Width, cur.ImageDimensions.Height)
	b.WriteString(mutedStyle.Render(cur.ImageURL))
	b.WriteString("\n\n")

	var boxes strings.Builder
	boxes.WriteString("模型检测\n")
	if len(cur.DamageInfo) == 0 {
		boxes.WriteString(mutedStyle.Render("无"))
	}
	for i, d := range cur.DamageInfo {
		if i > 0 {
			boxes.WriteString("\n")
		}
		fmt.Fprintf(&boxes, "%-8s x=%.1f y=%.1f w=%.1f h=%.1f",
			d.RepairReplace, d.Coordinates.X, d.Coordinates.Y, d.Coordinates.Width, d.Coordinates.Height)
	}
	b.WriteString(boxStyle.Width(m.boxWidth()).Render(boxes.String()))
	b.WriteString("\n")

	var saved strings.Builder
	saved.WriteString("已保存评估\n")
	switch {
	case m.state.AnnotationsLoading:
		saved.WriteString(mutedStyle.Render("加载中..."))
	case m.state.AnnotationsErr != "":
		saved.WriteString(errorStyle.Render(m.state.AnnotationsErr))
	case len(m.state.Annotations) == 0:
		saved.WriteString(mutedStyle.Render("无"))
	default:
		for i, a := range m.state.Annotations {
			if i > 0 {
				saved.WriteString("\n")
			}
			line := fmt.Sprintf("#%d %s 损伤=%d 处理=%d 费用=%.2f",
				a.ID, m.partName(a), a.DamageTypeID, a.RepairReplaceID, a.ActualCostRepair)
			if i == m.cursor {
				saved.WriteString(cursorStyle.Render("> " + line))
			} else {
				saved.WriteString("  " + line)
			}
		}
	}
	b.WriteString(boxStyle.Width(m.boxWidth()).Render(saved.String()))
	b.WriteString("\n")
	if m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) partName(a client.Annotation) string {
	if a.CarPartName != "" {
		return a.CarPartName
	}
	for _, p := range m.state.CarParts {
		if p.ID == a.CarPartID {
			return p.Name
		}
	}
	return fmt.Sprintf("部件%d", a.CarPartID)
}

func (m *Model) boxWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 4
}

// Run 启动终端审核界面
func Run(ctx context.Context, backend Backend, referenceNo string) error {
	p := tea.NewProgram(NewModel(ctx, backend, referenceNo), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("review ui: %w", err)
	}
	return nil
}
