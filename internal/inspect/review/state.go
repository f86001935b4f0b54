// Package review 审核界面状态
//
// 状态迁移是纯函数：Transition 返回新状态和需要执行的副作用（Intent），
// 由外部执行器（终端界面）完成网络请求后再以事件形式回送。
package review

import "github.com/bitfantasy/nimo-inspect/internal/inspect/client"

// Phase 图片列表加载阶段
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State 审核界面状态
type State struct {
	ReferenceNo string
	Phase       Phase
	Images      []client.AnnotatedImage
	Index       int
	Err         string

	Annotations        []client.Annotation
	AnnotationsLoading bool
	AnnotationsErr     string

	CarParts []client.CarPart
}

// Current 当前图片，没有图片时返回 false
func (s State) Current() (client.AnnotatedImage, bool) {
	if s.Index < 0 || s.Index >= len(s.Images) {
		return client.AnnotatedImage{}, false
	}
	return s.Images[s.Index], true
}

// Event 外部输入
type Event interface{ isEvent() }

// Start 打开参考号
type Start struct{ ReferenceNo string }

// ImagesLoaded 图片列表返回
type ImagesLoaded struct {
	ReferenceNo string
	Images      []client.AnnotatedImage
}

// ImagesFailed 图片列表请求失败
type ImagesFailed struct {
	ReferenceNo string
	Err         error
}

// Next 下一张
type Next struct{}

// Prev 上一张
type Prev struct{}

// Select 跳转到指定序号
type Select struct{ Index int }

// AnnotationsLoaded 损伤评估列表返回
type AnnotationsLoaded struct {
	ImageName string
	Items     []client.Annotation
}

// AnnotationsFailed 损伤评估请求失败
type AnnotationsFailed struct {
	ImageName string
	Err       error
}

// AnnotationSaved 新增/修改已提交
type AnnotationSaved struct{ ImageName string }

// AnnotationDeleted 删除已提交
type AnnotationDeleted struct{ ID uint }

// CarPartsLoaded 部件列表返回
type CarPartsLoaded struct{ Parts []client.CarPart }

func (Start) isEvent()             {}
func (ImagesLoaded) isEvent()      {}
func (ImagesFailed) isEvent()      {}
func (Next) isEvent()              {}
func (Prev) isEvent()              {}
func (Select) isEvent()            {}
func (AnnotationsLoaded) isEvent() {}
func (AnnotationsFailed) isEvent() {}
func (AnnotationSaved) isEvent()   {}
func (AnnotationDeleted) isEvent() {}
func (CarPartsLoaded) isEvent()    {}

// Intent 需要执行的副作用
type Intent interface{ isIntent() }

// FetchImages 拉取参考号下的图片
type FetchImages struct{ ReferenceNo string }

// FetchAnnotations 拉取某张图片的损伤评估
type FetchAnnotations struct {
	ReferenceNo string
	ImageName   string
}

// FetchCarParts 拉取部件列表
type FetchCarParts struct{}

func (FetchImages) isIntent()      {}
func (FetchAnnotations) isIntent() {}
func (FetchCarParts) isIntent()    {}

// Transition 纯状态迁移，不修改入参
func Transition(s State, ev Event) (State, []Intent) {
	switch e := ev.(type) {
	case Start:
		next := State{
			ReferenceNo: e.ReferenceNo,
			Phase:       PhaseLoading,
			CarParts:    s.CarParts,
		}
		intents := []Intent{FetchImages{ReferenceNo: e.ReferenceNo}}
		if len(s.CarParts) == 0 {
			intents = append(intents, FetchCarParts{})
		}
		return next, intents

	case ImagesLoaded:
		if e.ReferenceNo != s.ReferenceNo {
			return s, nil
		}
		if len(e.Images) == 0 {
			s.Phase = PhaseFailed
			s.Err = "No images found for this reference"
			s.Images = nil
			return s, nil
		}
		s.Phase = PhaseReady
		s.Err = ""
		s.Images = e.Images
		s.Index = 0
		return s.selectCurrent()

	case ImagesFailed:
		if e.ReferenceNo != s.ReferenceNo {
			return s, nil
		}
		s.Phase = PhaseFailed
		s.Err = errText(e.Err)
		return s, nil

	case Next:
		return s.moveTo(s.Index + 1)
	case Prev:
		return s.moveTo(s.Index - 1)
	case Select:
		return s.moveTo(e.Index)

	case AnnotationsLoaded:
		if cur, ok := s.Current(); !ok || cur.ImageName != e.ImageName {
			// 翻页后迟到的响应
			return s, nil
		}
		s.Annotations = e.Items
		s.AnnotationsLoading = false
		s.AnnotationsErr = ""
		return s, nil

	case AnnotationsFailed:
		if cur, ok := s.Current(); !ok || cur.ImageName != e.ImageName {
			return s, nil
		}
		s.Annotations = nil
		s.AnnotationsLoading = false
		s.AnnotationsErr = errText(e.Err)
		return s, nil

	case AnnotationSaved:
		if cur, ok := s.Current(); !ok || cur.ImageName != e.ImageName {
			return s, nil
		}
		return s.selectCurrent()

	case AnnotationDeleted:
		if _, ok := s.Current(); !ok {
			return s, nil
		}
		return s.selectCurrent()

	case CarPartsLoaded:
		s.CarParts = e.Parts
		return s, nil
	}
	return s, nil
}

// moveTo 越界时夹到两端，序号不变则不发请求
func (s State) moveTo(index int) (State, []Intent) {
	if s.Phase != PhaseReady || len(s.Images) == 0 {
		return s, nil
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.Images)-1 {
		index = len(s.Images) - 1
	}
	if index == s.Index {
		return s, nil
	}
	s.Index = index
	return s.selectCurrent()
}

func (s State) selectCurrent() (State, []Intent) {
	cur, ok := s.Current()
	if !ok {
		return s, nil
	}
	s.Annotations = nil
	s.AnnotationsLoading = true
	s.AnnotationsErr = ""
	return s, []Intent{FetchAnnotations{ReferenceNo: s.ReferenceNo, ImageName: cur.ImageName}}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
