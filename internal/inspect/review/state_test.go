package review

import (
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(names ...string) []client.AnnotatedImage {
	out := make([]client.AnnotatedImage, len(names))
	for i, n := range names {
		out[i] = client.AnnotatedImage{ReferenceNo: "REF1", ImageName: n}
	}
	return out
}

func ready(t *testing.T, names ...string) State {
	t.Helper()
	s, _ := Transition(State{}, Start{ReferenceNo: "REF1"})
	s, intents := Transition(s, ImagesLoaded{ReferenceNo: "REF1", Images: images(names...)})
	require.Equal(t, PhaseReady, s.Phase)
	require.Equal(t, []Intent{FetchAnnotations{ReferenceNo: "REF1", ImageName: names[0]}}, intents)
	return s
}

func TestStartRequestsImagesAndCarParts(t *testing.T) {
	s, intents := Transition(State{}, Start{ReferenceNo: "REF1"})
	assert.Equal(t, PhaseLoading, s.Phase)
	assert.Equal(t, []Intent{FetchImages{ReferenceNo: "REF1"}, FetchCarParts{}}, intents)

	s, _ = Transition(s, CarPartsLoaded{Parts: []client.CarPart{{ID: 1, Name: "Door"}}})
	_, intents = Transition(s, Start{ReferenceNo: "REF2"})
	assert.Equal(t, []Intent{FetchImages{ReferenceNo: "REF2"}}, intents)
}

func TestNavigationClampsAndFetchesOnlyOnChange(t *testing.T) {
	s := ready(t, "a.jpg", "b.jpg", "c.jpg")

	s, intents := Transition(s, Prev{})
	assert.Equal(t, 0, s.Index)
	assert.Empty(t, intents)

	s, intents = Transition(s, Next{})
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, []Intent{FetchAnnotations{ReferenceNo: "REF1", ImageName: "b.jpg"}}, intents)
	assert.True(t, s.AnnotationsLoading)

	s, intents = Transition(s, Select{Index: 99})
	assert.Equal(t, 2, s.Index)
	assert.Equal(t, []Intent{FetchAnnotations{ReferenceNo: "REF1", ImageName: "c.jpg"}}, intents)

	s, intents = Transition(s, Next{})
	assert.Equal(t, 2, s.Index)
	assert.Empty(t, intents)

	s, intents = Transition(s, Select{Index: -5})
	assert.Equal(t, 0, s.Index)
	assert.Len(t, intents, 1)
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := ready(t, "a.jpg", "b.jpg")
	before := s
	_, _ = Transition(s, Next{})
	assert.Equal(t, before, s)
}

func TestEmptyImageListFails(t *testing.T) {
	s, _ := Transition(State{}, Start{ReferenceNo: "REF1"})
	s, intents := Transition(s, ImagesLoaded{ReferenceNo: "REF1"})
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.NotEmpty(t, s.Err)
	assert.Empty(t, intents)

	s, intents = Transition(s, Next{})
	assert.Empty(t, intents)
}

func TestImagesFailed(t *testing.T) {
	s, _ := Transition(State{}, Start{ReferenceNo: "REF1"})
	s, _ = Transition(s, ImagesFailed{ReferenceNo: "REF1", Err: errors.New("boom")})
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, "boom", s.Err)
}

func TestStaleResponsesAreIgnored(t *testing.T) {
	s := ready(t, "a.jpg", "b.jpg")
	s, _ = Transition(s, Next{})

	// a.jpg 的响应在翻页后才到达
	s, _ = Transition(s, AnnotationsLoaded{ImageName: "a.jpg", Items: []client.Annotation{{ID: 1}}})
	assert.True(t, s.AnnotationsLoading)
	assert.Empty(t, s.Annotations)

	s, _ = Transition(s, AnnotationsLoaded{ImageName: "b.jpg", Items: []client.Annotation{{ID: 2}}})
	assert.False(t, s.AnnotationsLoading)
	assert.Equal(t, []client.Annotation{{ID: 2}}, s.Annotations)

	// 其他参考号的图片列表
	s2, intents := Transition(s, ImagesLoaded{ReferenceNo: "OTHER", Images: images("x.jpg")})
	assert.Equal(t, s, s2)
	assert.Empty(t, intents)
}

func TestAnnotationsFailed(t *testing.T) {
	s := ready(t, "a.jpg")
	s, _ = Transition(s, AnnotationsFailed{ImageName: "a.jpg", Err: errors.New("unavailable")})
	assert.False(t, s.AnnotationsLoading)
	assert.Equal(t, "unavailable", s.AnnotationsErr)
}

func TestEditsRefetchCurrentImage(t *testing.T) {
	s := ready(t, "a.jpg", "b.jpg")
	s, _ = Transition(s, AnnotationsLoaded{ImageName: "a.jpg"})

	_, intents := Transition(s, AnnotationSaved{ImageName: "a.jpg"})
	assert.Equal(t, []Intent{FetchAnnotations{ReferenceNo: "REF1", ImageName: "a.jpg"}}, intents)

	_, intents = Transition(s, AnnotationSaved{ImageName: "b.jpg"})
	assert.Empty(t, intents)

	_, intents = Transition(s, AnnotationDeleted{ID: 3})
	assert.Equal(t, []Intent{FetchAnnotations{ReferenceNo: "REF1", ImageName: "a.jpg"}}, intents)
}

func TestCurrent(t *testing.T) {
	_, ok := State{}.Current()
	assert.False(t, ok)

	s := ready(t, "a.jpg")
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, "a.jpg", cur.ImageName)
}
