package apply

import (
	"errors"
	"testing"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allInOne exposes every capability so priority can be observed.
type allInOne struct {
	hasChars  bool
	hasLegacy bool
	setErr    error

	chars  string
	setter string
	legacy string
}

func (n *allInOne) ID() string { return "all" }
func (n *allInOne) HasCharacters() bool { return n.hasChars }
func (n *allInOne) SetCharacters(text string) { n.chars = text }
func (n *allInOne) SetText(text string) error { n.setter = text; return n.setErr }
func (n *allInOne) HasLegacyText() bool { return n.hasLegacy }
func (n *allInOne) SetLegacyText(text string) { n.legacy = text }

type legacyOnly struct {
	text string
}

func (n *legacyOnly) ID() string { return "legacy" }
func (n *legacyOnly) HasLegacyText() bool { return n.text != "" }
func (n *legacyOnly) SetLegacyText(text string) { n.text = text }

type bare struct{}

func (bare) ID() string { return "bare" }

type explosive struct{}

func (explosive) ID() string { return "boom" }
func (explosive) SetText(string) error { panic("detached node") }

func TestApply_PropertyFirst(t *testing.T) {
	n := &allInOne{hasChars: true, hasLegacy: true}

	pathway, err := Apply(n, "hello")

	require.NoError(t, err)
	assert.Equal(t, PathwayProperty, pathway)
	assert.Equal(t, "hello", n.chars)
	assert.Empty(t, n.setter)
	assert.Empty(t, n.legacy)
}

func TestApply_SetterWhenPropertyAbsent(t *testing.T) {
	n := &allInOne{hasChars: false, hasLegacy: true}

	pathway, err := Apply(n, "hello")

	require.NoError(t, err)
	assert.Equal(t, PathwaySetter, pathway)
	assert.Equal(t, "hello", n.setter)
	assert.Empty(t, n.chars)
	assert.Empty(t, n.legacy)
}

func TestApply_Legacy(t *testing.T) {
	n := &legacyOnly{text: "old"}

	pathway, err := Apply(n, "new")

	require.NoError(t, err)
	assert.Equal(t, PathwayLegacy, pathway)
	assert.Equal(t, "new", n.text)
}

func TestApply_EmptyLegacyIsUnwritable(t *testing.T) {
	_, err := Apply(&legacyOnly{}, "new")

	var ue *domain.UnwritableElementError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "legacy", ue.Element)
}

func TestApply_NoCapability(t *testing.T) {
	_, err := Apply(bare{}, "x")

	var ue *domain.UnwritableElementError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "bare", ue.Element)
	assert.Nil(t, ue.Unwrap())
}

func TestApply_SetterError(t *testing.T) {
	cause := errors.New("read-only")
	n := &allInOne{setErr: cause}

	pathway, err := Apply(n, "x")

	assert.Equal(t, PathwaySetter, pathway)
	assert.ErrorIs(t, err, cause)
}

func TestApply_HostPanicBecomesError(t *testing.T) {
	_, err := Apply(explosive{}, "x")

	var ue *domain.UnwritableElementError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, err.Error(), "detached node")
}

func TestWriterFor(t *testing.T) {
	_, ok := WriterFor(bare{})
	assert.False(t, ok)

	w, ok := WriterFor(&allInOne{hasChars: true})
	require.True(t, ok)
	assert.Equal(t, PathwayProperty, w.Pathway())
}
