package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinding_KindMismatch(t *testing.T) {
	_, err := NewBinding("b1", UserID("u1"), CourseID("c1"), KindUser, KindTicket)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = NewBinding("b1", CourseID("u1"), CourseID("c1"), KindUser, KindCourse)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestNewBindingFromRaw(t *testing.T) {
	b, err := NewBindingFromRaw("b1", "u1", "c1", KindUser, KindCourse)
	require.NoError(t, err)

	assert.Equal(t, UserID("u1"), b.Src)
	assert.Equal(t, CourseID("c1"), b.Dest)

	_, err = NewBindingFromRaw("b1", "u1", "c1", KindUser, Kind("planet"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBinding_EqualIgnoresID(t *testing.T) {
	a, err := NewBindingFromRaw("b1", "u1", "c1", KindUser, KindCourse)
	require.NoError(t, err)
	b, err := NewBindingFromRaw("b2", "u1", "c1", KindUser, KindCourse)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.EdgeKey(), b.EdgeKey())
}

func TestBinding_NotEqualAcrossKinds(t *testing.T) {
	a, err := NewBindingFromRaw("b1", "x", "y", KindUser, KindCourse)
	require.NoError(t, err)
	b, err := NewBindingFromRaw("b1", "x", "y", KindUser, KindTicket)
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.EdgeKey(), b.EdgeKey())
}

func TestEdgeKey_SeparatesParts(t *testing.T) {
	a := EdgeKey(UserID("ab"), CourseID("c"), KindUser, KindCourse)
	b := EdgeKey(UserID("a"), CourseID("bc"), KindUser, KindCourse)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}

func TestBinding_JSONUsesBareStrings(t *testing.T) {
	b, err := NewBindingFromRaw("b1", "u1", "c1", KindUser, KindCourse)
	require.NoError(t, err)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b1","src":"u1","dest":"c1","src_kind":"user","dest_kind":"course"}`, string(data))

	var decoded Binding
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
}

func TestBinding_UnmarshalRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing id":   `{"src":"u1","dest":"c1","src_kind":"user","dest_kind":"course"}`,
		"unknown kind": `{"id":"b1","src":"u1","dest":"c1","src_kind":"user","dest_kind":"planet"}`,
		"empty dest":   `{"id":"b1","src":"u1","dest":"","src_kind":"user","dest_kind":"course"}`,
		"not json":     `{"id":`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var b Binding
			assert.Error(t, json.Unmarshal([]byte(input), &b))
		})
	}
}
