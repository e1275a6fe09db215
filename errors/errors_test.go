package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestWrapFormatsContext(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, "canonical", "Parse", "keyword decode")
	require.Error(t, err)
	assert.Equal(t, "canonical.Parse: keyword decode failed: boom", err.Error())
	assert.True(t, stderrors.Is(err, base))

	assert.NoError(t, Wrap(nil, "a", "b", "c"))
}

func TestClassifiedWrappers(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap(base, "graph", "Fetch", "http get")
			require.Error(t, err)

			var ce *ClassifiedError
			require.True(t, stderrors.As(err, &ce))
			assert.Equal(t, tt.class, ce.Class)
			assert.Equal(t, "graph", ce.Component)
			assert.True(t, stderrors.Is(err, base))
			assert.Equal(t, tt.class, Classify(err))
		})
	}
}

func TestDomainErrorClassification(t *testing.T) {
	assert.True(t, IsInvalid(ErrInvalidSchema))
	assert.True(t, IsInvalid(ErrUnsupportedKeyword))
	assert.True(t, IsInvalid(fmt.Errorf("context: %w", ErrRecursiveRef)))
	assert.True(t, IsTransient(ErrGraphLoad))
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsFatal(nil))
}

func TestRecursiveRefError(t *testing.T) {
	schema := map[string]any{"$ref": "#"}
	err := NewRecursiveRef(SideLeft, schema)

	assert.Equal(t, "LHS schema contains an unsupported recursive reference", err.Error())
	assert.True(t, stderrors.Is(err, ErrRecursiveRef))
	assert.True(t, IsInvalid(err))

	var rre *RecursiveRefError
	require.True(t, stderrors.As(fmt.Errorf("canonicalize: %w", err), &rre))
	assert.Equal(t, SideLeft, rre.Side)
	assert.Equal(t, schema, rre.Schema)
}
