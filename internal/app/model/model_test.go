package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelSize(t *testing.T) {
	for _, s := range []string{"tiny", "base", "small", "medium", "large"} {
		size, err := ParseModelSize(s)
		require.NoError(t, err)
		assert.Equal(t, ModelSize(s), size)
	}

	for _, s := range []string{"", "Base", "huge", "large-v3"} {
		_, err := ParseModelSize(s)
		assert.Error(t, err, s)
	}
}

func TestDefaultModelSize(t *testing.T) {
	assert.Equal(t, ModelBase, DefaultModelSize)
	assert.Len(t, ModelSizes(), 5)
}
