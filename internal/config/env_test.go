package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("FFT_BATCH", "yes")
	t.Setenv("FFT_CODE_SERVER", "fmt-server  --stdio")
	t.Setenv("FFT_CLANG_FORMAT", " clang-format-17 ")
	t.Setenv("FFT_GIT_BACKEND", "go-git")

	p := Defaults()
	require.NoError(t, ApplyEnv(&p, "FFT_", "/work"))
	assert.True(t, p.Batch)
	assert.Equal(t, []string{"fmt-server", "--stdio"}, p.CodeServer)
	assert.Equal(t, "clang-format-17", p.ClangFormat)
	assert.Equal(t, BackendGoGit, p.GitBackend)
	assert.Zero(t, p.LineLength)
}

func TestApplyEnvEmptyLineLengthClears(t *testing.T) {
	t.Setenv("FFT_LINE_LENGTH", " ")
	p := Defaults()
	p.LineLength = 100
	require.NoError(t, ApplyEnv(&p, "FFT_", ""))
	assert.Zero(t, p.LineLength)
}

func TestApplyEnvInvalidBool(t *testing.T) {
	t.Setenv("FFT_BATCH", "maybe")
	p := Defaults()
	require.Error(t, ApplyEnv(&p, "FFT_", ""))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "on"} {
		b, err := parseBool(v)
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	for _, v := range []string{"0", "false", "No", "off"} {
		b, err := parseBool(v)
		require.NoError(t, err)
		assert.False(t, b, v)
	}
	_, err := parseBool("perhaps")
	require.Error(t, err)
}
