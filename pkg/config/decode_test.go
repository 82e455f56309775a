package config

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJVMOptsRoundTrip(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("-Xmx512m -Xms512m"))
	got, err := DecodeJVMOpts(raw)
	require.NoError(t, err)
	assert.Equal(t, "-Xmx512m -Xms512m", got)
}

func TestDecodeJVMOptsQuotedAndEscaped(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("-Dfoo=bar1"))
	require.Contains(t, encoded, "=")
	wrapped := `"` + strings.ReplaceAll(encoded, "=", "&equals;") + `"`
	got, err := DecodeJVMOpts(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "-Dfoo=bar1", got)
}

func TestDecodeJVMOptsEmpty(t *testing.T) {
	got, err := DecodeJVMOpts("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeJVMOptsInvalidBase64(t *testing.T) {
	_, err := DecodeJVMOpts("not-valid-base64!!!")
	require.Error(t, err)
}

func TestDecodeComponentJVMOptsRoundTrip(t *testing.T) {
	inner := map[string]string{
		base64.StdEncoding.EncodeToString([]byte("S")): base64.StdEncoding.EncodeToString([]byte("-Xmx256m")),
		base64.StdEncoding.EncodeToString([]byte("B")): base64.StdEncoding.EncodeToString([]byte("-Xmx512m")),
	}
	innerJSON, err := json.Marshal(inner)
	require.NoError(t, err)
	raw := base64.StdEncoding.EncodeToString(innerJSON)

	got, err := DecodeComponentJVMOpts(raw)
	require.NoError(t, err)
	assert.Equal(t, "-Xmx256m", got["S"])
	assert.Equal(t, "-Xmx512m", got["B"])
}

func TestDecodeComponentJVMOptsEmpty(t *testing.T) {
	got, err := DecodeComponentJVMOpts("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeComponentJVMOptsMalformedJSON(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("not json"))
	_, err := DecodeComponentJVMOpts(raw)
	require.Error(t, err)
}

func TestParseComponentRAMMap(t *testing.T) {
	got, err := ParseComponentRAMMap("S:314572800,B:629145600")
	require.NoError(t, err)
	assert.Equal(t, int64(314572800), got["S"])
	assert.Equal(t, int64(629145600), got["B"])
}

func TestParseComponentRAMMapEmpty(t *testing.T) {
	got, err := ParseComponentRAMMap("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseComponentRAMMapMalformed(t *testing.T) {
	_, err := ParseComponentRAMMap("S-314572800")
	require.Error(t, err)
}

func TestParseComponentRAMMapNonIntegerBytes(t *testing.T) {
	_, err := ParseComponentRAMMap("S:not-a-number")
	require.Error(t, err)
}
