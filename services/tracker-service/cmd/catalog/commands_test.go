package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCountriesCmd(t *testing.T) {
	out, err := execute(t, "countries")
	require.NoError(t, err)
	for _, code := range []string{"sg", "my", "ph", "us"} {
		assert.Contains(t, out, code)
	}
	assert.NotContains(t, out, "global")
}

func TestMarketplacesCmd(t *testing.T) {
	out, err := execute(t, "marketplaces", "--country", "ph", "--json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "https://shopee.ph", rows[0]["url"])
	assert.Equal(t, "https://www.lazada.com.ph", rows[1]["url"])

	out, err = execute(t, "marketplaces", "--country", "jp")
	require.NoError(t, err)
	assert.Contains(t, out, "jp")
}

func TestURLCmd(t *testing.T) {
	out, err := execute(t, "url", "lazada", "--country", "MY")
	require.NoError(t, err)
	assert.Equal(t, "https://www.lazada.com.my", strings.TrimSpace(out))

	_, err = execute(t, "url", "ebay")
	assert.ErrorIs(t, err, utils.ErrMarketplaceNotFound)

	_, err = execute(t, "url")
	assert.Error(t, err)
}
