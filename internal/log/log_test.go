package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestEntriesCarryContext(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals("uid", "u-alice")
		Security(c, "validation.fail", map[string]any{"field": "q"})
		Error(c, "server.error", errors.New("boom"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	sec := entries[0]
	assert.Equal(t, "warn", sec["level"])
	assert.Equal(t, "security", sec["kind"])
	assert.Equal(t, "validation.fail", sec["action"])
	assert.Equal(t, "GET", sec["method"])
	assert.Equal(t, "/x", sec["path"])
	assert.Equal(t, "rid-1", sec["req_id"])
	assert.Equal(t, "u-alice", sec["user_id"])
	assert.Equal(t, map[string]any{"field": "q"}, sec["fields"])

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["err"])
}

func TestSetLevelFiltersAndBackgroundEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	defer SetLevel("info")

	SetLevel("warn")
	BgInfo("catalog.refresh", nil)
	BgWarn("catalog.aggregate", errors.New("dummyjson down"), map[string]any{"sources": 1})

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "catalog.aggregate", entries[0]["action"])
	assert.Equal(t, "dummyjson down", entries[0]["err"])
	assert.NotContains(t, entries[0], "path")

	buf.Reset()
	SetLevel("nonsense")
	BgInfo("catalog.refresh", nil)
	assert.Len(t, lines(t, &buf), 1)
}
