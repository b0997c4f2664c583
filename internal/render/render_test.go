package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/index"
)

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abcd", "ef"}, wrapLine("abcdef", 4))
	assert.Equal(t, []string{"abcdef"}, wrapLine("abcdef", 0))
	// wide runes take two columns; escapes take none
	assert.Equal(t, []string{"\033[1m烤鸭", "北京\033[0m"}, wrapLine("\033[1m烤鸭北京\033[0m", 4))
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Tacos and more tacos", "tacos AND")
	assert.Equal(t, colorBoldRed+"Tacos"+colorReset+" and more "+colorBoldRed+"tacos"+colorReset, got)
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestFormatCoords(t *testing.T) {
	assert.Equal(t, "20.672598,-100.446259", FormatCoords(20.672598, -100.446259))
}

func TestRenderMap(t *testing.T) {
	root := t.TempDir()
	chat := filepath.Join(root, "_chat.txt")
	body := strings.Join([]string{
		"17/10/2024, 3:36 p. m. - Ann: Location: https://maps.google.com/?q=20.672598,-100.446259",
		"17/10/2024, 3:37 p. m. - Ann: tacos al pastor",
		"17/10/2024, 3:40 p. m. - Bob: Location: https://maps.google.com/?q=-31.006037,-64.262794",
		"17/10/2024, 3:45 p. m. - Cy: IMG-1.jpg (file attached)",
		"17/10/2024, 3:46 p. m. - Cy: Location: https://maps.google.com/?q=40.416775,-3.703790",
	}, "\n")
	require.NoError(t, os.WriteFile(chat, []byte(body), 0o644))

	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatmap.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = index.IndexAll(context.Background(), db, root, index.Options{Pairing: chatmap.DefaultOptions()})
	require.NoError(t, err)

	out, hitLine, err := RenderMap(db, chat, Options{HitFeatureID: 2, Context: -1, Query: "tacos"})
	require.NoError(t, err)

	assert.Contains(t, out, "[WhatsApp] 3 points")
	assert.Contains(t, out, FormatCoords(-31.006037, -64.262794))
	assert.Contains(t, out, "location only")
	assert.Contains(t, out, colorBoldRed+"tacos"+colorReset)
	assert.Contains(t, out, "IMG-1.jpg")

	lines := strings.Split(out, "\n")
	require.Greater(t, hitLine, 0)
	assert.Contains(t, lines[hitLine], ">> #2 LOCATION > Bob")

	out, _, err = RenderMap(db, chat, Options{HitFeatureID: 4, Context: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "(1 points before)")
	assert.NotContains(t, out, "tacos")

	_, _, err = RenderMap(db, "missing", Options{HitFeatureID: -1})
	assert.Error(t, err)
}
