package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/search"
)

func sampleResults(n int) []search.Result {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			MapKey:    "chat.txt",
			FeatureID: i,
			Source:    "WhatsApp",
			Username:  "Ann",
			Chat:      "Trip",
			Ts:        "2024-10-17T15:36:00Z",
			Lat:       20.672598,
			Lon:       -100.446259,
			Kind:      "image",
			Snippet:   "tacos >>>al<<< pastor",
		}
	}
	return results
}

func TestCopyPicked(t *testing.T) {
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })

	var copied string
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	r := sampleResults(1)[0]
	var out bytes.Buffer
	require.NoError(t, copyPicked(&out, r, false))
	assert.Equal(t, "20.672598,-100.446259", copied)
	assert.Equal(t, "Copied to clipboard: 20.672598,-100.446259\n", out.String())

	out.Reset()
	require.NoError(t, copyPicked(&out, r, true))
	assert.Equal(t, "https://maps.google.com/?q=20.672598,-100.446259", copied)

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	out.Reset()
	require.NoError(t, copyPicked(&out, r, false))
	assert.Equal(t, "20.672598,-100.446259\n", out.String())
}

func TestShiftKind(t *testing.T) {
	assert.Equal(t, "text", shiftKind("", 1))
	assert.Equal(t, "location", shiftKind("", -1))
	assert.Equal(t, "", shiftKind("location", 1))
	assert.Equal(t, "image", shiftKind("text", 1))
	// unknown filters restart from "all"
	assert.Equal(t, "text", shiftKind("sticker", 1))

	assert.Equal(t, "photo", kindLabel("image"))
	assert.Equal(t, "location only", kindLabel("location"))
	assert.Equal(t, "all", kindLabel(""))
}

func TestFeatureRow(t *testing.T) {
	r := sampleResults(1)[0]
	lines := featureRow(r, 60, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "img")
	assert.Contains(t, lines[0], "10-17 15:36")
	assert.Contains(t, lines[0], "Ann")
	assert.Contains(t, lines[0], "20.672598,-100.446259")
	assert.Contains(t, lines[1], "tacos al pastor")
	assert.NotContains(t, lines[1], ">>>")

	narrow := featureRow(r, 30, false)
	assert.NotContains(t, narrow[0], "20.672598")

	r.Snippet, r.Ts = "", ""
	bare := featureRow(r, 60, false)
	assert.Contains(t, bare[0], "-----------")
	assert.Contains(t, bare[1], "Trip")
}

func TestScrollOffset(t *testing.T) {
	assert.Equal(t, 5, scrollOffset(7, 0, 3))
	assert.Equal(t, 2, scrollOffset(2, 5, 3))
	assert.Equal(t, 4, scrollOffset(5, 4, 3))
}

func TestFeatureCard(t *testing.T) {
	card := featureCard(sampleResults(1)[0], 40)
	assert.Contains(t, card, "Ann · Trip")
	assert.Contains(t, card, "[WhatsApp]")
	assert.Contains(t, card, "2024-10-17 15:36")
	assert.Contains(t, card, "photo")
	assert.Contains(t, card, "https://maps.google.com/?q=20.672598,-100.446259")
	assert.Contains(t, card, "tacos al pastor")

	undated := sampleResults(1)[0]
	undated.Ts = ""
	assert.Contains(t, featureCard(undated, 0), "no date")
}

func TestRenderPreview(t *testing.T) {
	root := t.TempDir()
	body := strings.Join([]string{
		"17/10/2024, 3:36 p. m. - Ann: Location: https://maps.google.com/?q=20.672598,-100.446259",
		"17/10/2024, 3:37 p. m. - Ann: tacos al pastor",
		"17/10/2024, 3:40 p. m. - Bob: Location: https://maps.google.com/?q=-31.006037,-64.262794",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "_chat.txt"), []byte(body), 0o644))

	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatmap.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = index.IndexAll(context.Background(), db, root, index.Options{Pairing: chatmap.DefaultOptions()})
	require.NoError(t, err)

	points, err := search.ListAll(db, search.Options{Username: "Bob"})
	require.NoError(t, err)
	require.Len(t, points, 1)

	out := renderPreview(db, points[0], "", 60)
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "location only")
	assert.Contains(t, out, "https://maps.google.com/?q=-31.006037,-64.262794")
	assert.Contains(t, out, "nearby points")
	assert.Contains(t, out, "tacos al pastor")

	missing := points[0]
	missing.MapKey = "gone.txt"
	gone := renderPreview(db, missing, "", 60)
	assert.Contains(t, gone, "Bob")
	assert.NotContains(t, gone, "nearby points")
}

func TestUpdate_CopyKeysPickFeature(t *testing.T) {
	m := newModel(nil, "", search.Options{}, true)
	m.features = sampleResults(3)
	m.cursor = 1

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	fm := next.(model)
	require.NotNil(t, fm.picked)
	assert.Equal(t, 1, fm.picked.FeatureID)
	assert.False(t, fm.link)
	assert.True(t, fm.quitting)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.True(t, next.(model).link)

	empty := newModel(nil, "", search.Options{}, true)
	next, cmd = empty.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, next.(model).picked)
}

func TestUpdate_KindTabsRefetch(t *testing.T) {
	m := newModel(nil, "tacos", search.Options{Kind: "audio"}, false)
	assert.Equal(t, "audio", m.kind)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.Equal(t, "location", next.(model).kind)

	next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "video", next.(model).kind)
}

func TestUpdate_StaleResultsIgnored(t *testing.T) {
	m := newModel(nil, "tacos", search.Options{Kind: "image"}, false)

	next, _ := m.Update(resultsMsg{query: "taco", kind: "image", features: sampleResults(2)})
	assert.Empty(t, next.(model).features)

	// switched kind after the request went out
	next, _ = m.Update(resultsMsg{query: "tacos", kind: "text", features: sampleResults(2)})
	assert.Empty(t, next.(model).features)

	next, cmd := m.Update(resultsMsg{query: "tacos", kind: "image", features: sampleResults(2)})
	assert.Len(t, next.(model).features, 2)
	assert.NotNil(t, cmd)

	next, _ = next.(model).Update(resultsMsg{query: "tacos", kind: "image", err: errors.New("boom")})
	assert.Empty(t, next.(model).features)
	assert.Contains(t, next.(model).statusLine(), "boom")
}

func TestUpdate_PreviewForCurrentFeatureOnly(t *testing.T) {
	m := newModel(nil, "", search.Options{}, true)
	m.features = sampleResults(2)

	next, _ := m.Update(previewMsg{key: "chat.txt#1", content: "other"})
	assert.Empty(t, next.(model).shown)

	next, _ = m.Update(previewMsg{key: "chat.txt#0", content: "card"})
	assert.Equal(t, "chat.txt#0", next.(model).shown)
	// already on screen, nothing to load
	assert.Nil(t, next.(model).loadPreview())
}

func TestUpdate_MoveClampsAndScrolls(t *testing.T) {
	m := newModel(nil, "", search.Options{}, true)
	m.height = 10 // three rows visible
	m.features = sampleResults(10)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Nil(t, cmd)

	var next tea.Model = m
	for i := 0; i < 4; i++ {
		next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 4, next.(model).cursor)
	assert.Equal(t, 2, next.(model).offset)

	next, _ = next.(model).Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 5, next.(model).cursor)
}

func TestUpdate_TypingDebounces(t *testing.T) {
	m := newModel(nil, "", search.Options{}, false)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	require.NotNil(t, cmd)
	assert.Equal(t, "t", next.(model).query)

	_, cmd = next.(model).Update(debounceMsg{query: "old"})
	assert.Nil(t, cmd)
}
