package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/index"
)

const chatA = `17/10/2024, 3:36 p. m. - Ann: Location: https://maps.google.com/?q=20.672598,-100.446259
17/10/2024, 3:37 p. m. - Ann: tacos al pastor near the plaza
17/10/2024, 3:50 p. m. - Bob: 北京烤鸭 tacos
17/10/2024, 3:51 p. m. - Bob: Location: https://maps.google.com/?q=-31.006037,-64.262794
`

const chatB = `[13/11/24, 10:00:00] Cy: more tacos
[13/11/24, 10:01:00] Cy: Location: https://maps.google.com/?q=40.416775,-3.703790
`

func setup(t *testing.T) *index.DB {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte(chatA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte(chatB), 0o644))

	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = index.IndexAll(context.Background(), db, root, index.Options{Pairing: chatmap.DefaultOptions()})
	require.NoError(t, err)
	return db
}

func TestSearch_FTS(t *testing.T) {
	db := setup(t)

	results, err := Search(db, Options{Query: "tacos"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.Contains(t, r.Snippet, ">>>tacos<<<")
	}

	results, err = Search(db, Options{Query: "tacos", Username: "Ann"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].FeatureID)
	assert.Equal(t, "WhatsApp", results[0].Source)
	assert.Equal(t, 2, results[0].LineNumber)
	assert.InDelta(t, -100.446259, results[0].Lon, 1e-9)

	results, err = Search(db, Options{Query: "tacos", PerMap: true})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = Search(db, Options{Query: "tacos", Since: "2024-11-01"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cy", results[0].Username)
}

func TestSearch_CJK(t *testing.T) {
	db := setup(t)

	results, err := Search(db, Options{Query: "烤鸭"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0].Username)
	assert.Contains(t, results[0].Snippet, ">>>烤鸭<<<")
}

func TestSearch_Punctuation(t *testing.T) {
	db := setup(t)

	_, err := Search(db, Options{Query: `al-pastor "plaza`})
	require.NoError(t, err)

	_, err = Search(db, Options{Query: "  "})
	assert.Error(t, err)
}

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "...b >>>tacos<<< a...", makeSnippet("aaaa b tacos a bbbb", "tacos", 2))
	assert.Equal(t, "short", makeSnippet("short", "missing", 10))
}

func TestListAll(t *testing.T) {
	db := setup(t)

	results, err := ListAll(db, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Cy", results[0].Username)
	assert.Equal(t, "more tacos", results[0].Snippet)

	results, err = ListAll(db, Options{Username: "Bob", Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "text", results[0].Kind)
	assert.Equal(t, 3, results[0].LineNumber)
}
