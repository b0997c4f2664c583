package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
)

const tripChat = `17/10/2024, 3:36 p. m. - Ann: Location: https://maps.google.com/?q=20.672598,-100.446259
17/10/2024, 3:37 p. m. - Ann: tacos al pastor
17/10/2024, 3:50 p. m. - Bob: <attached: 00000007-PHOTO-2024-10-17-15-50-00.jpg>
17/10/2024, 3:51 p. m. - Bob: Location: https://maps.google.com/?q=-31.006037,-64.262794
`

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "chatmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeExport(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func indexOpts() Options {
	return Options{Pairing: chatmap.DefaultOptions(), MaxBytes: 1 << 20}
}

func TestIndexAll(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	chat := filepath.Join(root, "trip", "_chat.txt")
	writeExport(t, chat, tripChat)
	writeExport(t, filepath.Join(root, "notes.txt"), "nothing to see here\n")
	writeExport(t, filepath.Join(root, "broken.json"), "{")

	stats, err := IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 3, Updated: 1, Empty: 1, Errors: 1}, stats)

	n, err := db.FeatureCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := db.GetMapByKey(chat)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "WhatsApp", m.Source)
	assert.Equal(t, 4, m.Messages)
	assert.Equal(t, 2, m.Features)
	assert.NotEmpty(t, m.SessionID)
	assert.Equal(t, "2024-10-17T15:37:00Z", m.FirstAt)
	assert.Equal(t, "2024-10-17T15:50:00Z", m.LastAt)

	features, err := db.GetFeatures(chat)
	require.NoError(t, err)
	require.Len(t, features, 2)

	ann := features[0]
	assert.Equal(t, 0, ann.FeatureID)
	assert.Equal(t, 1, ann.Related)
	assert.Equal(t, "text", ann.Kind)
	assert.Equal(t, "tacos al pastor", ann.Text)
	assert.Equal(t, 2, ann.LineNumber)
	assert.InDelta(t, 20.672598, ann.Lat, 1e-9)

	bob := features[1]
	assert.Equal(t, "image", bob.Kind)
	assert.Equal(t, "00000007-PHOTO-2024-10-17-15-50-00.jpg", bob.Text)

	raw, err := db.MapGeoJSON(chat)
	require.NoError(t, err)
	var fc chatmap.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))
	assert.Equal(t, m.SessionID, fc.SessionID)
	assert.Len(t, fc.Features, 2)
}

func TestIndexAll_SkipsUnchangedAndPrunes(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	chat := filepath.Join(root, "_chat.txt")
	writeExport(t, chat, tripChat)

	_, err := IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)

	stats, err := IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Updated)

	// a touched file is rebuilt
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(chat, later, later))
	stats, err = IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	require.NoError(t, os.Remove(chat))
	stats, err = IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	n, err := db.MapCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = db.FeatureCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListMapsAndWindow(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "a.txt"), tripChat)

	_, err := IndexAll(context.Background(), db, root, indexOpts())
	require.NoError(t, err)

	maps, err := db.ListMaps("", 10)
	require.NoError(t, err)
	require.Len(t, maps, 1)

	maps, err = db.ListMaps("Telegram", 10)
	require.NoError(t, err)
	assert.Empty(t, maps)

	key := filepath.Join(root, "a.txt")
	window, hit, err := db.GetFeaturesWindow(key, 3, 0)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, 0, hit)
	assert.Equal(t, 3, window[0].FeatureID)

	window, hit, err = db.GetFeaturesWindow(key, 99, 1)
	require.NoError(t, err)
	assert.Len(t, window, 2)
	assert.Equal(t, -1, hit)

	missing, err := db.GetMapByKey("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
