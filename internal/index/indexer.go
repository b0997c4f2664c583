package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/parse"
	"github.com/Zuo-Peng/chatmap/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

type Options struct {
	Pairing  chatmap.Options
	Ignore   []string
	MaxBytes int64
}

// IndexAll builds a map for every export under root that changed since the
// last run, and prunes maps whose files are gone. Exports are built in
// parallel; writes are serialized.
func IndexAll(ctx context.Context, db *DB, root string, opts Options) (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoot(root, opts.MaxBytes)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	var pending []scan.FileInfo
	for _, fi := range files {
		seenKeys[fi.Path] = struct{}{}

		needs, err := needsUpdate(db, fi.Path, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}
		pending = append(pending, fi)
	}

	results := make([]*chatmap.Result, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, fi := range pending {
		i, fi := i, fi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := buildFile(fi.Path, opts)
			if err != nil {
				// one bad export must not stop the others
				slog.Warn("build failed", "path", fi.Path, "err", err)
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, fi := range pending {
		r := results[i]
		switch {
		case r == nil:
			stats.Errors++
			delete(seenKeys, fi.Path)
			continue
		case len(r.Collection.Features) == 0:
			stats.Empty++
			slog.Debug("no locations found", "path", fi.Path)
			delete(seenKeys, fi.Path)
			continue
		}

		if err := indexMap(db, fi, r); err != nil {
			stats.Errors++
			slog.Warn("index failed", "path", fi.Path, "err", err)
			continue
		}
		stats.Updated++
	}

	// prune maps whose files no longer exist or no longer yield a map
	pruned, err := pruneMaps(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func buildFile(path string, opts Options) (*chatmap.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := chatmap.Build(string(data), opts.Pairing, parse.WithIgnore(opts.Ignore...))
	if err != nil {
		return nil, err
	}
	r.Name = path
	return r, nil
}

func needsUpdate(db *DB, mapKey string, mtime, size int64) (bool, error) {
	info, err := db.GetMapInfo(mapKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new map
	}
	return info.Mtime != mtime || info.Size != size, nil
}

// Kind classifies a feature for display and filtering.
func Kind(f *chatmap.Feature) string {
	switch {
	case f.LocationOnly():
		return "location"
	case f.Properties.FileType != parse.FileNone:
		return string(f.Properties.FileType)
	default:
		return "text"
	}
}

// featureText is the searchable text of a feature.
func featureText(f *chatmap.Feature) string {
	p := f.Properties
	switch {
	case p.File != "" && p.Message != "":
		return p.File + " " + p.Message
	case p.File != "":
		return p.File
	case p.Message != "":
		return p.Message
	default:
		return p.Note
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func indexMap(db *DB, fi scan.FileInfo, r *chatmap.Result) error {
	lines := make(map[int]int, len(r.Messages))
	for _, m := range r.Messages {
		lines[m.ID] = m.LineNumber
	}

	fc := r.Collection
	if fc.SessionID == "" {
		// standalone maps get their own id so exports can be re-imported
		fc = chatmap.Merge([]*chatmap.Result{r})
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}

	var first, last time.Time
	for _, f := range fc.Features {
		ts := f.Properties.Time
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}

	// delete old data first
	if err := db.DeleteMap(fi.Path); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO maps (map_key, source, file_path, chat, session_id, messages, first_at, last_at, geojson, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.Path,
		r.Meta.Format.String(),
		fi.Path,
		r.Meta.Chat,
		fc.SessionID,
		len(r.Messages),
		formatTime(first),
		formatTime(last),
		string(raw),
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO features (map_key, feature_id, related, lat, lon, ts, username, kind, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range fc.Features {
		f := &fc.Features[i]
		related := -1
		line := lines[f.Properties.ID]
		if f.Properties.Related != nil {
			related = *f.Properties.Related
			if l := lines[related]; l > 0 {
				line = l
			}
		}
		loc := f.Location()
		_, err := stmt.Exec(
			fi.Path,
			f.Properties.ID,
			related,
			loc.Lat,
			loc.Lon,
			formatTime(f.Properties.Time),
			f.Properties.Username,
			Kind(f),
			featureText(f),
			line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneMaps(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllMapKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteMap(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
