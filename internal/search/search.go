package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatmap/internal/index"
)

type Result struct {
	MapKey     string
	FeatureID  int
	Source     string
	Chat       string
	Username   string
	Ts         string
	Lat        float64
	Lon        float64
	Kind       string
	Snippet    string
	LineNumber int
	Rank       float64
}

type Options struct {
	Query    string
	Source   string // "" = all, "WhatsApp", "Telegram", "Signal", "GeoJSON"
	Username string // "" = all
	Kind     string // "" = all, "text", "image", "video", "audio", "location"
	Since    string // "" = no filter, e.g. "2024-01-01"
	Limit    int
	PerMap   bool // keep only the best hit of each map
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	runes := []rune(text)
	if idx < 0 || len(lower) != len(text) {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// fetch more before dedup so enough remain after
	origLimit := opts.Limit
	if opts.PerMap {
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.PerMap {
		return results, nil
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.MapKey] {
			continue
		}
		seen[r.MapKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.Source != "" {
		conditions = append(conditions, "m.source = ?")
		args = append(args, opts.Source)
	}
	if opts.Username != "" {
		conditions = append(conditions, "f.username = ?")
		args = append(args, opts.Username)
	}
	if opts.Kind != "" {
		conditions = append(conditions, "f.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Since != "" {
		conditions = append(conditions, "f.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

const resultColumns = `f.map_key, f.feature_id, m.source, m.chat, f.username, f.ts, f.lat, f.lon, f.kind`

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"features_fts MATCH ?"}
	args := []any{ftsQuery(opts.Query)}
	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(features_fts, 0, '>>>','<<<', '...', 40) as snip,
			f.line_number,
			bm25(features_fts, 1.0) as rank
		FROM features_fts
		JOIN features f ON features_fts.rowid = f.rowid
		JOIN maps m ON f.map_key = m.map_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ftsQuery quotes each term so punctuation in chat text ("p.m.", URLs) is not
// read as FTS5 syntax.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"f.text LIKE ?"}
	args := []any{"%" + opts.Query + "%"}
	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT %s, f.text, f.line_number
		FROM features f
		JOIN maps m ON f.map_key = m.map_key
		WHERE %s
		ORDER BY f.ts DESC
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.MapKey, &r.FeatureID, &r.Source, &r.Chat, &r.Username,
			&r.Ts, &r.Lat, &r.Lon, &r.Kind, &fullText, &r.LineNumber,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.MapKey, &r.FeatureID, &r.Source, &r.Chat, &r.Username,
			&r.Ts, &r.Lat, &r.Lon, &r.Kind, &r.Snippet, &r.LineNumber, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns features newest first without a text query. Filters in
// opts still apply; Query is ignored.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 200
	}
	conditions, args := filters(opts)
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, f.text, f.line_number
		FROM features f
		JOIN maps m ON f.map_key = m.map_key
		%s
		ORDER BY f.ts DESC, f.map_key, f.feature_id
		LIMIT ?
	`, resultColumns, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.MapKey, &r.FeatureID, &r.Source, &r.Chat, &r.Username,
			&r.Ts, &r.Lat, &r.Lon, &r.Kind, &r.Snippet, &r.LineNumber,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
