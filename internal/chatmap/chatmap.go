package chatmap

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/chatmap/internal/parse"
)

// Result is one export turned into a map.
type Result struct {
	Name       string
	Meta       parse.ExportMeta
	Messages   []parse.Message
	Collection *FeatureCollection
	// IDSpan is one past the largest record id, used to offset ids when
	// results are merged.
	IDSpan int
}

// Sources lists the chat apps the result was built from.
func (r *Result) Sources() []string {
	if len(r.Meta.Sources) > 0 {
		return r.Meta.Sources
	}
	if r.Meta.Format == parse.FormatGeoJSON {
		return nil
	}
	return []string{r.Meta.Format.String()}
}

// Build detects the export format of text, parses it and pairs its
// locations. Collections previously written by this tool are rebuilt as they
// are.
func Build(text string, opts Options, popts ...parse.Option) (*Result, error) {
	format := parse.Detect(text)
	res, err := parse.Parse(format, text, popts...)
	if err != nil {
		return nil, err
	}

	r := &Result{Meta: res.Meta, Messages: res.Messages}
	if format == parse.FormatGeoJSON {
		r.Collection = Rebuild(res.Messages, opts)
		r.Collection.SessionID = res.Meta.SessionID
	} else {
		r.Collection = NewSession(res.Messages, res.Locate(), opts).Pair()
	}
	r.Collection.Sources = r.Sources()

	for _, m := range res.Messages {
		r.IDSpan = max(r.IDSpan, m.ID+1)
		// re-imported content ids often run past the location ids
		if m.Related != nil {
			r.IDSpan = max(r.IDSpan, *m.Related+1)
		}
	}
	return r, nil
}

// Rebuild turns re-imported records back into features without pairing them
// again. Content that opts now exclude is dropped, leaving the point.
func Rebuild(messages []parse.Message, opts Options) *FeatureCollection {
	fc := newCollection()
	for i := range messages {
		m := &messages[i]
		if m.Location == nil || !m.Location.Valid() || !m.HasTime() {
			continue
		}
		if m.Related == nil || !opts.eligible(m) {
			fc.Features = append(fc.Features, locationOnlyFeature(*m.Location, m))
			continue
		}
		f := pairedFeature(*m.Location, m.ID, m)
		related := *m.Related
		f.Properties.Related = &related
		fc.Features = append(fc.Features, f)
	}
	return fc
}

// Input is one export to import.
type Input struct {
	Name string
	Text string
}

// Import builds every input on its own goroutine, each with its own session.
// Results keep the input order.
func Import(ctx context.Context, inputs []Input, opts Options, popts ...parse.Option) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Build(in.Text, opts, popts...)
			if err != nil {
				return fmt.Errorf("build %s: %w", in.Name, err)
			}
			r.Name = in.Name
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge joins results into one collection. Ids of later results are offset
// by the id span of earlier ones so they stay unique. The session id of a
// re-imported collection is kept, otherwise a new one is generated.
func Merge(results []*Result) *FeatureCollection {
	fc := newCollection()
	seen := make(map[string]bool)
	offset := 0

	for _, r := range results {
		if fc.SessionID == "" && r.Meta.SessionID != "" {
			fc.SessionID = r.Meta.SessionID
		}
		for _, src := range r.Sources() {
			if !seen[src] {
				seen[src] = true
				fc.Sources = append(fc.Sources, src)
			}
		}

		for _, f := range r.Collection.Features {
			f.Properties.ID += offset
			if f.Properties.Related != nil {
				related := *f.Properties.Related + offset
				f.Properties.Related = &related
			}
			fc.Features = append(fc.Features, f)
		}
		offset += r.IDSpan
	}

	if fc.SessionID == "" {
		fc.SessionID = uuid.NewString()
	}
	return fc
}
