package parser

import (
	"fmt"
)

// Event is a diagnostic emitted while parsing. Parsing never fails, so events
// are the only way to see why a field fell back to its default.
type Event struct {
	Stage   string
	Message string
	Fields  map[string]interface{}
}

// TraceFunc receives parse diagnostics.
type TraceFunc func(Event)

// Option configures a Parse call.
type Option func(*run)

// WithTrace installs a diagnostic hook. Without one, Parse emits nothing.
func WithTrace(fn TraceFunc) Option {
	return func(r *run) { r.trace = fn }
}

type run struct {
	trace TraceFunc
}

func (r *run) emit(stage, msg string, fields map[string]interface{}) {
	if r.trace == nil {
		return
	}
	// a failing hook must not take the parse down with it
	defer func() { _ = recover() }()
	r.trace(Event{Stage: stage, Message: msg, Fields: fields})
}

// guard runs one extractor. A panic is reported and leaves the field at its
// default; it never reaches the caller.
func (r *run) guard(stage string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.emit(stage, "extractor panicked", map[string]interface{}{"panic": fmt.Sprint(p)})
		}
	}()
	fn()
}

// Parse turns a free-text sustainability analysis into a Report. It accepts
// any input, including empty or unrelated text, and always returns a fully
// populated value.
func Parse(text string, opts ...Option) Report {
	r := &run{}
	for _, opt := range opts {
		opt(r)
	}

	text = normalize(text)
	rep := defaultReport()

	var sections Sections
	r.guard("sections", func() {
		sections = Split(text)
		if len(sections.spans) == 0 {
			r.emit("sections", "no section headers found", nil)
		}
	})

	r.guard("product_name", func() {
		if v, ok := firstValue(productNameRe, text); ok {
			rep.ProductName = v
		}
	})
	r.guard("brand", func() {
		if v, ok := brandOutside(text, sections); ok {
			rep.Brand = v
		}
	})
	r.guard("category", func() {
		if v, ok := firstValue(categoryRe, text); ok {
			rep.Category = v
		}
	})
	r.guard("score", func() {
		s := extractScore(text)
		switch {
		case s.found:
			rep.Score = s.value
		case s.rejected != "":
			r.emit("score", "score out of range, using default", map[string]interface{}{"raw": s.rejected, "default": DefaultScore})
		}
	})

	r.guard("sub_scores", func() {
		body, ok := sections.Text(SectionScoreDetails)
		if !ok {
			body = text
		}
		rep.SubScores = extractSubScores(body, func(name, raw string) {
			r.emit("sub_scores", "sub-score rejected", map[string]interface{}{"component": name, "raw": raw})
		})
	})

	r.guard("pros", func() {
		if body, ok := sections.Text(SectionPros); ok {
			rep.Pros = Bullets(body)
		}
	})
	r.guard("cons", func() {
		if body, ok := sections.Text(SectionCons); ok {
			rep.Cons = Bullets(body)
		}
	})

	r.guard("alternatives", func() {
		body, ok := sections.Text(SectionAlternatives)
		if !ok {
			return
		}
		res := runCascade(body)
		if len(res.entries) == 0 {
			r.emit("alternatives", "no strategy produced entries", nil)
			return
		}
		rep.Alternatives = res.entries
		rep.AlternativesStrategy = res.strategy
		if len(res.entries) < res.numbered {
			r.emit("alternatives", "strategy matched only part of the list", map[string]interface{}{
				"strategy": res.strategy, "entries": len(res.entries), "numbered": res.numbered,
			})
		}
		for _, i := range nonSequential(res.entries) {
			r.emit("alternatives", "non-sequential index", map[string]interface{}{"position": i + 1, "index": res.entries[i].Index})
		}
	})

	r.guard("tips", func() {
		body, ok := sections.Text(SectionTips)
		if !ok {
			return
		}
		groups := TipGroups(body)
		if v := groups[TipRecycling]; v != nil {
			rep.Tips.Recycling = v
		}
		if v := groups[TipReduceImpact]; v != nil {
			rep.Tips.ReduceImpact = v
		}
		if v := groups[TipBetterChoices]; v != nil {
			rep.Tips.BetterChoices = v
		}
	})

	r.guard("verdict", func() {
		if body, ok := sections.Text(SectionVerdict); ok {
			rep.Verdict = extractVerdict(body)
		}
	})

	rep.ScoreLabel = Classify(rep.Score)
	rep.ScoreTier = TierFor(rep.Score)
	rep.ScoreEmoji = EmojiFor(rep.ScoreLabel)
	return rep
}
