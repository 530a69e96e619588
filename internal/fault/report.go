package fault

import (
	"sort"

	"github.com/phuslu/log"
)

// Entry is an aggregated recoverable problem.
type Entry struct {
	Kind   Kind
	Stage  string
	Field  string
	Count  int
	Detail string
}

// Fill counts missing entries a stage filled in one column.
type Fill struct {
	Stage  string
	Column string
	Count  int
}

type entryKey struct {
	kind  Kind
	stage string
	field string
}

type fillKey struct {
	stage  string
	column string
}

// Report collects the non-fatal problems and fills of one run. The zero
// value is ready to use. It is not safe for concurrent use.
type Report struct {
	entries map[entryKey]*Entry
	fills   map[fillKey]int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records n occurrences of a problem. Occurrences with the same kind,
// stage and field are summed; the first detail is kept.
func (r *Report) Add(kind Kind, stage, field string, n int, detail string) {
	if n <= 0 {
		return
	}
	if r.entries == nil {
		r.entries = make(map[entryKey]*Entry)
	}
	k := entryKey{kind, stage, field}
	if e, ok := r.entries[k]; ok {
		e.Count += n
		return
	}
	r.entries[k] = &Entry{Kind: kind, Stage: stage, Field: field, Count: n, Detail: detail}
}

// Filled records that a stage forward-filled n entries of a column.
func (r *Report) Filled(stage, column string, n int) {
	if n <= 0 {
		return
	}
	if r.fills == nil {
		r.fills = make(map[fillKey]int)
	}
	r.fills[fillKey{stage, column}] += n
}

// Entries returns the aggregated problems ordered by kind, stage and field.
func (r *Report) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Fills returns fill counts ordered by stage and column.
func (r *Report) Fills() []Fill {
	out := make([]Fill, 0, len(r.fills))
	for k, n := range r.fills {
		out = append(out, Fill{Stage: k.stage, Column: k.column, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Count returns the total occurrences of a kind.
func (r *Report) Count(kind Kind) int {
	total := 0
	for k, e := range r.entries {
		if k.kind == kind {
			total += e.Count
		}
	}
	return total
}

// TotalFilled returns the number of entries filled across all stages.
func (r *Report) TotalFilled() int {
	total := 0
	for _, n := range r.fills {
		total += n
	}
	return total
}

// Degraded reports whether anything was recorded besides fills.
func (r *Report) Degraded() bool {
	return len(r.entries) > 0
}

// Log writes the report once.
func (r *Report) Log() {
	for _, e := range r.Entries() {
		log.Warn().
			Str("kind", e.Kind.String()).
			Str("stage", e.Stage).
			Str("field", e.Field).
			Int("count", e.Count).
			Msg(e.Detail)
	}
	log.Info().
		Int("partial", r.Count(PartialDataWarning)).
		Int("coerced_missing", r.Count(NumericCoercionFailure)).
		Int("filled", r.TotalFilled()).
		Msg("run data-quality summary")
}
