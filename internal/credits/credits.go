// Package credits implements the per-tick attribution accumulator of spec
// §4.6: hit counting by scope and credit id, resolved at end of tick into a
// sorted, token-substituted list for the renderer's overlay.
package credits

import (
	"sort"
	"strconv"
	"strings"

	"github.com/melowntech/vtscore/internal/mapconfig"
)

// Scope distinguishes where a credit hit originated (spec §4.6).
type Scope int

const (
	ScopeImagery Scope = iota
	ScopeData
)

func (s Scope) String() string {
	if s == ScopeImagery {
		return "imagery"
	}
	return "data"
}

// entry tracks one credit id's accumulated hits within a tick.
type entry struct {
	id     int
	hits   int
	maxLod int
}

// Accumulator collects hits during one traversal tick and resolves them
// into a flat, sorted credit list (original_source credits.cpp: a
// sorted-by-id vector per scope, folded and re-sorted by hits at the end
// of the frame).
type Accumulator struct {
	byScope [2]map[int]*entry
	year    int // substituted for the "{Y}" token; set by New
}

// New creates an empty accumulator. year is substituted for the literal
// "{Y}" token in credit notices (spec §4.6); callers typically pass the
// wall-clock year once at startup, since timestamps may not be derived
// from inside deterministic tick logic.
func New(year int) *Accumulator {
	return &Accumulator{
		byScope: [2]map[int]*entry{
			ScopeImagery: make(map[int]*entry),
			ScopeData:    make(map[int]*entry),
		},
		year: year,
	}
}

// Hit records one attribution hit for creditId at the given lod (spec
// §4.6: "hit(scope, creditId, lod) inserts or updates a {hits, maxLod}
// entry"). Unknown ids are recorded here and silently dropped at Resolve
// time if they're absent from the dictionary.
func (a *Accumulator) Hit(scope Scope, creditID int, lod int) {
	m := a.byScope[scope]
	e, ok := m[creditID]
	if !ok {
		e = &entry{id: creditID}
		m[creditID] = e
	}
	e.hits++
	if lod > e.maxLod {
		e.maxLod = lod
	}
}

// Credit is one resolved, renderer-facing attribution entry.
type Credit struct {
	Scope  Scope
	ID     int
	Notice string
	Hits   int
	MaxLod int
}

// Resolve converts this tick's accumulated hits into a sorted credit list,
// substituting "{copy}" -> "©" and "{Y}" -> the configured year, and
// silently dropping ids absent from dict (spec §4.6). Call once per tick,
// after traversal has finished; Reset clears the accumulator for the next
// tick.
func (a *Accumulator) Resolve(dict map[int]mapconfig.Credit) []Credit {
	var out []Credit
	for scope := range a.byScope {
		for id, e := range a.byScope[scope] {
			def, ok := dict[id]
			if !ok {
				continue
			}
			out = append(out, Credit{
				Scope:  Scope(scope),
				ID:     id,
				Notice: substitute(def.Notice, a.year),
				Hits:   e.hits,
				MaxLod: e.maxLod,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hits > out[j].Hits })
	return out
}

// Reset clears accumulated hits, starting a new tick's tally.
func (a *Accumulator) Reset() {
	a.byScope[ScopeImagery] = make(map[int]*entry)
	a.byScope[ScopeData] = make(map[int]*entry)
}

// substitute performs the original's literal two-token replacement (not a
// general template engine, per original_source credits.cpp): "{copy}"
// becomes the copyright sign, "{Y}" becomes the configured year.
func substitute(notice string, year int) string {
	notice = strings.ReplaceAll(notice, "{copy}", "©")
	notice = strings.ReplaceAll(notice, "{Y}", strconv.Itoa(year))
	return notice
}
