package suggest

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/i474232898/weather-narrator/internal/weather"
)

// Bucket is one of the fixed weather groupings suggestions are keyed by.
type Bucket string

const (
	BucketClear  Bucket = "clear"
	BucketCloudy Bucket = "cloudy"
	BucketRain   Bucket = "rain"
	BucketSnow   Bucket = "snow"
	BucketStorm  Bucket = "thunderstorm"
	BucketFog    Bucket = "fog"
	BucketOther  Bucket = "other"
)

// bucketNeedles is checked in priority order against the dominant
// category text; the first bucket with a substring match wins and
// BucketOther is the catch-all.
var bucketNeedles = []struct {
	bucket  Bucket
	needles []string
}{
	{BucketClear, []string{"clear", "sun"}},
	{BucketCloudy, []string{"cloud"}},
	{BucketRain, []string{"rain", "drizzle"}},
	{BucketSnow, []string{"snow"}},
	{BucketStorm, []string{"thunder", "storm"}},
	{BucketFog, []string{"fog", "mist"}},
}

// Table holds one language's suggestion strings.
type Table struct {
	// Buckets maps each weather bucket to its three candidates.
	Buckets map[Bucket][]string
	// Conditional extras.
	Hot  string // daily max above 30°C
	Cold string // daily min below 5°C
	Wet  string // precipitation peak above 50%
	// Filler pads the result when fewer than three candidates exist.
	Filler string
}

const (
	hotThresholdC   = 30
	coldThresholdC  = 5
	wetThresholdPct = 50
	resultCount     = 3
)

// Selector picks activity suggestions for a forecast summary. The
// random source is injected so tests can assert deterministic
// selections; the zero threshold behaviour is fixed.
type Selector struct {
	mu     sync.Mutex
	rng    *rand.Rand
	tables map[string]Table
}

// NewSelector creates a Selector with the built-in English and Chinese
// tables. src must not be nil.
func NewSelector(src rand.Source) *Selector {
	tables := make(map[string]Table, len(builtinTables))
	for lang, t := range builtinTables {
		tables[lang] = t
	}
	return &Selector{
		rng:    rand.New(src),
		tables: tables,
	}
}

// RegisterTable adds or replaces the suggestion table for a language
// tag, allowing arbitrary languages beyond the built-ins.
func (s *Selector) RegisterTable(lang string, t Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[strings.ToLower(lang)] = t
}

// Select returns exactly three non-empty suggestion strings for the
// summary, localized by language tag. Ordering after random selection
// is not significant.
func (s *Selector) Select(sum weather.ForecastSummary, lang string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.tableFor(lang)
	bucket := MatchBucket(sum.DominantCategory)

	candidates := append([]string(nil), table.Buckets[bucket]...)

	if v, ok := parseTemp(sum.TempMax); ok && v > hotThresholdC && table.Hot != "" {
		candidates = append(candidates, table.Hot)
	}
	if v, ok := parseTemp(sum.TempMin); ok && v < coldThresholdC && table.Cold != "" {
		candidates = append(candidates, table.Cold)
	}
	if sum.MaxPrecip > wetThresholdPct && table.Wet != "" {
		candidates = append(candidates, table.Wet)
	}

	if len(candidates) > resultCount {
		picked := make([]string, 0, resultCount)
		for _, idx := range s.rng.Perm(len(candidates))[:resultCount] {
			picked = append(picked, candidates[idx])
		}
		candidates = picked
	}
	for len(candidates) < resultCount {
		candidates = append(candidates, table.Filler)
	}
	return candidates
}

// tableFor resolves a language tag: exact match, then primary subtag,
// then English.
func (s *Selector) tableFor(lang string) Table {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if t, ok := s.tables[lang]; ok {
		return t
	}
	if primary, _, found := strings.Cut(lang, "-"); found {
		if t, ok := s.tables[primary]; ok {
			return t
		}
	}
	return s.tables["en"]
}

// MatchBucket maps dominant-category text to its weather bucket by
// case-insensitive substring matching in priority order.
func MatchBucket(category string) Bucket {
	category = strings.ToLower(category)
	for _, entry := range bucketNeedles {
		if containsAny(category, entry.needles...) {
			return entry.bucket
		}
	}
	return BucketOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseTemp reads a numeric temperature string; the "unknown" sentinel
// (or any garbage) reports false and disables the threshold check.
func parseTemp(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
