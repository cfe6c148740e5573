package momento

import (
	"time"

	"github.com/pior/momento/wire"
)

// Item is a scalar cache entry.
type Item struct {
	Key   string
	Value []byte
	TTL   time.Duration // zero selects the client default on writes
	Found bool          // indicates whether the key was found in cache
}

// ItemType is the kind of value stored under a key.
type ItemType int

const (
	ItemTypeScalar ItemType = iota + 1
	ItemTypeDictionary
	ItemTypeSet
	ItemTypeList
	ItemTypeSortedSet
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeScalar:
		return "scalar"
	case ItemTypeDictionary:
		return "dictionary"
	case ItemTypeSet:
		return "set"
	case ItemTypeList:
		return "list"
	case ItemTypeSortedSet:
		return "sorted-set"
	default:
		return "unknown"
	}
}

// TTLUpdateResult is the outcome of UpdateTTL, IncreaseTTL and DecreaseTTL.
type TTLUpdateResult int

const (
	// TTLUpdated means the new TTL was applied.
	TTLUpdated TTLUpdateResult = iota
	// TTLNotUpdated means the condition of IncreaseTTL or DecreaseTTL did
	// not hold.
	TTLNotUpdated
	// TTLMiss means the key does not exist.
	TTLMiss
)

func (r TTLUpdateResult) String() string {
	switch r {
	case TTLUpdated:
		return "Set"
	case TTLNotUpdated:
		return "NotSet"
	default:
		return "Miss"
	}
}

// SortOrder of sorted set and leaderboard reads.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) toWire() wire.Order {
	if o == Descending {
		return wire.Descending
	}
	return wire.Ascending
}

// IndexRange selects elements by position, like a Python slice: Start is
// inclusive, End exclusive, negative values count from the end and nil
// leaves a side unbounded. The zero value selects everything.
type IndexRange struct {
	Start *int32
	End   *int32
}

// Between selects [start, end).
func Between(start, end int32) IndexRange {
	return IndexRange{Start: &start, End: &end}
}

// From selects start and everything after it.
func From(start int32) IndexRange {
	return IndexRange{Start: &start}
}

// UpTo selects everything before end.
func UpTo(end int32) IndexRange {
	return IndexRange{End: &end}
}

func (r IndexRange) validate() error {
	if r.Start != nil && r.End != nil && *r.Start >= 0 && *r.End >= 0 && *r.End <= *r.Start {
		return invalidArgument("end index (%d) must be greater than start index (%d)", *r.End, *r.Start)
	}
	return nil
}

// ScoreRange selects sorted set elements by score. Bounds are inclusive
// unless marked exclusive; nil leaves a side unbounded.
type ScoreRange struct {
	Min          *float64
	MinExclusive bool
	Max          *float64
	MaxExclusive bool
}

// Scores selects scores in [min, max].
func Scores(lo, hi float64) ScoreRange {
	return ScoreRange{Min: &lo, Max: &hi}
}

func (r ScoreRange) validate() error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return invalidArgument("min score (%g) must not be greater than max score (%g)", *r.Min, *r.Max)
	}
	return nil
}
