package wire

// CollectionTTL travels with every collection write.
type CollectionTTL struct {
	TTLMillis uint64 `cbor:"1,keyasint"`
	Refresh   bool   `cbor:"2,keyasint"`
}

type FieldValue struct {
	Field []byte `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}

type DictionaryFetchRequest struct {
	DictionaryName []byte `cbor:"1,keyasint"`
}

type DictionaryFetchResponse struct {
	Found bool         `cbor:"1,keyasint"`
	Items []FieldValue `cbor:"2,keyasint,omitempty"`
}

type DictionaryGetRequest struct {
	DictionaryName []byte   `cbor:"1,keyasint"`
	Fields         [][]byte `cbor:"2,keyasint"`
}

// DictionaryGetPart is the lookup result of one requested field.
type DictionaryGetPart struct {
	Found bool   `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint,omitempty"`
}

type DictionaryGetResponse struct {
	Found bool                `cbor:"1,keyasint"`
	Items []DictionaryGetPart `cbor:"2,keyasint,omitempty"`
}

type DictionarySetRequest struct {
	DictionaryName []byte        `cbor:"1,keyasint"`
	Items          []FieldValue  `cbor:"2,keyasint"`
	TTL            CollectionTTL `cbor:"3,keyasint"`
}

type DictionaryIncrementRequest struct {
	DictionaryName []byte        `cbor:"1,keyasint"`
	Field          []byte        `cbor:"2,keyasint"`
	Amount         int64         `cbor:"3,keyasint"`
	TTL            CollectionTTL `cbor:"4,keyasint"`
}

type DictionaryIncrementResponse struct {
	Value int64 `cbor:"1,keyasint"`
}

type DictionaryDeleteRequest struct {
	DictionaryName []byte   `cbor:"1,keyasint"`
	Fields         [][]byte `cbor:"2,keyasint"`
}

type DictionaryLengthRequest struct {
	DictionaryName []byte `cbor:"1,keyasint"`
}

// LengthResponse answers every collection length call.
type LengthResponse struct {
	Found  bool   `cbor:"1,keyasint"`
	Length uint32 `cbor:"2,keyasint,omitempty"`
}

type SetUnionRequest struct {
	SetName  []byte        `cbor:"1,keyasint"`
	Elements [][]byte      `cbor:"2,keyasint"`
	TTL      CollectionTTL `cbor:"3,keyasint"`
}

type SetDifferenceRequest struct {
	SetName  []byte   `cbor:"1,keyasint"`
	Elements [][]byte `cbor:"2,keyasint"`
}

type SetFetchRequest struct {
	SetName []byte `cbor:"1,keyasint"`
}

type SetFetchResponse struct {
	Found    bool     `cbor:"1,keyasint"`
	Elements [][]byte `cbor:"2,keyasint,omitempty"`
}

type SetLengthRequest struct {
	SetName []byte `cbor:"1,keyasint"`
}

type ListPushRequest struct {
	ListName       []byte        `cbor:"1,keyasint"`
	Value          []byte        `cbor:"2,keyasint"`
	Front          bool          `cbor:"3,keyasint"`
	TruncateToSize uint32        `cbor:"4,keyasint,omitempty"`
	TTL            CollectionTTL `cbor:"5,keyasint"`
}

type ListConcatenateRequest struct {
	ListName       []byte        `cbor:"1,keyasint"`
	Values         [][]byte      `cbor:"2,keyasint"`
	Front          bool          `cbor:"3,keyasint"`
	TruncateToSize uint32        `cbor:"4,keyasint,omitempty"`
	TTL            CollectionTTL `cbor:"5,keyasint"`
}

// ListLengthResponse is returned by list writes.
type ListLengthResponse struct {
	ListLength uint32 `cbor:"1,keyasint"`
}

type ListPopRequest struct {
	ListName []byte `cbor:"1,keyasint"`
	Front    bool   `cbor:"2,keyasint"`
}

type ListPopResponse struct {
	Found      bool   `cbor:"1,keyasint"`
	Value      []byte `cbor:"2,keyasint,omitempty"`
	ListLength uint32 `cbor:"3,keyasint,omitempty"`
}

// ListFetchRequest uses Python-style slice bounds; nil means unbounded.
type ListFetchRequest struct {
	ListName   []byte `cbor:"1,keyasint"`
	StartIndex *int32 `cbor:"2,keyasint,omitempty"`
	EndIndex   *int32 `cbor:"3,keyasint,omitempty"`
}

type ListFetchResponse struct {
	Found  bool     `cbor:"1,keyasint"`
	Values [][]byte `cbor:"2,keyasint,omitempty"`
}

type ListLengthRequest struct {
	ListName []byte `cbor:"1,keyasint"`
}

type ListRemoveRequest struct {
	ListName []byte `cbor:"1,keyasint"`
	Value    []byte `cbor:"2,keyasint"`
}

// Order of sorted set and leaderboard reads.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

type SortedSetElement struct {
	Value []byte  `cbor:"1,keyasint"`
	Score float64 `cbor:"2,keyasint"`
}

type SortedSetPutRequest struct {
	SetName  []byte             `cbor:"1,keyasint"`
	Elements []SortedSetElement `cbor:"2,keyasint"`
	TTL      CollectionTTL      `cbor:"3,keyasint"`
}

type RankRange struct {
	Start *int32 `cbor:"1,keyasint,omitempty"`
	End   *int32 `cbor:"2,keyasint,omitempty"`
}

// ScoreRange bounds are inclusive unless marked exclusive; nil is unbounded.
type ScoreRange struct {
	Min          *float64 `cbor:"1,keyasint,omitempty"`
	MinExclusive bool     `cbor:"2,keyasint,omitempty"`
	Max          *float64 `cbor:"3,keyasint,omitempty"`
	MaxExclusive bool     `cbor:"4,keyasint,omitempty"`
	Offset       uint32   `cbor:"5,keyasint,omitempty"`
	Count        *int32   `cbor:"6,keyasint,omitempty"`
}

type SortedSetFetchRequest struct {
	SetName []byte      `cbor:"1,keyasint"`
	Order   Order       `cbor:"2,keyasint"`
	ByRank  *RankRange  `cbor:"3,keyasint,omitempty"`
	ByScore *ScoreRange `cbor:"4,keyasint,omitempty"`
}

type SortedSetFetchResponse struct {
	Found    bool               `cbor:"1,keyasint"`
	Elements []SortedSetElement `cbor:"2,keyasint,omitempty"`
}

type SortedSetGetScoreRequest struct {
	SetName []byte   `cbor:"1,keyasint"`
	Values  [][]byte `cbor:"2,keyasint"`
}

type ScorePart struct {
	Found bool    `cbor:"1,keyasint"`
	Score float64 `cbor:"2,keyasint,omitempty"`
}

type SortedSetGetScoreResponse struct {
	Found  bool        `cbor:"1,keyasint"`
	Scores []ScorePart `cbor:"2,keyasint,omitempty"`
}

type SortedSetGetRankRequest struct {
	SetName []byte `cbor:"1,keyasint"`
	Value   []byte `cbor:"2,keyasint"`
	Order   Order  `cbor:"3,keyasint"`
}

type SortedSetGetRankResponse struct {
	Found bool   `cbor:"1,keyasint"`
	Rank  uint64 `cbor:"2,keyasint,omitempty"`
}

type SortedSetRemoveRequest struct {
	SetName []byte   `cbor:"1,keyasint"`
	Values  [][]byte `cbor:"2,keyasint"`
}

type SortedSetIncrementRequest struct {
	SetName []byte        `cbor:"1,keyasint"`
	Value   []byte        `cbor:"2,keyasint"`
	Amount  float64       `cbor:"3,keyasint"`
	TTL     CollectionTTL `cbor:"4,keyasint"`
}

type SortedSetIncrementResponse struct {
	Score float64 `cbor:"1,keyasint"`
}

type SortedSetLengthRequest struct {
	SetName []byte `cbor:"1,keyasint"`
}

type SortedSetLengthByScoreRequest struct {
	SetName      []byte   `cbor:"1,keyasint"`
	Min          *float64 `cbor:"2,keyasint,omitempty"`
	MinExclusive bool     `cbor:"3,keyasint,omitempty"`
	Max          *float64 `cbor:"4,keyasint,omitempty"`
	MaxExclusive bool     `cbor:"5,keyasint,omitempty"`
}

// Aggregate combines scores of an element present in several union sources.
type Aggregate uint8

const (
	AggregateSum Aggregate = iota
	AggregateMin
	AggregateMax
)

type UnionSource struct {
	SetName []byte  `cbor:"1,keyasint"`
	Weight  float64 `cbor:"2,keyasint"`
}

type SortedSetUnionStoreRequest struct {
	SetName   []byte        `cbor:"1,keyasint"`
	Sources   []UnionSource `cbor:"2,keyasint"`
	Aggregate Aggregate     `cbor:"3,keyasint"`
	TTLMillis uint64        `cbor:"4,keyasint"`
}

type SortedSetUnionStoreResponse struct {
	Length uint32 `cbor:"1,keyasint"`
}
