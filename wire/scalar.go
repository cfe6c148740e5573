package wire

// Result reports whether a keyed lookup found its item.
type Result uint8

const (
	ResultInvalid Result = iota
	ResultOk
	ResultHit
	ResultMiss
)

type Empty struct{}

type GetRequest struct {
	Key []byte `cbor:"1,keyasint"`
}

type GetResponse struct {
	Result Result `cbor:"1,keyasint"`
	Value  []byte `cbor:"2,keyasint,omitempty"`
}

type SetRequest struct {
	Key       []byte `cbor:"1,keyasint"`
	Value     []byte `cbor:"2,keyasint"`
	TTLMillis uint64 `cbor:"3,keyasint"`
}

type DeleteRequest struct {
	Key []byte `cbor:"1,keyasint"`
}

type IncrementRequest struct {
	Key       []byte `cbor:"1,keyasint"`
	Amount    int64  `cbor:"2,keyasint"`
	TTLMillis uint64 `cbor:"3,keyasint"`
}

type IncrementResponse struct {
	Value int64 `cbor:"1,keyasint"`
}

// Condition selects the precondition of a SetIf call.
type Condition uint8

const (
	ConditionAbsent Condition = iota + 1
	ConditionPresent
	ConditionEqual
	ConditionNotEqual
	ConditionPresentAndNotEqual
	ConditionAbsentOrEqual
)

type SetIfRequest struct {
	Key       []byte    `cbor:"1,keyasint"`
	Value     []byte    `cbor:"2,keyasint"`
	TTLMillis uint64    `cbor:"3,keyasint"`
	Condition Condition `cbor:"4,keyasint"`
	Compare   []byte    `cbor:"5,keyasint,omitempty"`
}

type SetIfResponse struct {
	Stored bool `cbor:"1,keyasint"`
}

type KeysExistRequest struct {
	Keys [][]byte `cbor:"1,keyasint"`
}

type KeysExistResponse struct {
	Exists []bool `cbor:"1,keyasint"`
}

// ItemType is the kind of value stored under a key.
type ItemType uint8

const (
	ItemTypeScalar ItemType = iota + 1
	ItemTypeDictionary
	ItemTypeSet
	ItemTypeList
	ItemTypeSortedSet
)

type ItemGetTypeRequest struct {
	Key []byte `cbor:"1,keyasint"`
}

type ItemGetTypeResponse struct {
	Found bool     `cbor:"1,keyasint"`
	Type  ItemType `cbor:"2,keyasint,omitempty"`
}

type ItemGetTTLRequest struct {
	Key []byte `cbor:"1,keyasint"`
}

type ItemGetTTLResponse struct {
	Found              bool   `cbor:"1,keyasint"`
	RemainingTTLMillis uint64 `cbor:"2,keyasint,omitempty"`
}

// TTLMode selects how UpdateTTL treats the existing TTL.
type TTLMode uint8

const (
	TTLOverwrite TTLMode = iota + 1
	TTLIncreaseTo
	TTLDecreaseTo
)

// TTLResult is the outcome of an UpdateTTL call.
type TTLResult uint8

const (
	TTLSet TTLResult = iota + 1
	TTLNotSet
	TTLMissing
)

type UpdateTTLRequest struct {
	Key       []byte  `cbor:"1,keyasint"`
	Mode      TTLMode `cbor:"2,keyasint"`
	TTLMillis uint64  `cbor:"3,keyasint"`
}

type UpdateTTLResponse struct {
	Result TTLResult `cbor:"1,keyasint"`
}

type CreateCacheRequest struct {
	CacheName string `cbor:"1,keyasint"`
}

type DeleteCacheRequest struct {
	CacheName string `cbor:"1,keyasint"`
}

type FlushCacheRequest struct {
	CacheName string `cbor:"1,keyasint"`
}

type ListCachesRequest struct {
	NextToken string `cbor:"1,keyasint,omitempty"`
}

type CacheLimits struct {
	MaxTrafficRate      uint32 `cbor:"1,keyasint,omitempty"`
	MaxThroughputKbps   uint32 `cbor:"2,keyasint,omitempty"`
	MaxItemSizeKb       uint32 `cbor:"3,keyasint,omitempty"`
	MaxTTLSeconds       uint64 `cbor:"4,keyasint,omitempty"`
	MaxSubscriptionRate uint32 `cbor:"5,keyasint,omitempty"`
}

type CacheInfo struct {
	Name   string      `cbor:"1,keyasint"`
	Limits CacheLimits `cbor:"2,keyasint"`
}

type ListCachesResponse struct {
	Caches    []CacheInfo `cbor:"1,keyasint"`
	NextToken string      `cbor:"2,keyasint,omitempty"`
}
