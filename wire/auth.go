package wire

type CacheRole uint8

const (
	CacheReadWrite CacheRole = iota + 1
	CacheReadOnly
	CacheWriteOnly
)

type TopicRole uint8

const (
	TopicPublishSubscribe TopicRole = iota + 1
	TopicSubscribeOnly
	TopicPublishOnly
)

// CachePermission grants a role on one cache or all caches. Key and
// KeyPrefix narrow it to items; both empty means every item.
type CachePermission struct {
	Role      CacheRole `cbor:"1,keyasint"`
	AllCaches bool      `cbor:"2,keyasint,omitempty"`
	CacheName string    `cbor:"3,keyasint,omitempty"`
	Key       []byte    `cbor:"4,keyasint,omitempty"`
	KeyPrefix []byte    `cbor:"5,keyasint,omitempty"`
}

type TopicPermission struct {
	Role      TopicRole `cbor:"1,keyasint"`
	AllCaches bool      `cbor:"2,keyasint,omitempty"`
	CacheName string    `cbor:"3,keyasint,omitempty"`
	AllTopics bool      `cbor:"4,keyasint,omitempty"`
	TopicName string    `cbor:"5,keyasint,omitempty"`
}

// Permission holds exactly one of its fields.
type Permission struct {
	Cache *CachePermission `cbor:"1,keyasint,omitempty"`
	Topic *TopicPermission `cbor:"2,keyasint,omitempty"`
}

type Permissions struct {
	AllDataReadWrite bool         `cbor:"1,keyasint,omitempty"`
	Explicit         []Permission `cbor:"2,keyasint,omitempty"`
}

type GenerateDisposableTokenRequest struct {
	ValidForSeconds uint64      `cbor:"1,keyasint"`
	AuthToken       string      `cbor:"2,keyasint"`
	Permissions     Permissions `cbor:"3,keyasint"`
	TokenID         string      `cbor:"4,keyasint,omitempty"`
}

type GenerateDisposableTokenResponse struct {
	APIKey     string `cbor:"1,keyasint"`
	Endpoint   string `cbor:"2,keyasint"`
	ValidUntil uint64 `cbor:"3,keyasint"`
}
