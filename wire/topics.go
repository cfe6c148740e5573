package wire

// TopicValue carries either text or raw bytes.
type TopicValue struct {
	Text   string `cbor:"1,keyasint,omitempty"`
	Binary []byte `cbor:"2,keyasint,omitempty"`
	IsText bool   `cbor:"3,keyasint,omitempty"`
}

type PublishRequest struct {
	CacheName string     `cbor:"1,keyasint"`
	Topic     string     `cbor:"2,keyasint"`
	Value     TopicValue `cbor:"3,keyasint"`
}

type SubscribeRequest struct {
	CacheName              string `cbor:"1,keyasint"`
	Topic                  string `cbor:"2,keyasint"`
	ResumeAtSequenceNumber uint64 `cbor:"3,keyasint,omitempty"`
	SequencePage           uint64 `cbor:"4,keyasint,omitempty"`
}

// SubscriptionKind tags the payload of a SubscriptionItem.
type SubscriptionKind uint8

const (
	KindItem SubscriptionKind = iota + 1
	KindDiscontinuity
	KindHeartbeat
)

type TopicItem struct {
	SequenceNumber uint64      `cbor:"1,keyasint"`
	Value          *TopicValue `cbor:"2,keyasint,omitempty"` // nil when the value kind is not supported
	PublisherID    string      `cbor:"3,keyasint,omitempty"`
	SequencePage   uint64      `cbor:"4,keyasint,omitempty"`
}

type Discontinuity struct {
	LastSequence    uint64 `cbor:"1,keyasint"`
	NewSequence     uint64 `cbor:"2,keyasint"`
	NewSequencePage uint64 `cbor:"3,keyasint,omitempty"`
}

// SubscriptionItem is one message of the server stream opened by Subscribe.
type SubscriptionItem struct {
	Kind          SubscriptionKind `cbor:"1,keyasint"`
	Item          *TopicItem       `cbor:"2,keyasint,omitempty"`
	Discontinuity *Discontinuity   `cbor:"3,keyasint,omitempty"`
}
