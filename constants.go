package momento

import "time"

// Version is reported to the service in the agent header.
const Version = "0.1.0"

// MaxConcurrentStreamsPerChannel is the number of topic subscriptions one
// gRPC channel can carry.
const MaxConcurrentStreamsPerChannel = 100

// NoTTL passed where a TTL is optional selects the client default.
const NoTTL time.Duration = 0

// Limits enforced before a call is sent.
const (
	MaxTokenIDLength         = 64
	MaxDisposableTokenExpiry = time.Hour
)

func agent(client string) string {
	return "go:" + client + ":" + Version
}
