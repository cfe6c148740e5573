package wire

type LeaderboardElement struct {
	ID    uint32  `cbor:"1,keyasint"`
	Score float64 `cbor:"2,keyasint"`
}

type RankedElement struct {
	ID    uint32  `cbor:"1,keyasint"`
	Rank  uint32  `cbor:"2,keyasint"`
	Score float64 `cbor:"3,keyasint"`
}

type UpsertElementsRequest struct {
	CacheName   string               `cbor:"1,keyasint"`
	Leaderboard string               `cbor:"2,keyasint"`
	Elements    []LeaderboardElement `cbor:"3,keyasint"`
}

type GetByRankRequest struct {
	CacheName      string `cbor:"1,keyasint"`
	Leaderboard    string `cbor:"2,keyasint"`
	StartInclusive uint32 `cbor:"3,keyasint"`
	EndExclusive   uint32 `cbor:"4,keyasint"`
	Order          Order  `cbor:"5,keyasint"`
}

// GetByScoreRequest bounds are min-inclusive and max-exclusive.
type GetByScoreRequest struct {
	CacheName   string   `cbor:"1,keyasint"`
	Leaderboard string   `cbor:"2,keyasint"`
	Min         *float64 `cbor:"3,keyasint,omitempty"`
	Max         *float64 `cbor:"4,keyasint,omitempty"`
	Offset      uint32   `cbor:"5,keyasint"`
	Limit       uint32   `cbor:"6,keyasint"`
	Order       Order    `cbor:"7,keyasint"`
}

type GetRankRequest struct {
	CacheName   string   `cbor:"1,keyasint"`
	Leaderboard string   `cbor:"2,keyasint"`
	IDs         []uint32 `cbor:"3,keyasint"`
	Order       Order    `cbor:"4,keyasint"`
}

type RankedElementsResponse struct {
	Elements []RankedElement `cbor:"1,keyasint"`
}

type GetLeaderboardLengthRequest struct {
	CacheName   string `cbor:"1,keyasint"`
	Leaderboard string `cbor:"2,keyasint"`
}

type GetLeaderboardLengthResponse struct {
	Count uint32 `cbor:"1,keyasint"`
}

type RemoveElementsRequest struct {
	CacheName   string   `cbor:"1,keyasint"`
	Leaderboard string   `cbor:"2,keyasint"`
	IDs         []uint32 `cbor:"3,keyasint"`
}

type DeleteLeaderboardRequest struct {
	CacheName   string `cbor:"1,keyasint"`
	Leaderboard string `cbor:"2,keyasint"`
}
