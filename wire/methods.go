package wire

// Full gRPC method names, grouped by service.
const (
	controlService     = "/control_client.ScsControl/"
	cacheService       = "/cache_client.Scs/"
	pubsubService      = "/cache_client.pubsub.Pubsub/"
	leaderboardService = "/leaderboard.Leaderboard/"
	tokenService       = "/token.Token/"
)

const (
	MethodCreateCache = controlService + "CreateCache"
	MethodDeleteCache = controlService + "DeleteCache"
	MethodListCaches  = controlService + "ListCaches"
	MethodFlushCache  = controlService + "FlushCache"
)

const (
	MethodGet         = cacheService + "Get"
	MethodSet         = cacheService + "Set"
	MethodSetIf       = cacheService + "SetIf"
	MethodDelete      = cacheService + "Delete"
	MethodIncrement   = cacheService + "Increment"
	MethodKeysExist   = cacheService + "KeysExist"
	MethodItemGetType = cacheService + "ItemGetType"
	MethodItemGetTTL  = cacheService + "ItemGetTtl"
	MethodUpdateTTL   = cacheService + "UpdateTtl"

	MethodDictionaryFetch     = cacheService + "DictionaryFetch"
	MethodDictionaryGet       = cacheService + "DictionaryGet"
	MethodDictionarySet       = cacheService + "DictionarySet"
	MethodDictionaryIncrement = cacheService + "DictionaryIncrement"
	MethodDictionaryDelete    = cacheService + "DictionaryDelete"
	MethodDictionaryLength    = cacheService + "DictionaryLength"

	MethodSetUnion      = cacheService + "SetUnion"
	MethodSetDifference = cacheService + "SetDifference"
	MethodSetFetch      = cacheService + "SetFetch"
	MethodSetLength     = cacheService + "SetLength"

	MethodListPush        = cacheService + "ListPush"
	MethodListConcatenate = cacheService + "ListConcatenate"
	MethodListPop         = cacheService + "ListPop"
	MethodListFetch       = cacheService + "ListFetch"
	MethodListLength      = cacheService + "ListLength"
	MethodListRemove      = cacheService + "ListRemove"

	MethodSortedSetPut           = cacheService + "SortedSetPut"
	MethodSortedSetFetch         = cacheService + "SortedSetFetch"
	MethodSortedSetGetScore      = cacheService + "SortedSetGetScore"
	MethodSortedSetGetRank       = cacheService + "SortedSetGetRank"
	MethodSortedSetRemove        = cacheService + "SortedSetRemove"
	MethodSortedSetIncrement     = cacheService + "SortedSetIncrement"
	MethodSortedSetLength        = cacheService + "SortedSetLength"
	MethodSortedSetLengthByScore = cacheService + "SortedSetLengthByScore"
	MethodSortedSetUnionStore    = cacheService + "SortedSetUnionStore"
)

const (
	MethodPublish   = pubsubService + "Publish"
	MethodSubscribe = pubsubService + "Subscribe"
)

const (
	MethodUpsertElements       = leaderboardService + "UpsertElements"
	MethodGetByRank            = leaderboardService + "GetByRank"
	MethodGetByScore           = leaderboardService + "GetByScore"
	MethodGetRank              = leaderboardService + "GetRank"
	MethodGetCompetitionRank   = leaderboardService + "GetCompetitionRank"
	MethodGetLeaderboardLength = leaderboardService + "GetLeaderboardLength"
	MethodRemoveElements       = leaderboardService + "RemoveElements"
	MethodDeleteLeaderboard    = leaderboardService + "DeleteLeaderboard"
)

const MethodGenerateDisposableToken = tokenService + "GenerateDisposableToken"
