package nakama

// RPC ids registered with Nakama.
const (
	RpcLoad        = "hitstory_load"
	RpcDispatch    = "hitstory_dispatch"
	RpcNewGame     = "hitstory_new_game"
	RpcStandings   = "hitstory_standings"
	RpcDrawCard    = "hitstory_draw_card"
	RpcSpotifyURL  = "spotify_login_url"
	RpcSpotifyAuth = "spotify_exchange"
)

// Storage layout. Every user owns one game document and one Spotify token.
const (
	StorageCollection = "hitstory"
	spotifyTokenKey   = "spotify_token"
)

// gRPC status codes used with runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnavailable        = 14
	codeUnauthenticated    = 16
)
