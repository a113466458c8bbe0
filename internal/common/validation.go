package common

// MaxPlayerCount is the largest number of players a session supports
const MaxPlayerCount = 6

// IsValidPlayerID checks if id addresses a seat in a game of playerCount players
func IsValidPlayerID(id, playerCount int) bool {
	return id >= 1 && id <= playerCount
}

// IsValidPlayerCount checks if a session can be created with n players
func IsValidPlayerCount(n int) bool {
	return n >= 1 && n <= MaxPlayerCount
}
