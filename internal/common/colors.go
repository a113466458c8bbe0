package common

// ANSI color codes used by the text renderer
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

// PlayerRGB is the colorblind-safe palette for players 1..6, exposed to renderers
var PlayerRGB = map[int]uint32{
	1: 0x1f77b4, // Blue
	2: 0xff7f0e, // Orange
	3: 0x2ca02c, // Green
	4: 0xd62728, // Red
	5: 0x9467bd, // Purple
	6: 0x8c564b, // Brown
}

// Non-player tile colors
const (
	UnusedRGB  uint32 = 0x888888
	NeutralRGB uint32 = 0x333333
	BlockedRGB uint32 = 0x333333
)

var playerANSI = []string{ColorBlue, ColorYellow, ColorGreen, ColorRed, ColorPurple, ColorCyan}

// PlayerANSI returns the terminal color for a player id (1-based)
func PlayerANSI(playerID int) string {
	if playerID >= 1 && playerID <= len(playerANSI) {
		return playerANSI[playerID-1]
	}
	return ColorWhite
}
