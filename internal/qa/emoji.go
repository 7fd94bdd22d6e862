package qa

// emojiRanges covers the unicode blocks broadcast emails actually use.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // extended-A
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats
	{0x2B00, 0x2BFF},   // arrows and stars
	{0x1F1E6, 0x1F1FF}, // regional indicators
}

// CountEmoji counts runes falling in known emoji blocks. Variation
// selectors and zero-width joiners are not counted, so a composed emoji
// sequence still counts per visible glyph base.
func CountEmoji(s string) int {
	count := 0
	for _, r := range s {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				count++
				break
			}
		}
	}
	return count
}
