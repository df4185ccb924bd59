package telegram

import (
	"strings"
	"unicode/utf16"
)

const (
	fence         = "```"
	minSplitLimit = 32
)

// SplitMessage breaks text into chunks of at most limit UTF-16 code units
// (at least minSplitLimit), the unit Telegram measures message length in.
// Paragraph boundaries are preferred over line and word boundaries. A code
// fence left open at a cut is closed in that chunk and reopened in the next.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit < minSplitLimit {
		limit = minSplitLimit
	}
	if utf16Len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	rest := []rune(text)
	for len(rest) > 0 {
		if utf16Len(rest) <= limit {
			chunks = append(chunks, string(rest))
			break
		}

		// leave room to close a code fence
		cut := cutPoint(rest, fitUnits(rest, limit-len(fence)-1))
		chunk := strings.TrimRight(string(rest[:cut]), " \n")
		next := strings.TrimLeft(string(rest[cut:]), " \n")

		if strings.Count(chunk, fence)%2 == 1 {
			chunk += "\n" + fence
			next = fence + "\n" + next
		}

		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		rest = []rune(next)
	}
	return chunks
}

// cutPoint returns where to cut r so the first part holds at most size runes.
// Boundaries are only taken from the second half of the window.
func cutPoint(r []rune, size int) int {
	window := string(r[:size])
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > 0 {
			if n := len([]rune(window[:i])); n >= size/2 {
				return n
			}
		}
	}
	return size
}

// fitUnits returns how many leading runes of r fit in budget UTF-16 code units
func fitUnits(r []rune, budget int) int {
	used := 0
	for i, c := range r {
		used += runeUnits(c)
		if used > budget {
			return i
		}
	}
	return len(r)
}

func utf16Len(r []rune) int {
	n := 0
	for _, c := range r {
		n += runeUnits(c)
	}
	return n
}

func runeUnits(c rune) int {
	if n := utf16.RuneLen(c); n > 0 {
		return n
	}
	return 1
}
