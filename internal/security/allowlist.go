package security

import "sort"

// AllowList is the immutable set of chat ids permitted to use the bot.
// An empty list allows nobody.
type AllowList struct {
	ids map[int64]struct{}
}

// NewAllowList builds an allow-list from chat ids
func NewAllowList(ids ...int64) AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

// Allows reports whether chatID may use the bot
func (a AllowList) Allows(chatID int64) bool {
	_, ok := a.ids[chatID]
	return ok
}

// Len returns the number of allowed chats
func (a AllowList) Len() int {
	return len(a.ids)
}

// IDs returns the allowed chat ids in ascending order
func (a AllowList) IDs() []int64 {
	ids := make([]int64, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
