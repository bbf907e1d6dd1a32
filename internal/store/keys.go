package store

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Storage key prefixes. Index entries are key-only; the record id is the last
// segment of the index key.
const (
	itemPrefix          = "item:"
	itemIdxOwnerPrefix  = "item:idx:owner:"
	itemIdxStatusPrefix = "item:idx:status:"

	sessionPrefix        = "swipesession:"
	sessionIdxUserPrefix = "swipesession:idx:user:"

	offerPrefix             = "offer:"
	offerIdxSenderPrefix    = "offer:idx:sender:"
	offerIdxRecipientPrefix = "offer:idx:recipient:"

	notificationPrefix        = "notification:"
	notificationIdxUserPrefix = "notification:idx:user:"

	userPrefix = "user:"
)

// invertedTimestamp returns a string that sorts in descending order.
// Uses MaxInt64 - UnixNano so newest timestamps come first during forward iteration.
func invertedTimestamp(t time.Time) string {
	inverted := math.MaxInt64 - t.UnixNano()
	return fmt.Sprintf("%019d", inverted)
}

// idFromIndexKey extracts the record id from an index key, which is always
// the segment after the last colon.
func idFromIndexKey(key string) string {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 || idx == len(key)-1 {
		return ""
	}
	return key[idx+1:]
}
