package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	UserKeyPrefix     = "user:%s"
	UsernameKeyPrefix = "username:%s"
	TopicListKey      = "topics:all"
	ThreadKeyPrefix   = "thread:%s"
	StatsTotalsKey    = "stats:totals"
)

const (
	UserTTL   = 5 * time.Minute
	TopicTTL  = 10 * time.Minute
	ThreadTTL = 2 * time.Minute
	StatsTTL  = 1 * time.Minute
)

func UserKey(userID uuid.UUID) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UsernameKey(username string) string {
	return fmt.Sprintf(UsernameKeyPrefix, username)
}

func ThreadKey(threadID uuid.UUID) string {
	return fmt.Sprintf(ThreadKeyPrefix, threadID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uuid.UUID, username *string) {
	keys := []string{UserKey(userID)}
	if username != nil {
		keys = append(keys, UsernameKey(*username))
	}
	Invalidate(ctx, keys...)
}

func InvalidateTopics(ctx context.Context) {
	Invalidate(ctx, TopicListKey)
}

func InvalidateThread(ctx context.Context, threadID uuid.UUID) {
	Invalidate(ctx, ThreadKey(threadID))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, StatsTotalsKey)
}
