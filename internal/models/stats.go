package models

import "github.com/google/uuid"

// ForumTotals holds the site-wide entity counts shown on the landing page.
type ForumTotals struct {
	TotalTopics  int64 `json:"totalTopics"`
	TotalThreads int64 `json:"totalThreads"`
	TotalPosts   int64 `json:"totalPosts"`
	TotalMembers int64 `json:"totalMembers"`
}

// UserStats summarizes one member's forum activity.
type UserStats struct {
	UserID        uuid.UUID `json:"userId"`
	ThreadsCount  int64     `json:"threadsCount"`
	PostsCount    int64     `json:"postsCount"`
	LikesReceived int64     `json:"likesReceived"`
}
