package entity

import "time"

type AuthorProfile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Verified    bool      `json:"verified"`
	Followers   int       `json:"followers"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
}

type EngagementMetrics struct {
	Likes   int `json:"likes"`
	Reposts int `json:"reposts"`
	Replies int `json:"replies"`
	Quotes  int `json:"quotes"`
}

// Post is one content item to analyze. The engine never interprets it
// beyond composing the scoring input; all fields pass through to prompts.
type Post struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Author        AuthorProfile     `json:"author"`
	Engagement    EngagementMetrics `json:"engagement"`
	CreatedAt     time.Time         `json:"created_at"`
	ExternalLinks []string          `json:"external_links,omitempty"`
	HasMedia      bool              `json:"has_media"`
	IsThread      bool              `json:"is_thread"`
}
