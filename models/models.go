package models

import "time"

type PostTone string

const (
	ToneProfessional  PostTone = "Profesional"
	ToneFriendly      PostTone = "Amistoso"
	ToneHumorous      PostTone = "Humorístico"
	ToneInspirational PostTone = "Inspirador"
	TonePromotional   PostTone = "Promocional"
)

// Tones lists every accepted tone in display order.
var Tones = []PostTone{
	ToneProfessional,
	ToneFriendly,
	ToneHumorous,
	ToneInspirational,
	TonePromotional,
}

func (t PostTone) Valid() bool {
	for _, v := range Tones {
		if v == t {
			return true
		}
	}
	return false
}

type PostStatus string

const (
	StatusScheduled PostStatus = "scheduled"
	StatusPaused    PostStatus = "paused"
	StatusPublished PostStatus = "published"
)

type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type ScheduledPost struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Tone        PostTone   `json:"tone"`
	CTA         string     `json:"cta"`
	Content     string     `json:"content"`
	ImageSource string     `json:"image_source,omitempty"`
	PageID      string     `json:"page_id"`
	PageName    string     `json:"page_name"`
	PageToken   string     `json:"page_token"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Status      PostStatus `json:"status"`
	ExternalID  string     `json:"external_id,omitempty"`
	Attempts    int        `json:"attempts,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsDue reports whether the scheduler should fire the post at now.
func (p *ScheduledPost) IsDue(now time.Time) bool {
	return p.Status == StatusScheduled && !p.ScheduledAt.After(now)
}

// Draft is the editable form a UI presents back to the lifecycle controller.
// ScheduleDate and ScheduleTime are wall-clock values ("2006-01-02", "15:04")
// interpreted in the service timezone.
type Draft struct {
	Topic         string   `json:"topic"`
	Tone          PostTone `json:"tone"`
	CTA           string   `json:"cta"`
	Content       string   `json:"content"`
	ImageSource   string   `json:"image_source,omitempty"`
	PageID        string   `json:"page_id"`
	PageName      string   `json:"page_name"`
	PageToken     string   `json:"page_token"`
	ScheduleDate  string   `json:"schedule_date"`
	ScheduleTime  string   `json:"schedule_time"`
	IsScheduling  bool     `json:"is_scheduling"`
	EditingPostID string   `json:"editing_post_id,omitempty"`
}

// PublishRequest is one publish attempt. A non-nil ScheduledAt asks the
// platform to hold the post until that instant.
type PublishRequest struct {
	PageID      string
	AccessToken string
	Message     string
	ImageSource string
	ScheduledAt *time.Time
}

type PublishResult struct {
	Success    bool   `json:"success"`
	ExternalID string `json:"external_id,omitempty"`
	Message    string `json:"message"`
}

type Settings struct {
	GeminiAPIKey  string `json:"gemini_api_key"`
	FacebookAppID string `json:"facebook_app_id"`
}

type EventType string

const (
	EventPostCreated       EventType = "post.created"
	EventPostUpdated       EventType = "post.updated"
	EventPostPaused        EventType = "post.paused"
	EventPostResumed       EventType = "post.resumed"
	EventPostDeleted       EventType = "post.deleted"
	EventPostPublished     EventType = "post.published"
	EventPostPublishFailed EventType = "post.publish_failed"
)

type PostEvent struct {
	Type    EventType  `json:"type"`
	PostID  string     `json:"post_id"`
	Status  PostStatus `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
	At      time.Time  `json:"at"`
}

type GenerateTextRequest struct {
	Topic string   `json:"topic"`
	Tone  PostTone `json:"tone"`
	CTA   string   `json:"cta"`
}

// GenerateImageRequest describes the picture to draw. Prompt wins over Topic,
// which wins over Content.
type GenerateImageRequest struct {
	Prompt  string `json:"prompt,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content,omitempty"`
}

type GenerateResponse struct {
	Content     string `json:"content,omitempty"`
	ImageSource string `json:"image_source,omitempty"`
}

type TickReport struct {
	Due        int `json:"due"`
	Dispatched int `json:"dispatched"`
	Published  int `json:"published"`
	Failed     int `json:"failed"`
	InFlight   int `json:"in_flight"`
	Paused     int `json:"paused"`
}
