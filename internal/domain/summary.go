package domain

import "time"

// StageDigest is a denormalized view of a stage running today, carrying
// enough event context to render without further reads.
type StageDigest struct {
	StageID    string      `json:"stage_id"`
	EventID    string      `json:"event_id"`
	EventTitle string      `json:"event_title"`
	Name       string      `json:"name"`
	StartAt    *time.Time  `json:"start_at,omitempty"`
	Status     StageStatus `json:"status"`
	Location   string      `json:"location,omitempty"`
}

// AnnouncementDigest is a denormalized view of a recently published
// announcement.
type AnnouncementDigest struct {
	AnnouncementID string     `json:"announcement_id"`
	EventID        string     `json:"event_id"`
	EventTitle     string     `json:"event_title"`
	Title          string     `json:"title"`
	Audience       Audience   `json:"audience"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

// SummaryCounters holds the running entry counters of a dashboard summary
type SummaryCounters struct {
	PendingEntries int `json:"pending_entries"`
	UnpaidEntries  int `json:"unpaid_entries"`
}

// DashboardSummary is the derived per-organizer projection. It is rebuilt
// from scratch on every recompute; last write wins and nothing reads it back
// as a source of truth.
type DashboardSummary struct {
	OrganizerID         string               `json:"organizer_id"`
	TodayStages         []StageDigest        `json:"today_stages"`
	Counters            SummaryCounters      `json:"counters"`
	LatestAnnouncements []AnnouncementDigest `json:"latest_announcements"`
	UpdatedAt           time.Time            `json:"updated_at"`
}
