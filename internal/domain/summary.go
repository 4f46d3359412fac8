package domain

import (
	"fmt"
	"time"
)

type CleanupSummary struct {
	DeletedCount int64 `json:"deletedCount"`
}

type ScanSummary struct {
	TwoDayCount    int `json:"twoDayCount"`
	FiveDayCount   int `json:"fiveDayCount"`
	TotalGenerated int `json:"totalGenerated"`
}

// RunSummary is the result of one full inactivity pass.
type RunSummary struct {
	Cleanup                 CleanupSummary `json:"cleanup"`
	ChatNotifications       ScanSummary    `json:"chatNotifications"`
	FundraiserNotifications ScanSummary    `json:"fundraiserNotifications"`
	Timestamp               time.Time      `json:"timestamp"`
	Errors                  []string       `json:"errors,omitempty"`
}

func (s *RunSummary) TotalGenerated() int {
	return s.ChatNotifications.TotalGenerated + s.FundraiserNotifications.TotalGenerated
}

func (s *RunSummary) String() string {
	return fmt.Sprintf("deleted=%d chat_2d=%d chat_5d=%d fundraiser_2d=%d fundraiser_5d=%d total=%d errors=%d",
		s.Cleanup.DeletedCount,
		s.ChatNotifications.TwoDayCount, s.ChatNotifications.FiveDayCount,
		s.FundraiserNotifications.TwoDayCount, s.FundraiserNotifications.FiveDayCount,
		s.TotalGenerated(), len(s.Errors))
}

type ReminderSummary struct {
	Found     int       `json:"found"`
	Fired     int       `json:"fired"`
	Recurred  int       `json:"recurred"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *ReminderSummary) String() string {
	return fmt.Sprintf("found=%d fired=%d recurred=%d skipped=%d failed=%d",
		s.Found, s.Fired, s.Recurred, s.Skipped, s.Failed)
}

type DispatchSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
