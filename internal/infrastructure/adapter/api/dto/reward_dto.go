package dto

// SpinRequest represents the API request for a spin wheel attempt
type SpinRequest struct {
	AttemptID string `json:"attemptId" binding:"required"`
}

// MysteryBoxRequest represents the API request for opening a mystery box
type MysteryBoxRequest struct {
	AttemptID string `json:"attemptId" binding:"required"`
}

// MissionRequest represents the API request for completing a mission
type MissionRequest struct {
	MissionID string `json:"missionId" binding:"required"`
}

// RewardResponse represents the API response for a resolved reward
type RewardResponse struct {
	Source      string `json:"source"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Label       string `json:"label,omitempty"`
	Duplicate   bool   `json:"duplicate"`
	StreakDays  int    `json:"streakDays,omitempty"`
}

// AdResponse represents an active watch-to-earn placement
type AdResponse struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	RewardCents     int64  `json:"rewardCents"`
	RequiredSeconds int    `json:"requiredSeconds"`
	CooldownSeconds int    `json:"cooldownSeconds"`
}

// StartAdSessionRequest represents the API request for starting an ad view
type StartAdSessionRequest struct {
	AdID uint64 `json:"adId" binding:"required"`
}

// AdSessionResponse represents an ad-view session
type AdSessionResponse struct {
	SessionID       string `json:"sessionId"`
	AdID            uint64 `json:"adId"`
	RewardCents     int64  `json:"rewardCents"`
	RequiredSeconds int    `json:"requiredSeconds"`
	StartedAt       string `json:"startedAt"`
}
