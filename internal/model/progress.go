package model

import "time"

// TotalDays is the length of the curriculum
const TotalDays = 120

// DayProgress tracks one user's completion state for one curriculum day
type DayProgress struct {
	ID             string     `json:"id" bson:"id"`
	UserID         string     `json:"user_id" bson:"user_id"`
	DayNumber      int        `json:"day_number" bson:"day_number"`
	CompletedTasks []string   `json:"completed_tasks" bson:"completed_tasks"`
	IsCompleted    bool       `json:"is_completed" bson:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// CompleteTaskRequest is the payload of POST /progress/complete-task
type CompleteTaskRequest struct {
	DayNumber int    `json:"day_number" binding:"required,min=1,max=120"`
	TaskID    string `json:"task_id" binding:"required"`
	Completed bool   `json:"completed"`
}

// CompleteDayRequest is the payload of POST /progress/complete-day
type CompleteDayRequest struct {
	DayNumber int `json:"day_number" binding:"required,min=1,max=120"`
}

// DayOverrideRequest is the payload of the admin curriculum override
type DayOverrideRequest struct {
	IsCompleted *bool `json:"is_completed" binding:"required"`
}

// InternSummary is an intern as listed on the admin dashboard
type InternSummary struct {
	PublicUser
	Progress      []DayProgress `json:"progress"`
	CompletedDays int           `json:"completed_days"`
	TotalDays     int           `json:"total_days"`
}

// UserProgress is one user together with all their day records
type UserProgress struct {
	User     PublicUser    `json:"user"`
	Progress []DayProgress `json:"progress"`
}
