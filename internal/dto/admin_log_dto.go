package dto

import "time"

type LogQuery struct {
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Level string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// LogListResponse ids are MD5 hashes of the log line, not UUIDs
type LogListResponse struct {
	Id        string    `json:"id"`
	Level     string    `json:"level"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}
