package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeReviewReminder = "submission:review-reminder"

type SubmissionPayload struct {
	SubmissionID string `json:"submission_id"`
}

// NewReviewReminderTask สร้าง task เตือนว่า submission ค้าง review นานเกินกำหนด
func NewReviewReminderTask(submissionID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SubmissionPayload{SubmissionID: submissionID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReviewReminder, payload), nil
}
