package jobs

import (
	"Backend-NetZero/src/database"
	"Backend-NetZero/src/models"
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleReviewReminderTask flags a submission that is still waiting for a
// reviewer decision when the reminder fires. Already-decided submissions are
// skipped without error.
func HandleReviewReminderTask(ctx context.Context, t *asynq.Task) error {
	var payload SubmissionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return err
	}

	id, err := objectIDFromHex(payload.SubmissionID)
	if err != nil {
		log.Println("❌ Invalid submission id in payload:", payload.SubmissionID)
		return err
	}

	// ✅ ตรวจสอบว่า submission ยังมีอยู่ไหม
	var sub models.Submission
	err = database.SubmissionCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Println("⚠️ Submission not found. Possibly deleted. Skipping task:", id.Hex())
			return nil // ✅ ไม่ถือว่า error
		}
		log.Println("❌ Failed to find submission:", err)
		return err
	}

	if sub.Status != models.StatusSubmitted && sub.Status != models.StatusReviewed {
		log.Printf("⚠️ Submission %s already %s. Skipping reminder.", id.Hex(), sub.Status)
		return nil
	}

	_, err = database.SubmissionCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reviewDue": true}},
	)
	if err != nil {
		log.Println("❌ Failed to flag submission:", err)
		return err
	}

	log.Println("✅ Review reminder flagged:", id.Hex())
	return nil
}
