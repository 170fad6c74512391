package submissions

import (
	DB "Backend-NetZero/src/database"
	"Backend-NetZero/src/jobs"
	"Backend-NetZero/src/models"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound    = errors.New("submission not found")
	ErrNotEditable = errors.New("submission is awaiting review and cannot be edited")
)

// ReviewReminderDelay ระยะเวลาก่อน flag ว่า review ค้างนาน
const ReviewReminderDelay = 72 * time.Hour

// SectionInput ข้อมูลที่ supplier แก้ไขได้ (points/remarks ไม่อยู่ในนี้โดยตั้งใจ)
type SectionInput struct {
	Value       map[string]string `json:"value"`
	Certificate string            `json:"certificate,omitempty"`
}

// GetBySupplier retrieves the submission owned by one supplier.
func GetBySupplier(ctx context.Context, supplierID primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	err := DB.SubmissionCollection.FindOne(ctx, bson.M{"supplierId": supplierID}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// GetByID retrieves a submission by its ID (admin side).
func GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	err := DB.SubmissionCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateSection upserts one section for the supplier's submission.
// Creates a draft submission on first write. Editing a rejected submission
// flips it back to draft (resubmission). Never touches points/remarks.
func UpdateSection(ctx context.Context, supplierID primitive.ObjectID, category, key string, in SectionInput) (*models.Submission, error) {
	schema, ok := models.SchemaFor(category)
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}
	if _, ok := schema.Section(key); !ok {
		return nil, fmt.Errorf("unknown section: %s.%s", category, key)
	}

	sub, err := GetBySupplier(ctx, supplierID)
	if err != nil {
		if err != ErrNotFound {
			return nil, err
		}
		// first write: สร้าง draft เปล่า
		sub = &models.Submission{
			ID:         primitive.NewObjectID(),
			SupplierID: supplierID,
			Status:     models.StatusDraft,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if _, err := DB.SubmissionCollection.InsertOne(ctx, sub); err != nil {
			// first write ชนกันเอง (unique index บน supplierId) ใช้ draft ที่มีอยู่
			if !mongo.IsDuplicateKeyError(err) {
				return nil, err
			}
			if sub, err = GetBySupplier(ctx, supplierID); err != nil {
				return nil, err
			}
		}
	}

	switch sub.Status {
	case models.StatusDraft, models.StatusRejected:
		// editable
	default:
		return nil, ErrNotEditable
	}

	now := time.Now()
	prefix := fmt.Sprintf("%s.%s", category, key)
	set := bson.M{
		prefix + ".value":       in.Value,
		prefix + ".lastUpdated": now,
		"updatedAt":             now,
		"status":                models.StatusDraft, // rejected -> draft on resubmission edit
	}
	if in.Certificate != "" {
		set[prefix+".certificate"] = in.Certificate
	}

	_, err = DB.SubmissionCollection.UpdateOne(ctx, bson.M{"_id": sub.ID}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}

	return GetBySupplier(ctx, supplierID)
}

// Submit transitions draft/rejected -> submitted. The completeness check here
// is authoritative: the client only validates its current section.
func Submit(ctx context.Context, supplierID primitive.ObjectID) (*models.Submission, error) {
	sub, err := GetBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	switch sub.Status {
	case models.StatusDraft, models.StatusRejected:
		// submittable
	default:
		return nil, fmt.Errorf("submission is already %s", sub.Status)
	}

	if missing := MissingSections(sub); len(missing) > 0 {
		return nil, fmt.Errorf("submission incomplete: %s", strings.Join(missing, ", "))
	}

	now := time.Now()
	_, err = DB.SubmissionCollection.UpdateOne(ctx, bson.M{"_id": sub.ID}, bson.M{"$set": bson.M{
		"status":      models.StatusSubmitted,
		"submittedAt": now,
		"updatedAt":   now,
		"reviewDue":   false,
	}})
	if err != nil {
		return nil, err
	}

	enqueueReviewReminder(sub.ID)

	return GetBySupplier(ctx, supplierID)
}

// enqueueReviewReminder ตั้ง task เตือน review ด้วย asynq (ข้ามถ้าไม่มี Redis)
func enqueueReviewReminder(submissionID primitive.ObjectID) {
	if DB.AsynqClient == nil {
		return
	}
	task, err := jobs.NewReviewReminderTask(submissionID.Hex())
	if err != nil {
		log.Println("❌ Failed to build review reminder task:", err)
		return
	}
	if _, err := DB.AsynqClient.Enqueue(task, asynq.ProcessIn(ReviewReminderDelay)); err != nil {
		log.Println("❌ Failed to enqueue review reminder:", err)
		return
	}
	log.Printf("✅ Review reminder scheduled: submission=%s in=%s", submissionID.Hex(), ReviewReminderDelay)
}

// ListAll returns every submission, newest activity first (admin side).
func ListAll(ctx context.Context) ([]models.Submission, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := DB.SubmissionCollection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// RateSection stores reviewer points/remarks for one section and recomputes
// the aggregate score. Points are clamped to [0,1] whatever the caller sent.
// The first rating moves a submitted submission to reviewed.
func RateSection(ctx context.Context, id primitive.ObjectID, category, key string, points float64, remarks string) (*models.Submission, error) {
	schema, ok := models.SchemaFor(category)
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}
	if _, ok := schema.Section(key); !ok {
		return nil, fmt.Errorf("unknown section: %s.%s", category, key)
	}

	sub, err := GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := sub.Category(category)[key]; !ok {
		return nil, fmt.Errorf("section %s.%s has no data to review", category, key)
	}

	points = ClampPoints(points)
	sec := sub.Category(category)[key]
	sec.Points = points
	sec.Remarks = remarks
	sub.SetSection(category, key, sec)

	score := ComputeOverallScore(sub)

	prefix := fmt.Sprintf("%s.%s", category, key)
	set := bson.M{
		prefix + ".points":  points,
		prefix + ".remarks": remarks,
		"overallScore":      score,
		"updatedAt":         time.Now(),
	}
	if sub.Status == models.StatusSubmitted {
		set["status"] = models.StatusReviewed
	}

	_, err = DB.SubmissionCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}

	return GetByID(ctx, id)
}

// SetStatus applies a reviewer decision. Only approved/rejected are
// human-triggered; everything else moves through Submit/RateSection.
func SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Submission, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("status must be %s or %s", models.StatusApproved, models.StatusRejected)
	}

	sub, err := GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.StatusSubmitted && sub.Status != models.StatusReviewed {
		return nil, fmt.Errorf("cannot set %s on a %s submission", status, sub.Status)
	}

	_, err = DB.SubmissionCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return nil, err
	}

	return GetByID(ctx, id)
}
