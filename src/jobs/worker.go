package jobs

import (
	"Backend-NetZero/src/database"
	"log"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func objectIDFromHex(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// StartWorker รัน asynq worker สำหรับ background tasks
// เรียกจาก main ใน goroutine แยก: ข้ามถ้าไม่มี Redis
func StartWorker() {
	if database.RedisURI == "" || database.RedisClient == nil {
		log.Println("⚠️ Redis not available. Asynq worker will not start.")
		return
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: database.RedisURI},
		asynq.Config{Concurrency: 5},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReviewReminder, HandleReviewReminderTask)

	log.Println("✅ Asynq worker started")
	if err := srv.Run(mux); err != nil {
		log.Println("❌ Asynq worker stopped:", err)
	}
}
