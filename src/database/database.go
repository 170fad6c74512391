package database

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client     *mongo.Client
	once       sync.Once // ✅ ป้องกันการรัน ConnectMongoDB() ซ้ำ
	connectErr error

	UserCollection         *mongo.Collection
	SubmissionCollection   *mongo.Collection
	ConversationCollection *mongo.Collection
)

const DBName = "NetZeroDB"

// ConnectMongoDB เชื่อมต่อกับ MongoDB แค่ครั้งเดียว
func ConnectMongoDB() error {

	// โหลดค่า Environment Variables จากไฟล์ .env
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("❌ MONGO_URI environment variable not set. Please create a .env file and set it.")
	}

	once.Do(func() { // ✅ Run only once
		clientOptions := options.Client().ApplyURI(mongoURI)

		client, connectErr = mongo.Connect(context.TODO(), clientOptions)
		if connectErr != nil {
			log.Fatal("❌ Failed to connect to MongoDB:", connectErr)
			return
		}

		connectErr = client.Ping(context.TODO(), readpref.Primary())
		if connectErr != nil {
			log.Fatal("❌ MongoDB ping failed:", connectErr)
			return
		}

		UserCollection = client.Database(DBName).Collection("users")
		SubmissionCollection = client.Database(DBName).Collection("submissions")
		ConversationCollection = client.Database(DBName).Collection("conversations")

		ensureIndexes()

		log.Println("✅ MongoDB connected successfully")
	})

	return connectErr
}

// ensureIndexes สร้าง index ที่ schema พึ่งพา
// unique pair: supplier กับ admin คู่หนึ่งมีห้องแชทได้ห้องเดียว
// (กัน race ตอนสองฝั่งกดเปิดห้องพร้อมกัน)
func ensureIndexes() {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{UserCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{SubmissionCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "supplierId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{ConversationCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "supplierId", Value: 1}, {Key: "adminId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(context.TODO(), idx.model); err != nil {
			log.Println("⚠️ Failed to create index on", idx.coll.Name(), ":", err)
		}
	}
}

// GetCollection รับ Collection จาก MongoDB
func GetCollection(dbName, collectionName string) *mongo.Collection {
	if client == nil {
		log.Fatal("❌ MongoDB client is nil")
	}
	return client.Database(dbName).Collection(collectionName)
}
