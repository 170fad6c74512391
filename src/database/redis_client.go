package database

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client
var RedisCtx = context.Background()
var RedisURI string

// InitRedis เชื่อมต่อ Redis ถ้าไม่มี REDIS_URI จะข้าม (dev mode ไม่บังคับ)
func InitRedis() {
	RedisURI = os.Getenv("REDIS_URI") // เช่น localhost:6379
	if RedisURI == "" {
		log.Println("⚠️ REDIS_URI not set. Refresh tokens and background jobs are disabled.")
		return
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     RedisURI,
		Password: "", // ถ้าไม่มีรหัสผ่าน
		DB:       0,
	})
	_, err := RedisClient.Ping(RedisCtx).Result()
	if err != nil {
		log.Println("❌ Failed to connect Redis:", err)
		RedisClient = nil
		return
	}
	log.Println("✅ Redis connected successfully")
}
