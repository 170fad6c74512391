package main

import (
	_ "Backend-NetZero/docs"
	"Backend-NetZero/src/database"
	"Backend-NetZero/src/jobs"
	"Backend-NetZero/src/routes"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
)

func main() {

	// เชื่อมต่อกับ MongoDB
	err := database.ConnectMongoDB()
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	// Redis + Asynq (optional ใน dev mode)
	database.InitRedis()
	database.InitAsynq()
	go jobs.StartWorker()

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // เผื่อไฟล์หลักฐาน PDF ใหญ่
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false, // ❌ ต้องเป็น false ถ้าใช้ "*"
	}))

	// เปิดใช้งาน Swagger ที่ URL /swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// เสิร์ฟไฟล์หลักฐานที่อัปโหลดไว้
	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "uploads"
	}
	app.Static("/media", mediaRoot)

	// รวม routes จากแต่ละ module
	routes.InitRoutes(app)

	appURI := os.Getenv("APP_URI")
	if appURI == "" {
		appURI = "8000" // ใช้ 8000 เป็นค่าเริ่มต้น
	}

	log.Println("Server is running on port " + appURI)
	err = app.Listen(fmt.Sprintf(":%s", url.PathEscape(appURI)))
	if err != nil {
		log.Fatal(err)
	}
}
