package services

import (
	"Backend-NetZero/src/database"
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func AuthenticateUser(email, password string) (*models.User, error) {
	ctx := context.Background()

	var dbUser models.User
	err := database.UserCollection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&dbUser)
	if err != nil {
		return nil, errors.New("Invalid email or password")
	}

	// ตรวจสอบ password
	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.Password), []byte(password)); err != nil {
		return nil, errors.New("Invalid password")
	}

	dbUser.Password = ""
	return &dbUser, nil
}

// RegisterUser สร้าง user ใหม่ (supplier สมัครเอง, admin สร้างผ่าน seed/ops)
func RegisterUser(email, password, name, role string) (*models.User, error) {
	ctx := context.Background()
	email = strings.ToLower(strings.TrimSpace(email))

	if role != models.RoleSupplier && role != models.RoleAdmin {
		return nil, errors.New("invalid role")
	}

	count, err := database.UserCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: string(hash),
		Role:     role,
		Name:     name,
	}
	if _, err := database.UserCollection.InsertOne(ctx, &user); err != nil {
		return nil, err
	}

	user.Password = ""
	return &user, nil
}

func GetUserByID(id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.UserCollection.FindOne(context.Background(), bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// RequestPasswordReset ออก OTP 6 หลักและเก็บใน Redis (อายุ 10 นาที)
// จริง ๆ ควรส่งอีเมล: dev mode log อย่างเดียว
func RequestPasswordReset(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	count, err := database.UserCollection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		return err
	}
	if count == 0 {
		// ไม่บอก caller ว่า email มีหรือไม่มีในระบบ
		return nil
	}

	otp := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := utils.StoreResetOTP(email, otp); err != nil {
		return err
	}

	log.Printf("📧 Password reset OTP for %s: %s (valid 10m)", email, otp)
	return nil
}

// ResetPassword ตรวจ OTP แล้วเปลี่ยนรหัสผ่าน
func ResetPassword(email, otp, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	ok, err := utils.VerifyResetOTP(email, otp)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid or expired OTP")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	res, err := database.UserCollection.UpdateOne(context.Background(),
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": string(hash)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("user not found")
	}

	// refresh token เดิมใช้ต่อไม่ได้หลังเปลี่ยนรหัส
	var user models.User
	if err := database.UserCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err == nil {
		_ = utils.DeleteRefreshToken(user.ID.Hex())
	}

	return nil
}
