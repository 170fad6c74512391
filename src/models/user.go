package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleSupplier = "Supplier"
	RoleAdmin    = "Admin"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"` // ✅ รับจาก frontend ได้ แต่ไม่ส่งกลับ
	Role     string             `bson:"role" json:"role" enum:"Supplier,Admin"`
	Name     string             `bson:"name" json:"name"` // company name สำหรับ supplier, display name สำหรับ admin
}
