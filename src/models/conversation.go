package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message ข้อความในห้องแชท แก้ไขไม่ได้หลังสร้าง ยกเว้น read flag
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Read      bool               `bson:"read" json:"read"`
}

// UnreadCount นับข้อความที่ยังไม่อ่าน แยกตามฝั่ง
type UnreadCount struct {
	Supplier int `bson:"supplier" json:"supplier"`
	Admin    int `bson:"admin" json:"admin"`
}

// Conversation ห้องแชท 1 ห้องต่อคู่ (supplier, admin)
type Conversation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID  primitive.ObjectID `bson:"supplierId" json:"supplierId"`
	AdminID     primitive.ObjectID `bson:"adminId" json:"adminId"`
	Messages    []Message          `bson:"messages" json:"messages"`
	UnreadCount UnreadCount        `bson:"unreadCount" json:"unreadCount"`
	LastMessage *Message           `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// CounterpartID returns the other participant for the given role.
func (c *Conversation) CounterpartID(role string) primitive.ObjectID {
	if role == RoleAdmin {
		return c.SupplierID
	}
	return c.AdminID
}
