package conversations

import (
	DB "Backend-NetZero/src/database"
	"Backend-NetZero/src/models"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrNotParticipant = errors.New("user is not a participant of this conversation")
	ErrEmptyMessage   = errors.New("message content is empty")
)

// unreadField คืนชื่อ field ของ unread counter ตาม role ของผู้อ่าน
func unreadField(role string) string {
	if role == models.RoleAdmin {
		return "unreadCount.admin"
	}
	return "unreadCount.supplier"
}

// ListForUser returns every conversation the user participates in,
// most recent activity first.
func ListForUser(ctx context.Context, userID primitive.ObjectID, role string) ([]models.Conversation, error) {
	filter := bson.M{"supplierId": userID}
	if role == models.RoleAdmin {
		filter = bson.M{"adminId": userID}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := DB.ConversationCollection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// GetAndMarkRead returns one conversation and, as a side effect, marks the
// counterpart's messages as read for the requesting user.
func GetAndMarkRead(ctx context.Context, id, reader primitive.ObjectID, role string) (*models.Conversation, error) {
	conv, err := getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.SupplierID != reader && conv.AdminID != reader {
		return nil, ErrNotParticipant
	}

	// ✅ mark read เฉพาะข้อความของอีกฝั่ง
	_, err = DB.ConversationCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"messages.$[m].read": true,
			unreadField(role):    0,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.sender": bson.M{"$ne": reader}}},
		}),
	)
	if err != nil {
		return nil, err
	}

	return getByID(ctx, id)
}

// Create returns the existing conversation for the (supplier, admin) pair or
// creates one. This is the authoritative uniqueness check: two participants
// have at most one conversation.
func Create(ctx context.Context, supplierID, adminID primitive.ObjectID) (*models.Conversation, error) {
	var existing models.Conversation
	err := DB.ConversationCollection.FindOne(ctx, bson.M{
		"supplierId": supplierID,
		"adminId":    adminID,
	}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	conv := models.Conversation{
		ID:         primitive.NewObjectID(),
		SupplierID: supplierID,
		AdminID:    adminID,
		Messages:   []models.Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := DB.ConversationCollection.InsertOne(ctx, &conv); err != nil {
		// แพ้ race กับอีกฝั่งที่เปิดห้องพร้อมกัน (unique index คู่ supplier/admin)
		// ใช้ห้องที่ insert สำเร็จก่อนแทน
		if mongo.IsDuplicateKeyError(err) {
			if ferr := DB.ConversationCollection.FindOne(ctx, bson.M{
				"supplierId": supplierID,
				"adminId":    adminID,
			}).Decode(&existing); ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &conv, nil
}

// SendMessage appends one immutable message and bumps the recipient's unread
// counter and the last-message snapshot.
func SendMessage(ctx context.Context, id, sender primitive.ObjectID, role, content string) (*models.Conversation, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.SupplierID != sender && conv.AdminID != sender {
		return nil, ErrNotParticipant
	}

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
		Read:      false,
	}

	recipientField := "unreadCount.supplier"
	if role == models.RoleSupplier {
		recipientField = "unreadCount.admin"
	}

	_, err = DB.ConversationCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"lastMessage": msg, "updatedAt": msg.Timestamp},
			"$inc":  bson.M{recipientField: 1},
		},
	)
	if err != nil {
		return nil, err
	}

	return getByID(ctx, id)
}

// ListCounterparts returns the users the caller may start a conversation
// with: admins for suppliers, suppliers for admins.
func ListCounterparts(ctx context.Context, role string) ([]models.User, error) {
	counterpartRole := models.RoleAdmin
	if role == models.RoleAdmin {
		counterpartRole = models.RoleSupplier
	}

	cursor, err := DB.UserCollection.Find(ctx, bson.M{"role": counterpartRole})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func getByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	var conv models.Conversation
	err := DB.ConversationCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}
