// Package gateway defines the remote operations the portal client core
// depends on, plus the error taxonomy the wizard, review panel and chat
// poller use to decide how a failure is surfaced. The portal never talks to
// the backend except through these interfaces, so tests (and a future push
// based transport) can swap the implementation without touching the callers.
package gateway

import (
	"Backend-NetZero/src/models"
	"context"
	"errors"
	"fmt"
)

// Kind จำแนกประเภท error ตามวิธี handle ฝั่ง UI
type Kind int

const (
	// KindNetwork: no route, timeout, resource exhaustion: แสดง banner
	// "backend unavailable" + ปุ่ม retry และหยุด polling
	KindNetwork Kind = iota + 1
	// KindValidation: client-side validation ก่อนยิง network
	KindValidation
	// KindServerRejected: backend ปฏิเสธตาม business rule, dismissible,
	// ข้อมูลที่กรอกค้างไว้ต้องไม่หาย
	KindServerRejected
	// KindNotFound: ไม่มีข้อมูล: first use ปกติ ไม่ใช่ error
	KindNotFound
	// KindUnauthorized: token หมดอายุ/ไม่มีสิทธิ์
	KindUnauthorized
)

// Error wraps a failed gateway operation with its classification.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or 0 for unclassified errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// IsNetwork reports whether err is a network-class failure (suspend polling,
// show manual retry).
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsNotFound reports whether err means "no data yet" (normal empty state).
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// Session ถือ credential ปัจจุบันแบบ explicit แทน global store:
// ทุก component ฝั่ง portal รับ Session ตอนสร้างและส่งต่อให้ gateway call
type Session struct {
	Token  string
	UserID string
	Role   string // models.RoleSupplier | models.RoleAdmin
}

// LocalFile is an evidence file picked by the user but not yet uploaded.
type LocalFile struct {
	Name    string
	Content []byte
}

// SectionUpdate is the payload of a section save. Certificate is always a
// persisted media path (or empty); a LocalFile must be resolved through
// UploadCertificate before it can appear here.
type SectionUpdate struct {
	Value       map[string]string `json:"value"`
	Certificate string            `json:"certificate,omitempty"`
}

// SubmissionGateway mirrors the supplier- and review-facing submission API.
type SubmissionGateway interface {
	// FetchSubmission returns the current supplier's submission.
	// A KindNotFound error means the supplier has not saved anything yet.
	FetchSubmission(ctx context.Context, s Session) (*models.Submission, error)

	// UploadCertificate stores an evidence file and returns its media path.
	UploadCertificate(ctx context.Context, s Session, category, sectionKey string, file LocalFile) (string, error)

	// UpdateSection persists one section's current field set.
	UpdateSection(ctx context.Context, s Session, category, sectionKey string, update SectionUpdate) error

	// Submit asks the backend to move the whole submission into review.
	// The backend owns the cross-section completeness check.
	Submit(ctx context.Context, s Session) error

	// ListSubmissions returns every submission (review side).
	ListSubmissions(ctx context.Context, s Session) ([]models.Submission, error)

	// RateSection stores reviewer points/remarks for one section and returns
	// the updated submission. Distinct from UpdateSection: suppliers cannot
	// reach this path.
	RateSection(ctx context.Context, s Session, submissionID, category, sectionKey string, points float64, remarks string) (*models.Submission, error)

	// SetStatus applies an approved/rejected decision.
	SetStatus(ctx context.Context, s Session, submissionID, status string) error
}

// MessagingGateway mirrors the two-party chat API.
type MessagingGateway interface {
	ListConversations(ctx context.Context, s Session) ([]models.Conversation, error)

	// GetConversation returns one thread; the backend marks the caller's
	// unread messages as read as a side effect.
	GetConversation(ctx context.Context, s Session, conversationID string) (*models.Conversation, error)

	// CreateConversation returns the existing conversation with the
	// counterpart or creates one; the backend owns pair uniqueness.
	CreateConversation(ctx context.Context, s Session, counterpartID string) (*models.Conversation, error)

	SendMessage(ctx context.Context, s Session, conversationID, content string) error

	// ListCounterparts returns admins for suppliers and suppliers for admins.
	ListCounterparts(ctx context.Context, s Session) ([]models.User, error)
}
