package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission status lifecycle: draft -> submitted -> reviewed -> approved/rejected
// rejected -> draft เมื่อ supplier แก้ไขแล้วส่งใหม่ (resubmission)
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// ESG category keys
const (
	CategoryCompanyInfo = "companyInfo"
	CategoryEnvironment = "environment"
	CategorySocial      = "social"
	CategoryGovernance  = "governance"
)

// Section หนึ่งหัวข้อในแบบสอบถาม ESG
// Points/Remarks เขียนได้จากฝั่ง admin review เท่านั้น
type Section struct {
	Value       map[string]string `bson:"value" json:"value"`
	Certificate string            `bson:"certificate,omitempty" json:"certificate,omitempty"` // persisted media path
	Points      float64           `bson:"points" json:"points"`                               // [0,1]
	Remarks     string            `bson:"remarks" json:"remarks"`
	LastUpdated time.Time         `bson:"lastUpdated,omitempty" json:"lastUpdated"`
}

// OverallScore คะแนนรวมต่อ category คำนวณฝั่ง server เท่านั้น
type OverallScore struct {
	Environment float64 `bson:"environment" json:"environment"`
	Social      float64 `bson:"social" json:"social"`
	Governance  float64 `bson:"governance" json:"governance"`
	Total       float64 `bson:"total" json:"total"`
}

type Submission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID   primitive.ObjectID `bson:"supplierId" json:"supplierId"`
	Status       string             `bson:"status" json:"status" enum:"draft,submitted,reviewed,approved,rejected"`
	CompanyInfo  map[string]Section `bson:"companyInfo,omitempty" json:"companyInfo,omitempty"`
	Environment  map[string]Section `bson:"environment,omitempty" json:"environment,omitempty"`
	Social       map[string]Section `bson:"social,omitempty" json:"social,omitempty"`
	Governance   map[string]Section `bson:"governance,omitempty" json:"governance,omitempty"`
	OverallScore *OverallScore      `bson:"overallScore,omitempty" json:"overallScore,omitempty"`
	ReviewDue    bool               `bson:"reviewDue,omitempty" json:"reviewDue,omitempty"`
	SubmittedAt  *time.Time         `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// Category returns the section map for a category key, nil for unknown keys.
func (s *Submission) Category(category string) map[string]Section {
	switch category {
	case CategoryCompanyInfo:
		return s.CompanyInfo
	case CategoryEnvironment:
		return s.Environment
	case CategorySocial:
		return s.Social
	case CategoryGovernance:
		return s.Governance
	}
	return nil
}

// SetSection upserts one section into a category map.
func (s *Submission) SetSection(category, key string, sec Section) {
	switch category {
	case CategoryCompanyInfo:
		if s.CompanyInfo == nil {
			s.CompanyInfo = map[string]Section{}
		}
		s.CompanyInfo[key] = sec
	case CategoryEnvironment:
		if s.Environment == nil {
			s.Environment = map[string]Section{}
		}
		s.Environment[key] = sec
	case CategorySocial:
		if s.Social == nil {
			s.Social = map[string]Section{}
		}
		s.Social[key] = sec
	case CategoryGovernance:
		if s.Governance == nil {
			s.Governance = map[string]Section{}
		}
		s.Governance[key] = sec
	}
}

// ValidCategory reports whether category is one of the four ESG category keys.
func ValidCategory(category string) bool {
	switch category {
	case CategoryCompanyInfo, CategoryEnvironment, CategorySocial, CategoryGovernance:
		return true
	}
	return false
}
