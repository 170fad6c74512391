package models

import (
	"fmt"
	"strings"
)

// FieldDef หนึ่ง input field ใน section
type FieldDef struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

// SectionDef นิยามหัวข้อแบบ declarative ตัวเดียวใช้ได้ทุก category
// RequiresCertificate = section นี้บังคับแนบหลักฐาน
type SectionDef struct {
	Key                 string     `json:"key"`
	Label               string     `json:"label"`
	Fields              []FieldDef `json:"fields"`
	RequiresCertificate bool       `json:"requiresCertificate"`
	EvidenceHint        string     `json:"evidenceHint,omitempty"`
}

// CategorySchema ลำดับ section ของ category หนึ่ง (ใช้เป็นลำดับ step ของ wizard ด้วย)
type CategorySchema struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	Sections []SectionDef `json:"sections"`
}

// Validate checks a section's current values against its definition.
// Pure: it never mutates anything, it only reports the first failure.
func (d SectionDef) Validate(value map[string]string, hasCertificate bool) error {
	for _, f := range d.Fields {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(value[f.Name]) == "" {
			return fmt.Errorf("%s: %s is required", d.Label, f.Label)
		}
	}
	if d.RequiresCertificate && !hasCertificate {
		return fmt.Errorf("%s: supporting document is required", d.Label)
	}
	return nil
}

// Section returns the definition for a section key.
func (s CategorySchema) Section(key string) (SectionDef, bool) {
	for _, d := range s.Sections {
		if d.Key == key {
			return d, true
		}
	}
	return SectionDef{}, false
}

func textField(label, placeholder string) []FieldDef {
	return []FieldDef{{Name: "value", Label: label, Placeholder: placeholder, Required: true}}
}

var schemas = []CategorySchema{
	{
		Key:   CategoryCompanyInfo,
		Label: "Company Information",
		Sections: []SectionDef{
			{
				Key:   "basicDetails",
				Label: "Basic Company Details",
				Fields: []FieldDef{
					{Name: "companyName", Label: "Company Name", Required: true},
					{Name: "registrationNumber", Label: "Registration Number", Required: true},
					{Name: "establishmentYear", Label: "Establishment Year", Required: true},
					{Name: "companyAddress", Label: "Company Address", Required: true},
					{Name: "businessType", Label: "Business Type", Required: true},
				},
				RequiresCertificate: true,
				EvidenceHint:        "Company registration certificate",
			},
			{
				Key:   "leadership",
				Label: "Leadership / Organization",
				Fields: []FieldDef{
					{Name: "rolesDefinedClearly", Label: "Are roles and responsibilities defined clearly?", Required: true},
					{Name: "keyRoles", Label: "Key roles and responsibilities", Required: false},
				},
			},
			{
				Key:   "sustainability",
				Label: "Sustainability Certificates",
				Fields: []FieldDef{
					{Name: "certifications", Label: "Certifications held (type, level, validity)", Required: false},
				},
				EvidenceHint: "ISO 14001, SA8000 or similar certificates",
			},
		},
	},
	{
		Key:   CategoryEnvironment,
		Label: "Environment",
		Sections: []SectionDef{
			{
				Key:          "renewableEnergy",
				Label:        "Renewable Energy",
				Fields:       textField("Portion of energy consumption from renewable sources", "Enter value (e.g., 500 kWh/month or 30%)"),
				EvidenceHint: "Renewable energy certificates, generation data (solar, wind), etc.",
			},
			{
				Key:          "waterConsumption",
				Label:        "Water Consumption",
				Fields:       textField("Total water consumption of the facility", "Enter value (e.g., 200 m³/month)"),
				EvidenceHint: "Water bills, meter readings, water audit reports, etc.",
			},
			{
				Key:          "rainwaterHarvesting",
				Label:        "Rainwater Harvesting",
				Fields:       textField("Rainwater harvesting practice and volume collected", "Enter value (e.g., Yes, 50 m³/year or No)"),
				EvidenceHint: "System design documents, collection logs, maintenance records, etc.",
			},
			{
				Key:                 "emissionControl",
				Label:               "Emission Control",
				Fields:              textField("Systems for emissions, effluent discharges and waste", "Enter details of your systems"),
				RequiresCertificate: true,
				EvidenceHint:        "Compliance certificates, environmental audit reports, etc.",
			},
			{
				Key:          "resourceConservation",
				Label:        "Resource Conservation",
				Fields:       textField("Targets to reduce non-renewable resource use", "Describe your conservation targets and methods"),
				EvidenceHint: "Resource consumption logs, conservation targets, etc.",
			},
		},
	},
	{
		Key:   CategorySocial,
		Label: "Social",
		Sections: []SectionDef{
			{
				Key:          "swachhWorkplace",
				Label:        "Swachh Workplace",
				Fields:       textField("Workplace hygiene and cleanliness practices", "Describe workplace cleanliness practices"),
				EvidenceHint: "Housekeeping policies, audit photos, etc.",
			},
			{
				Key:                 "occupationalSafety",
				Label:               "Occupational Safety",
				Fields:              textField("Occupational health and safety measures", "Describe safety measures and incident history"),
				RequiresCertificate: true,
				EvidenceHint:        "Safety compliance certificates, training records, etc.",
			},
			{
				Key:          "hrManagement",
				Label:        "HR Management",
				Fields:       textField("Fair wages, working hours and labour practices", "Describe HR policies"),
				EvidenceHint: "HR policy documents, payroll summaries, etc.",
			},
			{
				Key:          "csrResponsibility",
				Label:        "CSR Responsibility",
				Fields:       textField("Corporate social responsibility initiatives", "Describe CSR activities"),
				EvidenceHint: "CSR reports, community programme records, etc.",
			},
		},
	},
	{
		Key:   CategoryGovernance,
		Label: "Governance",
		Sections: []SectionDef{
			{
				Key:          "deliveryPerformance",
				Label:        "Delivery Performance",
				Fields:       textField("On-time delivery performance", "Enter value (e.g., 95% OTD)"),
				EvidenceHint: "Delivery performance reports, customer scorecards, etc.",
			},
			{
				Key:                 "qualityManagement",
				Label:               "Quality Management",
				Fields:              textField("Quality management system in place", "Describe your QMS (e.g., ISO 9001)"),
				RequiresCertificate: true,
				EvidenceHint:        "ISO 9001 certificate, quality manuals, etc.",
			},
			{
				Key:          "processControl",
				Label:        "Process Control",
				Fields:       textField("Process control and monitoring systems", "Describe process control methods"),
				EvidenceHint: "Control plans, SPC charts, etc.",
			},
			{
				Key:          "materialManagement",
				Label:        "Material Management",
				Fields:       textField("Material storage, handling and traceability", "Describe material management practices"),
				EvidenceHint: "Inventory procedures, traceability records, etc.",
			},
			{
				Key:          "maintenanceCalibration",
				Label:        "Maintenance & Calibration",
				Fields:       textField("Preventive maintenance and calibration programme", "Describe maintenance and calibration schedules"),
				EvidenceHint: "Maintenance logs, calibration certificates, etc.",
			},
			{
				Key:          "technologyUpgradation",
				Label:        "Technology Upgradation",
				Fields:       textField("Plans for technology and process upgrades", "Describe upgrade plans and investments"),
				EvidenceHint: "Investment plans, upgrade roadmaps, etc.",
			},
		},
	},
}

// Schemas returns every category schema in display order.
func Schemas() []CategorySchema {
	return schemas
}

// SchemaFor returns the schema of one category.
func SchemaFor(category string) (CategorySchema, bool) {
	for _, s := range schemas {
		if s.Key == category {
			return s, true
		}
	}
	return CategorySchema{}, false
}
