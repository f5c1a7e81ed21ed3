package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProjectType is the kind of project the client wants to discuss
type ProjectType string

const (
	ProjectWebDevelopment ProjectType = "web_development"
	ProjectMobileApp      ProjectType = "mobile_app"
	ProjectAIML           ProjectType = "ai_ml"
	ProjectEcommerce      ProjectType = "ecommerce"
	ProjectEnterprise     ProjectType = "enterprise"
	ProjectConsulting     ProjectType = "consulting"
	ProjectOther          ProjectType = "other"
)

var projectTypeLabels = map[ProjectType]string{
	ProjectWebDevelopment: "Web Development",
	ProjectMobileApp:      "Mobile App",
	ProjectAIML:           "AI/ML Solution",
	ProjectEcommerce:      "E-commerce Platform",
	ProjectEnterprise:     "Enterprise Software",
	ProjectConsulting:     "Technical Consulting",
	ProjectOther:          "Other",
}

// Valid reports whether the value is one of the accepted project types
func (p ProjectType) Valid() bool {
	_, ok := projectTypeLabels[p]
	return ok
}

// Label returns the display name for the project type
func (p ProjectType) Label() string {
	if label, ok := projectTypeLabels[p]; ok {
		return label
	}
	return string(p)
}

// BudgetRange is the client's budget bracket
type BudgetRange string

const (
	Budget5kTo10k   BudgetRange = "5k-10k"
	Budget10kTo25k  BudgetRange = "10k-25k"
	Budget25kTo50k  BudgetRange = "25k-50k"
	Budget50kTo100k BudgetRange = "50k-100k"
	Budget100kPlus  BudgetRange = "100k+"
)

var budgetLabels = map[BudgetRange]string{
	Budget5kTo10k:   "$5,000 - $10,000",
	Budget10kTo25k:  "$10,000 - $25,000",
	Budget25kTo50k:  "$25,000 - $50,000",
	Budget50kTo100k: "$50,000 - $100,000",
	Budget100kPlus:  "$100,000+",
}

// Valid reports whether the value is one of the accepted budget ranges
func (b BudgetRange) Valid() bool {
	_, ok := budgetLabels[b]
	return ok
}

// Label returns the display name for the budget range
func (b BudgetRange) Label() string {
	if label, ok := budgetLabels[b]; ok {
		return label
	}
	return string(b)
}

// Timeline is the client's desired delivery window
type Timeline string

const (
	TimelineUrgent     Timeline = "urgent"
	TimelineOneToThree Timeline = "1-3_months"
	TimelineThreeToSix Timeline = "3-6_months"
	TimelineSixPlus    Timeline = "6+_months"
	TimelineFlexible   Timeline = "flexible"
)

var timelineLabels = map[Timeline]string{
	TimelineUrgent:     "Urgent (1-2 weeks)",
	TimelineOneToThree: "1-3 months",
	TimelineThreeToSix: "3-6 months",
	TimelineSixPlus:    "6+ months",
	TimelineFlexible:   "Flexible",
}

// Valid reports whether the value is one of the accepted timelines
func (t Timeline) Valid() bool {
	_, ok := timelineLabels[t]
	return ok
}

// Label returns the display name for the timeline
func (t Timeline) Label() string {
	if label, ok := timelineLabels[t]; ok {
		return label
	}
	return string(t)
}

// Status is the lifecycle state of a consultation booking
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// Valid reports whether the value is one of the accepted statuses
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display name for the status
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Terminal reports whether the status ends the booking lifecycle.
// A terminal record releases its slot for rebooking.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DateLayout and TimeLayout are the wire formats for the schedule fields
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Consultation represents a consultation booking request
type Consultation struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	FullName      string      `gorm:"size:200;not null" json:"full_name"`
	Email         string      `gorm:"not null;index" json:"email"`
	Phone         string      `gorm:"size:17;not null" json:"phone"`
	Company       *string     `gorm:"size:200" json:"company"`
	ProjectType   ProjectType `gorm:"size:50;not null" json:"project_type"`
	Budget        BudgetRange `gorm:"size:20;not null" json:"budget"`
	Timeline      Timeline    `gorm:"size:20;not null" json:"timeline"`
	PreferredDate string      `gorm:"size:10;not null" json:"preferred_date"` // YYYY-MM-DD
	PreferredTime string      `gorm:"size:8;not null" json:"preferred_time"`  // HH:MM
	Timezone      string      `gorm:"size:10;default:'IST'" json:"timezone"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	Status        Status      `gorm:"size:20;default:'pending'" json:"status"`
	// Slot holds "email|date|time" while the record is non-terminal and is
	// cleared once the booking completes or is cancelled. The unique index
	// makes double-booking impossible even when two creates race past the
	// validation pre-check.
	Slot      *string   `gorm:"uniqueIndex" json:"-"`
	Notes     *string   `gorm:"type:text" json:"-"` // internal, never exposed to clients
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Consultation
func (Consultation) TableName() string {
	return "consultations"
}

// SlotKey identifies the booking slot claimed by this consultation
func (c *Consultation) SlotKey() string {
	return fmt.Sprintf("%s|%s|%s", c.Email, c.PreferredDate, c.PreferredTime)
}

// IsUpcoming reports whether the preferred date is today or later
func (c *Consultation) IsUpcoming() bool {
	d, err := time.Parse(DateLayout, c.PreferredDate)
	if err != nil {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return !d.Before(today)
}

// BeforeCreate hook
func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusPending
	}
	c.syncSlot()
	return nil
}

// BeforeUpdate hook
func (c *Consultation) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now().UTC()
	c.syncSlot()
	return nil
}

// syncSlot keeps the slot key consistent with the lifecycle state
func (c *Consultation) syncSlot() {
	if c.Status.Terminal() {
		c.Slot = nil
		return
	}
	key := c.SlotKey()
	c.Slot = &key
}

func (c *Consultation) String() string {
	return fmt.Sprintf("%s - %s (%s)", c.FullName, c.ProjectType, c.PreferredDate)
}
