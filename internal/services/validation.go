package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"agencyio/internal/domain"
)

// Validation error codes, surfaced per field in 400 responses
const (
	CodeRequired         = "required"
	CodeTooLong          = "too_long"
	CodeInvalidFormat    = "invalid_format"
	CodePastDate         = "past_date"
	CodeInvalidChoice    = "invalid_choice"
	CodeDuplicateBooking = "duplicate_booking"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

// FieldError is a single field-attributed validation failure
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors aggregates all validation failures for a submission
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups error messages by field name for the response body
func (v ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string, len(v))
	for _, fe := range v {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}

func (v *ValidationErrors) add(field, code, message string) {
	*v = append(*v, FieldError{Field: field, Code: code, Message: message})
}

// ConsultationInput carries the client-writable fields of a submission.
// Status, notes and timestamps are server-controlled and have no input
// counterpart.
type ConsultationInput struct {
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Company       *string `json:"company"`
	ProjectType   string  `json:"project_type"`
	Budget        string  `json:"budget"`
	Timeline      string  `json:"timeline"`
	PreferredDate string  `json:"preferred_date"`
	PreferredTime string  `json:"preferred_time"`
	Timezone      string  `json:"timezone"`
	Message       string  `json:"message"`
}

// ConsultationPatch carries an optional subset of the client-writable
// fields for partial updates. Nil fields keep their stored value.
type ConsultationPatch struct {
	FullName      *string `json:"full_name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Company       *string `json:"company"`
	ProjectType   *string `json:"project_type"`
	Budget        *string `json:"budget"`
	Timeline      *string `json:"timeline"`
	PreferredDate *string `json:"preferred_date"`
	PreferredTime *string `json:"preferred_time"`
	Timezone      *string `json:"timezone"`
	Message       *string `json:"message"`
}

func (p *ConsultationPatch) apply(in *ConsultationInput) {
	if p.FullName != nil {
		in.FullName = *p.FullName
	}
	if p.Email != nil {
		in.Email = *p.Email
	}
	if p.Phone != nil {
		in.Phone = *p.Phone
	}
	if p.Company != nil {
		in.Company = p.Company
	}
	if p.ProjectType != nil {
		in.ProjectType = *p.ProjectType
	}
	if p.Budget != nil {
		in.Budget = *p.Budget
	}
	if p.Timeline != nil {
		in.Timeline = *p.Timeline
	}
	if p.PreferredDate != nil {
		in.PreferredDate = *p.PreferredDate
	}
	if p.PreferredTime != nil {
		in.PreferredTime = *p.PreferredTime
	}
	if p.Timezone != nil {
		in.Timezone = *p.Timezone
	}
	if p.Message != nil {
		in.Message = *p.Message
	}
}

// normalize trims whitespace, lowercases the email, canonicalizes the time
// to HH:MM and applies the configured default timezone.
func (in *ConsultationInput) normalize(defaultTimezone string) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.ProjectType = strings.TrimSpace(in.ProjectType)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.PreferredDate = strings.TrimSpace(in.PreferredDate)
	in.PreferredTime = strings.TrimSpace(in.PreferredTime)
	in.Timezone = strings.TrimSpace(in.Timezone)
	in.Message = strings.TrimSpace(in.Message)
	if in.Company != nil {
		company := strings.TrimSpace(*in.Company)
		if company == "" {
			in.Company = nil
		} else {
			in.Company = &company
		}
	}
	if in.Timezone == "" {
		in.Timezone = defaultTimezone
	}
	if t, err := parseTimeOfDay(in.PreferredTime); err == nil {
		in.PreferredTime = t.Format(domain.TimeLayout)
	}
}

// validateFields runs every field-level check and reports all failures
// together. The slot-conflict check lives in the booking service because it
// needs storage access.
func (in *ConsultationInput) validateFields(now time.Time) ValidationErrors {
	var errs ValidationErrors

	if in.FullName == "" {
		errs.add("full_name", CodeRequired, "This field is required.")
	} else if len(in.FullName) > 200 {
		errs.add("full_name", CodeTooLong, "Ensure this field has no more than 200 characters.")
	}

	if in.Email == "" {
		errs.add("email", CodeRequired, "This field is required.")
	} else if !strings.Contains(in.Email, "@") || !emailRegex.MatchString(in.Email) {
		errs.add("email", CodeInvalidFormat, "Enter a valid email address.")
	}

	if in.Phone == "" {
		errs.add("phone", CodeRequired, "This field is required.")
	} else if len(in.Phone) > 17 {
		errs.add("phone", CodeTooLong, "Ensure this field has no more than 17 characters.")
	} else if !phoneRegex.MatchString(in.Phone) {
		errs.add("phone", CodeInvalidFormat, "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed.")
	}

	if in.Company != nil && len(*in.Company) > 200 {
		errs.add("company", CodeTooLong, "Ensure this field has no more than 200 characters.")
	}

	if in.ProjectType == "" {
		errs.add("project_type", CodeRequired, "This field is required.")
	} else if !domain.ProjectType(in.ProjectType).Valid() {
		errs.add("project_type", CodeInvalidChoice, fmt.Sprintf("%q is not a valid choice.", in.ProjectType))
	}

	if in.Budget == "" {
		errs.add("budget", CodeRequired, "This field is required.")
	} else if !domain.BudgetRange(in.Budget).Valid() {
		errs.add("budget", CodeInvalidChoice, fmt.Sprintf("%q is not a valid choice.", in.Budget))
	}

	if in.Timeline == "" {
		errs.add("timeline", CodeRequired, "This field is required.")
	} else if !domain.Timeline(in.Timeline).Valid() {
		errs.add("timeline", CodeInvalidChoice, fmt.Sprintf("%q is not a valid choice.", in.Timeline))
	}

	if in.PreferredDate == "" {
		errs.add("preferred_date", CodeRequired, "This field is required.")
	} else if d, err := time.Parse(domain.DateLayout, in.PreferredDate); err != nil {
		errs.add("preferred_date", CodeInvalidFormat, "Date has wrong format. Use YYYY-MM-DD.")
	} else if d.Before(now.Truncate(24 * time.Hour)) {
		errs.add("preferred_date", CodePastDate, "Preferred date cannot be in the past.")
	}

	if in.PreferredTime == "" {
		errs.add("preferred_time", CodeRequired, "This field is required.")
	} else if _, err := parseTimeOfDay(in.PreferredTime); err != nil {
		errs.add("preferred_time", CodeInvalidFormat, "Time has wrong format. Use HH:MM.")
	}

	if in.Message == "" {
		errs.add("message", CodeRequired, "This field is required.")
	}

	return errs
}

// parseTimeOfDay accepts HH:MM with optional seconds
func parseTimeOfDay(value string) (time.Time, error) {
	for _, layout := range []string{domain.TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day: %q", value)
}
