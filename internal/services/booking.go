package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"agencyio/internal/database"
	"agencyio/internal/domain"
	"agencyio/internal/metrics"
	apperrors "agencyio/pkg/errors"
)

const maxListLimit = 500

// BookingService orchestrates validate -> persist -> notify for consultation
// bookings and exposes the status transition operations.
type BookingService struct {
	db              *gorm.DB
	notifier        *Notifier
	defaultTimezone string
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB, notifier *Notifier, defaultTimezone string) *BookingService {
	return &BookingService{
		db:              db,
		notifier:        notifier,
		defaultTimezone: defaultTimezone,
	}
}

// ListFilters narrows the consultation listing
type ListFilters struct {
	Status      string
	ProjectType string
	Budget      string
	Timeline    string
	Search      string // matches full_name, email, company or message
	Skip        int
	Limit       int
}

// Create validates and persists a new consultation, then dispatches the
// client confirmation and admin notification. Notification failures never
// fail the creation.
func (s *BookingService) Create(ctx context.Context, input ConsultationInput) (*domain.Consultation, error) {
	log.Printf("[BOOKING] Create request: email=%s, date=%s %s", input.Email, input.PreferredDate, input.PreferredTime)

	input.normalize(s.defaultTimezone)
	errs := input.validateFields(time.Now().UTC())
	errs = s.checkSlotConflict(ctx, errs, &input, 0)
	if len(errs) > 0 {
		log.Printf("[BOOKING] Create failed: validation error: %v", errs)
		recordValidationFailures(errs)
		return nil, errs
	}

	consultation := &domain.Consultation{
		FullName:      input.FullName,
		Email:         input.Email,
		Phone:         input.Phone,
		Company:       input.Company,
		ProjectType:   domain.ProjectType(input.ProjectType),
		Budget:        domain.BudgetRange(input.Budget),
		Timeline:      domain.Timeline(input.Timeline),
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		Timezone:      input.Timezone,
		Message:       input.Message,
		Status:        domain.StatusPending,
	}

	if err := s.db.WithContext(ctx).Create(consultation).Error; err != nil {
		if database.IsDuplicateKey(err) {
			// A concurrent create claimed the slot between the pre-check
			// and this insert; the unique index is the authority.
			log.Printf("[BOOKING] Create failed: slot already booked: email=%s, date=%s %s",
				input.Email, input.PreferredDate, input.PreferredTime)
			dup := duplicateBookingError()
			recordValidationFailures(dup)
			return nil, dup
		}
		log.Printf("[BOOKING] Create failed: database error: %v", err)
		return nil, fmt.Errorf("failed to save consultation: %w", err)
	}

	log.Printf("[BOOKING] Create successful: id=%d, email=%s", consultation.ID, consultation.Email)
	metrics.RecordConsultationCreated()

	s.notifier.Notify(KindClientConfirmation, consultation)
	s.notifier.Notify(KindAdminNotification, consultation)

	return consultation, nil
}

// List returns consultations ordered newest first
func (s *BookingService) List(ctx context.Context, filters ListFilters) ([]domain.Consultation, error) {
	log.Printf("[BOOKING] List request: status=%s, skip=%d, limit=%d", filters.Status, filters.Skip, filters.Limit)

	query := s.db.WithContext(ctx).Order("created_at DESC")

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ProjectType != "" {
		query = query.Where("project_type = ?", filters.ProjectType)
	}
	if filters.Budget != "" {
		query = query.Where("budget = ?", filters.Budget)
	}
	if filters.Timeline != "" {
		query = query.Where("timeline = ?", filters.Timeline)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"full_name LIKE ? OR email LIKE ? OR company LIKE ? OR message LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filters.Skip > 0 {
		query = query.Offset(filters.Skip)
	}
	limit := filters.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Limit(limit)

	var consultations []domain.Consultation
	if err := query.Find(&consultations).Error; err != nil {
		log.Printf("[BOOKING] List failed: database error: %v", err)
		return nil, fmt.Errorf("failed to fetch consultations: %w", err)
	}

	log.Printf("[BOOKING] List successful: returned %d consultations", len(consultations))
	return consultations, nil
}

// Get returns one consultation by id
func (s *BookingService) Get(ctx context.Context, id uint) (*domain.Consultation, error) {
	var consultation domain.Consultation
	if err := s.db.WithContext(ctx).First(&consultation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Consultation not found")
		}
		return nil, fmt.Errorf("failed to fetch consultation: %w", err)
	}
	return &consultation, nil
}

// Confirm marks a consultation as confirmed
func (s *BookingService) Confirm(ctx context.Context, id uint) (*domain.Consultation, error) {
	return s.transition(ctx, id, domain.StatusConfirmed)
}

// Cancel marks a consultation as cancelled, releasing its slot
func (s *BookingService) Cancel(ctx context.Context, id uint) (*domain.Consultation, error) {
	return s.transition(ctx, id, domain.StatusCancelled)
}

// transition applies a status change. Re-asserting the current status is an
// idempotent success; any change away from a terminal status is rejected,
// because terminal records have released their slot for rebooking.
func (s *BookingService) transition(ctx context.Context, id uint, target domain.Status) (*domain.Consultation, error) {
	consultation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if consultation.Status == target {
		return consultation, nil
	}
	if consultation.Status.Terminal() {
		log.Printf("[BOOKING] Transition rejected: id=%d, %s -> %s", id, consultation.Status, target)
		return nil, apperrors.New(apperrors.ErrCodeConflict,
			fmt.Sprintf("Cannot change a %s consultation", consultation.Status))
	}

	consultation.Status = target
	if err := s.db.WithContext(ctx).Save(consultation).Error; err != nil {
		log.Printf("[BOOKING] Transition failed: id=%d, save error: %v", id, err)
		return nil, fmt.Errorf("failed to update consultation: %w", err)
	}

	log.Printf("[BOOKING] Transition successful: id=%d, status=%s", id, target)
	metrics.RecordStatusChange(string(target))
	return consultation, nil
}

// Update replaces the client-writable fields of an existing consultation.
// Status and notes stay server-controlled.
func (s *BookingService) Update(ctx context.Context, id uint, input ConsultationInput) (*domain.Consultation, error) {
	log.Printf("[BOOKING] Update request: id=%d", id)

	consultation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input.normalize(s.defaultTimezone)
	errs := input.validateFields(time.Now().UTC())
	if !consultation.Status.Terminal() {
		errs = s.checkSlotConflict(ctx, errs, &input, id)
	}
	if len(errs) > 0 {
		log.Printf("[BOOKING] Update failed: validation error: %v", errs)
		recordValidationFailures(errs)
		return nil, errs
	}

	consultation.FullName = input.FullName
	consultation.Email = input.Email
	consultation.Phone = input.Phone
	consultation.Company = input.Company
	consultation.ProjectType = domain.ProjectType(input.ProjectType)
	consultation.Budget = domain.BudgetRange(input.Budget)
	consultation.Timeline = domain.Timeline(input.Timeline)
	consultation.PreferredDate = input.PreferredDate
	consultation.PreferredTime = input.PreferredTime
	consultation.Timezone = input.Timezone
	consultation.Message = input.Message

	if err := s.db.WithContext(ctx).Save(consultation).Error; err != nil {
		if database.IsDuplicateKey(err) {
			dup := duplicateBookingError()
			recordValidationFailures(dup)
			return nil, dup
		}
		log.Printf("[BOOKING] Update failed: save error: %v", err)
		return nil, fmt.Errorf("failed to update consultation: %w", err)
	}

	log.Printf("[BOOKING] Update successful: id=%d", id)
	return consultation, nil
}

// PartialUpdate overlays the provided fields on an existing consultation
// and re-runs the full validation over the merged result
func (s *BookingService) PartialUpdate(ctx context.Context, id uint, patch ConsultationPatch) (*domain.Consultation, error) {
	log.Printf("[BOOKING] PartialUpdate request: id=%d", id)

	consultation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input := ConsultationInput{
		FullName:      consultation.FullName,
		Email:         consultation.Email,
		Phone:         consultation.Phone,
		Company:       consultation.Company,
		ProjectType:   string(consultation.ProjectType),
		Budget:        string(consultation.Budget),
		Timeline:      string(consultation.Timeline),
		PreferredDate: consultation.PreferredDate,
		PreferredTime: consultation.PreferredTime,
		Timezone:      consultation.Timezone,
		Message:       consultation.Message,
	}
	patch.apply(&input)

	return s.Update(ctx, id, input)
}

// Delete removes a consultation
func (s *BookingService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.Consultation{}, id)
	if result.Error != nil {
		log.Printf("[BOOKING] Delete failed: id=%d, database error: %v", id, result.Error)
		return fmt.Errorf("failed to delete consultation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "Consultation not found")
	}
	log.Printf("[BOOKING] Delete successful: id=%d", id)
	return nil
}

// BulkUpdateStatus applies one status to many consultations, mirroring the
// administrative bulk confirm/complete/cancel action. Records that would
// need an illegal transition, and ids that do not exist, are skipped.
func (s *BookingService) BulkUpdateStatus(ctx context.Context, ids []uint, target domain.Status) (updated, skipped int, err error) {
	if !target.Valid() || target == domain.StatusPending {
		return 0, 0, apperrors.New(apperrors.ErrCodeBadRequest,
			fmt.Sprintf("%q is not a valid bulk status.", target))
	}

	for _, id := range ids {
		if _, terr := s.transition(ctx, id, target); terr != nil {
			if apperrors.IsNotFound(terr) || apperrors.IsConflict(terr) {
				skipped++
				continue
			}
			return updated, skipped, terr
		}
		updated++
	}

	log.Printf("[BOOKING] BulkUpdateStatus: status=%s, updated=%d, skipped=%d", target, updated, skipped)
	return updated, skipped, nil
}

// checkSlotConflict appends a DuplicateBooking error when another
// non-terminal consultation already claims the same (email, date, time)
// slot. It only runs when the slot fields themselves passed validation.
func (s *BookingService) checkSlotConflict(ctx context.Context, errs ValidationErrors, input *ConsultationInput, excludeID uint) ValidationErrors {
	for _, fe := range errs {
		if fe.Field == "email" || fe.Field == "preferred_date" || fe.Field == "preferred_time" {
			return errs
		}
	}

	query := s.db.WithContext(ctx).Model(&domain.Consultation{}).
		Where("email = ? AND preferred_date = ? AND preferred_time = ?",
			input.Email, input.PreferredDate, input.PreferredTime).
		Where("status IN ?", []domain.Status{domain.StatusPending, domain.StatusConfirmed})
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		log.Printf("[BOOKING] Slot conflict check failed: %v", err)
		return errs // insert-time unique index still guards the slot
	}
	if count > 0 {
		errs = append(errs, duplicateBookingError()...)
	}
	return errs
}

func duplicateBookingError() ValidationErrors {
	return ValidationErrors{{
		Field:   "preferred_time",
		Code:    CodeDuplicateBooking,
		Message: "You already have a consultation booked for this time.",
	}}
}

func recordValidationFailures(errs ValidationErrors) {
	for _, fe := range errs {
		metrics.RecordValidationFailure(fe.Code)
	}
}
