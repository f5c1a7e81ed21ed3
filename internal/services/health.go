package services

import (
	"context"

	"gorm.io/gorm"
)

// HealthService implements the health service
type HealthService struct {
	name string
	db   *gorm.DB
}

// HealthResult is the health check response
type HealthResult struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewHealthService creates a new health service
func NewHealthService(name string, db *gorm.DB) *HealthService {
	return &HealthService{name: name, db: db}
}

// Check implements the health check method
func (s *HealthService) Check(ctx context.Context) *HealthResult {
	status := "healthy"
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil {
			status = "degraded"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status = "degraded"
		}
	}
	return &HealthResult{
		Status:  status,
		Service: s.name,
	}
}
