package postgres

import (
	"database/sql"

	"tenantadmin-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CompanyRepository
	repository.UserRepository
	repository.ReportRepository
	repository.BillingRepository
	repository.SubscriptionRepository
	repository.SessionRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		CompanyRepository:      NewCompanyRepository(db),
		UserRepository:         NewUserRepository(db),
		ReportRepository:       NewReportRepository(db),
		BillingRepository:      NewBillingRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		SessionRepository:      NewSessionRepository(db),
	}
}
