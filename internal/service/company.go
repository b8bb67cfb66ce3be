package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

// companySortFields is the allow-list of caller-facing sort fields.
var companySortFields = map[string]string{
	"companyName": "company_name",
	"dateJoined":  "date_joined",
	"status":      "status",
}

type companyService struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository, userRepo repository.UserRepository) CompanyService {
	return &companyService{companyRepo: companyRepo, userRepo: userRepo}
}

// adminCompanies resolves the admin-to-company link set for role=admin
// actors; empty for everyone else.
func adminCompanies(ctx context.Context, repo repository.CompanyRepository, actor domain.Actor) ([]string, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, nil
	}
	ids, err := repo.AdminCompanies(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "company links")
	}
	return ids, nil
}

func (s *companyService) Create(ctx context.Context, actor domain.Actor, in CreateCompanyInput) (*domain.Company, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	fe.required("company_name", in.CompanyName)
	fe.required("email", in.Email)
	fe.email("email", in.Email)
	fe.required("admin_user_id", in.AdminUserID)
	fe.uuid("admin_user_id", in.AdminUserID)
	status := domain.CompanyStatus(in.Status)
	if in.Status == "" {
		status = domain.CompanyStatusPending
	} else if !status.Valid() {
		fe.add("status", "must be one of active, inactive, pending, suspended")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionCreate, domain.KindCompany, authz.Target{})); err != nil {
		return nil, err
	}

	// Invariant: a company must never exist without a designated admin.
	if in.AdminUserID == "" {
		return nil, domain.Invariant(domain.CodeAdminRequired, "a designated admin user is required")
	}
	admin, err := s.userRepo.GetByID(ctx, in.AdminUserID)
	if err != nil {
		if domain.IsNotFound(storeErr(err, "admin user")) {
			return nil, domain.Invariant(domain.CodeAdminRequired, "admin user does not exist")
		}
		return nil, storeErr(err, "admin user")
	}
	if admin.Role != domain.RoleAdmin && admin.Role != domain.RoleSuperAdmin {
		return nil, domain.Invariant(domain.CodeAdminRequired, "designated admin must hold the admin role")
	}

	if _, err := s.companyRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.Validation("invalid input", map[string][]string{"email": {"is already in use"}})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeErr(err, "company")
	}

	company := &domain.Company{
		ID:                        uuid.NewString(),
		CompanyName:               in.CompanyName,
		Address:                   in.Address,
		Phone:                     in.Phone,
		Email:                     in.Email,
		Status:                    status,
		PreferredSubscriptionPlan: in.PreferredSubscriptionPlan,
		NumOfEmployees:            in.NumOfEmployees,
	}
	if err := s.companyRepo.Create(ctx, company, admin.ID); err != nil {
		return nil, storeErr(err, "company")
	}
	logger.Info("company created", "company_id", company.ID, "actor_id", actor.ID)
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.Company, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	// Scoped read: a company outside the actor's visibility reports
	// NotFound rather than Unauthorized, so existence never leaks.
	company, err := s.companyRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "company")
	}
	return company, nil
}

func (s *companyService) List(ctx context.Context, actor domain.Actor, in ListCompaniesInput) ([]domain.Company, domain.PageInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, domain.PageInfo{}, err
	}
	sortBy, err := validSort(companySortFields, in.Page.SortBy)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	var status *domain.CompanyStatus
	if in.Status != "" {
		st := domain.CompanyStatus(in.Status)
		if !st.Valid() {
			return nil, domain.PageInfo{}, domain.Validation("invalid input", fieldErrors{"status": {"must be one of active, inactive, pending, suspended"}})
		}
		status = &st
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	page := in.Page.Normalize()
	companies, total, err := s.companyRepo.List(ctx, repository.CompanyFilter{
		Scope:    authz.ScopeFor(actor, adminOf),
		Search:   in.Search,
		Status:   status,
		SortBy:   sortBy,
		SortDesc: in.Page.SortDesc,
		Page:     page,
	})
	if err != nil {
		return nil, domain.PageInfo{}, storeErr(err, "companies")
	}
	return companies, domain.NewPageInfo(total, page), nil
}

func (s *companyService) Update(ctx context.Context, actor domain.Actor, id string, patch UpdateCompanyPatch) (*domain.Company, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if patch.Email != nil {
		fe.email("email", *patch.Email)
	}
	var status *domain.CompanyStatus
	if patch.Status != nil {
		st := domain.CompanyStatus(*patch.Status)
		if !st.Valid() {
			fe.add("status", "must be one of active, inactive, pending, suspended")
		}
		status = &st
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "company")
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindCompany, authz.Target{CompanyID: company.ID})); err != nil {
		return nil, err
	}

	if patch.CompanyName != nil {
		company.CompanyName = *patch.CompanyName
	}
	if patch.Address != nil {
		company.Address = *patch.Address
	}
	if patch.Phone != nil {
		company.Phone = *patch.Phone
	}
	if patch.Email != nil {
		company.Email = *patch.Email
	}
	if status != nil {
		company.Status = *status
	}
	if patch.PreferredSubscriptionPlan != nil {
		company.PreferredSubscriptionPlan = *patch.PreferredSubscriptionPlan
	}
	if patch.NumOfEmployees != nil {
		company.NumOfEmployees = *patch.NumOfEmployees
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, storeErr(err, "company")
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionDelete, domain.KindCompany, authz.Target{CompanyID: id})); err != nil {
		return err
	}
	if _, err := s.companyRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf)); err != nil {
		return storeErr(err, "company")
	}

	// Cascade: reports, their grants and role=user members go with the
	// company, admin links are removed last (one transaction).
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return storeErr(err, "company")
	}
	logger.Info("company deleted", "company_id", id, "actor_id", actor.ID)
	return nil
}

func (s *companyService) AssignAdmin(ctx context.Context, actor domain.Actor, companyID, userID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("company_id", companyID)
	fe.uuid("company_id", companyID)
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	if err := fe.err(); err != nil {
		return err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindCompany, authz.Target{CompanyID: companyID})); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err, "user")
	}
	if user.Role != domain.RoleAdmin && user.Role != domain.RoleSuperAdmin {
		return domain.Invariant(domain.CodeAdminRequired, "only admin users can administer a company")
	}
	if err := s.companyRepo.AddAdmin(ctx, companyID, userID); err != nil {
		return storeErr(err, "admin link")
	}
	return nil
}

func (s *companyService) UnassignAdmin(ctx context.Context, actor domain.Actor, companyID, userID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("company_id", companyID)
	fe.uuid("company_id", companyID)
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	if err := fe.err(); err != nil {
		return err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindCompany, authz.Target{CompanyID: companyID})); err != nil {
		return err
	}

	// Invariant: a company must keep at least one admin link.
	count, err := s.companyRepo.CountAdmins(ctx, companyID)
	if err != nil {
		return storeErr(err, "admin links")
	}
	if count <= 1 {
		return domain.Invariant(domain.CodeSoleAdmin,
			fmt.Sprintf("cannot remove the sole admin of company %s; assign another admin first", companyID),
			companyID)
	}
	if err := s.companyRepo.RemoveAdmin(ctx, companyID, userID); err != nil {
		return storeErr(err, "admin link")
	}
	return nil
}

func (s *companyService) ListAdmins(ctx context.Context, actor domain.Actor, companyID string) ([]string, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("company_id", companyID)
	fe.uuid("company_id", companyID)
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	// Visibility rides along with the company itself: out of scope
	// reads as NotFound.
	if _, err := s.companyRepo.GetByID(ctx, companyID, authz.ScopeFor(actor, adminOf)); err != nil {
		return nil, storeErr(err, "company")
	}
	ids, err := s.companyRepo.AdminIDs(ctx, companyID)
	if err != nil {
		return nil, storeErr(err, "admin links")
	}
	return ids, nil
}
