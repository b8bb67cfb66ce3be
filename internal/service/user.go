package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

var userSortFields = map[string]string{
	"userName":    "user_name",
	"email":       "email",
	"dateCreated": "date_created",
	"lastLogin":   "last_login",
}

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	bcryptCost  int
	historySize int
}

func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, bcryptCost, historySize int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if historySize == 0 {
		historySize = 5
	}
	return &userService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		bcryptCost:  bcryptCost,
		historySize: historySize,
	}
}

func (s *userService) Create(ctx context.Context, actor domain.Actor, in CreateUserInput) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	fe.required("user_name", in.UserName)
	fe.required("email", in.Email)
	fe.email("email", in.Email)
	fe.required("password", in.Password)
	role := domain.Role(in.Role)
	if !role.Assignable() {
		fe.add("role", "must be one of superAdmin, admin, user")
	}
	if in.CompanyID != nil {
		fe.uuid("company_id", *in.CompanyID)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	target := authz.Target{UserRole: role}
	if in.CompanyID != nil {
		target.CompanyID = *in.CompanyID
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionCreate, domain.KindUser, target)); err != nil {
		return nil, err
	}

	var companyID *string
	switch role {
	case domain.RoleUser:
		// Invariant: role=user requires an existing, active company. The
		// check runs before any write so a failure persists nothing.
		if in.CompanyID == nil || *in.CompanyID == "" {
			return nil, domain.Invariant(domain.CodeCompanyRequired, "a user must belong to a company")
		}
		company, err := s.companyRepo.GetByID(ctx, *in.CompanyID, authz.Scope{All: true})
		if err != nil {
			if domain.IsNotFound(storeErr(err, "company")) {
				return nil, domain.Invariant(domain.CodeCompanyRequired, "company does not exist")
			}
			return nil, storeErr(err, "company")
		}
		if company.Status != domain.CompanyStatusActive {
			return nil, domain.Invariant(domain.CodeCompanyRequired, "company is not active")
		}
		companyID = &company.ID
	default:
		// Admins are linked through company_admins, never through the
		// company_id column.
		companyID = nil
	}

	if _, err := s.userRepo.GetByUserName(ctx, in.UserName); err == nil {
		return nil, domain.Validation("invalid input", map[string][]string{"user_name": {"is already taken"}})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeErr(err, "user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		logger.Error("password hashing failed", "error", err)
		return nil, domain.Internal()
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		UserName:     in.UserName,
		Email:        in.Email,
		Role:         role,
		CompanyID:    companyID,
		Status:       domain.UserStatusActive,
		PasswordHash: string(hash),
	}
	var adminLinks []string
	if role == domain.RoleAdmin {
		adminLinks = in.AdminCompanyIDs
	}
	// One transaction: the row, its first history record and the admin
	// links land together or not at all.
	rec := &domain.PasswordRecord{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		PasswordHash: user.PasswordHash,
	}
	if err := s.userRepo.Create(ctx, user, rec, adminLinks, s.historySize); err != nil {
		return nil, storeErr(err, "user")
	}
	logger.Info("user created", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	d := authz.Decide(actor, adminOf, authz.ActionRead, domain.KindUser, userTarget(actor, user))
	if !d.Allowed {
		// Reads never reveal rows outside the actor's visibility.
		return nil, domain.NotFoundErr("user")
	}
	return user, nil
}

func userTarget(actor domain.Actor, user *domain.User) authz.Target {
	t := authz.Target{UserRole: user.Role, Self: actor.ID == user.ID}
	if user.CompanyID != nil {
		t.CompanyID = *user.CompanyID
	}
	return t
}

func (s *userService) List(ctx context.Context, actor domain.Actor, in ListUsersInput) ([]domain.User, domain.PageInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, domain.PageInfo{}, err
	}
	sortBy, err := validSort(userSortFields, in.Page.SortBy)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	fe := fieldErrors{}
	var role *domain.Role
	if in.Role != "" {
		r := domain.Role(in.Role)
		if !r.Assignable() {
			fe.add("role", "must be one of superAdmin, admin, user")
		}
		role = &r
	}
	var status *domain.UserStatus
	if in.Status != "" {
		st := domain.UserStatus(in.Status)
		if !st.Valid() {
			fe.add("status", "must be one of active, inactive")
		}
		status = &st
	}
	if in.CompanyID != "" {
		fe.uuid("company_id", in.CompanyID)
	}
	if err := fe.err(); err != nil {
		return nil, domain.PageInfo{}, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	page := in.Page.Normalize()
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Scope:     authz.ScopeFor(actor, adminOf),
		CompanyID: in.CompanyID,
		Role:      role,
		Status:    status,
		Search:    in.Search,
		SortBy:    sortBy,
		SortDesc:  in.Page.SortDesc,
		Page:      page,
	})
	if err != nil {
		return nil, domain.PageInfo{}, storeErr(err, "users")
	}
	return users, domain.NewPageInfo(total, page), nil
}

func (s *userService) Update(ctx context.Context, actor domain.Actor, id string, patch UpdateUserPatch) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if patch.Email != nil {
		fe.email("email", *patch.Email)
	}
	var status *domain.UserStatus
	if patch.Status != nil {
		st := domain.UserStatus(*patch.Status)
		if !st.Valid() {
			fe.add("status", "must be one of active, inactive")
		}
		status = &st
	}
	if patch.CompanyID != nil {
		fe.uuid("company_id", *patch.CompanyID)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindUser, userTarget(actor, user))); err != nil {
		return nil, err
	}

	if patch.UserName != nil {
		user.UserName = *patch.UserName
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if status != nil {
		user.Status = *status
	}
	if patch.CompanyID != nil {
		if user.Role != domain.RoleUser {
			return nil, domain.Validation("invalid input", fieldErrors{"company_id": {"only role=user accounts belong to a company"}})
		}
		company, err := s.companyRepo.GetByID(ctx, *patch.CompanyID, authz.Scope{All: true})
		if err != nil {
			if domain.IsNotFound(storeErr(err, "company")) {
				return nil, domain.Invariant(domain.CodeCompanyRequired, "company does not exist")
			}
			return nil, storeErr(err, "company")
		}
		user.CompanyID = &company.ID
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeErr(err, "user")
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "user")
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionDelete, domain.KindUser, userTarget(actor, user))); err != nil {
		return err
	}

	// Invariant: an admin still linked to companies cannot be deleted;
	// the failure names the blocking companies so the caller can reassign.
	if user.Role == domain.RoleAdmin || user.Role == domain.RoleSuperAdmin {
		blocking, err := s.companyRepo.AdminCompanies(ctx, user.ID)
		if err != nil {
			return storeErr(err, "company links")
		}
		if len(blocking) > 0 {
			return domain.Invariant(domain.CodeAdminStillAssigned,
				fmt.Sprintf("user still administers %d company(ies); reassign before deleting", len(blocking)),
				blocking...)
		}
		if user.CompanyID != nil {
			return domain.Invariant(domain.CodeAdminStillAssigned,
				"user is still directly assigned to a company", *user.CompanyID)
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}

func (s *userService) ChangePassword(ctx context.Context, actor domain.Actor, userID, newPassword string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	fe.required("password", newPassword)
	if len(newPassword) > 0 && len(newPassword) < 8 {
		fe.add("password", "must be at least 8 characters")
	}
	if err := fe.err(); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err, "user")
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	// Password change is the self-service whitelist case for role=user.
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindUser, userTarget(actor, user))); err != nil {
		return err
	}

	history, err := s.userRepo.PasswordHistory(ctx, user.ID, s.historySize)
	if err != nil {
		return storeErr(err, "password history")
	}
	for _, rec := range history {
		if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(newPassword)) == nil {
			return domain.Invariant(domain.CodePasswordReuse,
				fmt.Sprintf("password was used within the last %d changes", s.historySize))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		logger.Error("password hashing failed", "error", err)
		return domain.Internal()
	}
	return storeErr(s.userRepo.SetPassword(ctx, &domain.PasswordRecord{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		PasswordHash: string(hash),
	}, s.historySize), "user password")
}
