package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

var reportSortFields = map[string]string{
	"reportName":  "report_name",
	"dateCreated": "date_created",
	"accessCount": "access_count",
	"status":      "status",
}

type reportService struct {
	reportRepo  repository.ReportRepository
	companyRepo repository.CompanyRepository
}

func NewReportService(reportRepo repository.ReportRepository, companyRepo repository.CompanyRepository) ReportService {
	return &reportService{reportRepo: reportRepo, companyRepo: companyRepo}
}

func validateReportURL(fe fieldErrors, field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		fe.add(field, "is not a valid absolute URL")
	}
}

func (s *reportService) Create(ctx context.Context, actor domain.Actor, in CreateReportInput) (*domain.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	fe.required("report_name", in.ReportName)
	fe.required("report_url", in.ReportURL)
	validateReportURL(fe, "report_url", in.ReportURL)
	fe.required("company_id", in.CompanyID)
	fe.uuid("company_id", in.CompanyID)
	status := domain.ReportStatus(in.Status)
	if in.Status == "" {
		status = domain.ReportStatusActive
	} else if !status.Valid() {
		fe.add("status", "must be one of active, inactive")
	}
	for _, uid := range in.UserIDs {
		fe.uuid("user_ids", uid)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionCreate, domain.KindReport, authz.Target{CompanyID: in.CompanyID})); err != nil {
		return nil, err
	}

	if _, err := s.companyRepo.GetByID(ctx, in.CompanyID, authz.Scope{All: true}); err != nil {
		return nil, storeErr(err, "company")
	}
	if err := s.checkDuplicate(ctx, in.ReportName, in.ReportURL, ""); err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:         uuid.NewString(),
		ReportName: in.ReportName,
		ReportURL:  in.ReportURL,
		CompanyID:  in.CompanyID,
		Status:     status,
	}
	if err := s.reportRepo.Create(ctx, report, in.UserIDs); err != nil {
		return nil, s.mapReportWriteErr(err)
	}
	logger.Info("report created", "report_id", report.ID, "company_id", report.CompanyID, "actor_id", actor.ID)
	return report, nil
}

// checkDuplicate enforces name/url uniqueness at write time so callers get
// a structured DuplicateReport instead of a constraint-violation
// passthrough. The unique indexes remain the concurrent-write backstop.
func (s *reportService) checkDuplicate(ctx context.Context, name, reportURL, excludeID string) error {
	dup, err := s.reportRepo.FindDuplicate(ctx, name, reportURL, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeErr(err, "report")
	}
	return domain.Invariant(domain.CodeDuplicateReport, "a report with this name or URL already exists", dup.ID)
}

func (s *reportService) mapReportWriteErr(err error) error {
	mapped := storeErr(err, "report")
	if domain.KindOf(mapped) == domain.KindConflict {
		// Concurrent duplicate slipped past the pre-check.
		return domain.Invariant(domain.CodeDuplicateReport, "a report with this name or URL already exists")
	}
	return mapped
}

func (s *reportService) GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.Report, error) {
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
	report, err := s.reportRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "report")
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, actor domain.Actor, in ListReportsInput) ([]domain.Report, domain.PageInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, domain.PageInfo{}, err
	}
	sortBy, err := validSort(reportSortFields, in.Page.SortBy)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	var status *domain.ReportStatus
	if in.Status != "" {
		st := domain.ReportStatus(in.Status)
		if !st.Valid() {
			return nil, domain.PageInfo{}, domain.Validation("invalid input", fieldErrors{"status": {"must be one of active, inactive"}})
		}
		status = &st
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	page := in.Page.Normalize()
	reports, total, err := s.reportRepo.List(ctx, repository.ReportFilter{
		Scope:     authz.ScopeFor(actor, adminOf),
		CompanyID: in.CompanyID,
		Status:    status,
		Search:    in.Search,
		SortBy:    sortBy,
		SortDesc:  in.Page.SortDesc,
		Page:      page,
	})
	if err != nil {
		return nil, domain.PageInfo{}, storeErr(err, "reports")
	}
	return reports, domain.NewPageInfo(total, page), nil
}

func (s *reportService) Update(ctx context.Context, actor domain.Actor, id string, patch UpdateReportPatch) (*domain.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if patch.ReportURL != nil {
		validateReportURL(fe, "report_url", *patch.ReportURL)
	}
	var status *domain.ReportStatus
	if patch.Status != nil {
		st := domain.ReportStatus(*patch.Status)
		if !st.Valid() {
			fe.add("status", "must be one of active, inactive")
		}
		status = &st
	}
	if patch.UserIDs != nil {
		for _, uid := range *patch.UserIDs {
			fe.uuid("user_ids", uid)
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	report, err := s.reportRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "report")
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionUpdate, domain.KindReport, authz.Target{CompanyID: report.CompanyID})); err != nil {
		return nil, err
	}

	name := report.ReportName
	if patch.ReportName != nil {
		name = *patch.ReportName
	}
	reportURL := report.ReportURL
	if patch.ReportURL != nil {
		reportURL = *patch.ReportURL
	}
	if name != report.ReportName || reportURL != report.ReportURL {
		if err := s.checkDuplicate(ctx, name, reportURL, report.ID); err != nil {
			return nil, err
		}
	}

	report.ReportName = name
	report.ReportURL = reportURL
	if status != nil {
		report.Status = *status
	}
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, s.mapReportWriteErr(err)
	}

	// A userIds patch replaces the whole grant set: remove-then-add, not
	// merge.
	if patch.UserIDs != nil {
		if err := s.reportRepo.ReplaceGrants(ctx, report.ID, *patch.UserIDs); err != nil {
			return nil, storeErr(err, "report grants")
		}
	}
	return report, nil
}

// SetStatus flips active/inactive without touching name, url or grants.
func (s *reportService) SetStatus(ctx context.Context, actor domain.Actor, id, status string) (*domain.Report, error) {
	return s.Update(ctx, actor, id, UpdateReportPatch{Status: &status})
}

func (s *reportService) Delete(ctx context.Context, actor domain.Actor, id string) error {
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
	report, err := s.reportRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return storeErr(err, "report")
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionDelete, domain.KindReport, authz.Target{CompanyID: report.CompanyID})); err != nil {
		return err
	}
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		return storeErr(err, "report")
	}
	logger.Info("report deleted", "report_id", id, "actor_id", actor.ID)
	return nil
}

// IncrementAccessCount is the monotonic counter path: only role=user views
// count, and the bump happens as one atomic SQL update.
func (s *reportService) IncrementAccessCount(ctx context.Context, actor domain.Actor, id string) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return 0, err
	}
	if !authz.CountsView(actor) {
		return 0, domain.Unauthorized(authz.ReasonInsufficientRole, "only user views increment the access count")
	}

	report, err := s.reportRepo.GetByID(ctx, id, authz.ScopeFor(actor, nil))
	if err != nil {
		return 0, storeErr(err, "report")
	}
	grant, err := s.reportRepo.HasGrant(ctx, report.ID, actor.ID)
	if err != nil {
		return 0, storeErr(err, "report grant")
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionUpdate, domain.KindReport, authz.Target{CompanyID: report.CompanyID, HasGrant: grant})); err != nil {
		return 0, err
	}

	count, err := s.reportRepo.IncrementAccessCount(ctx, report.ID)
	if err != nil {
		return 0, storeErr(err, "report")
	}
	return count, nil
}

func (s *reportService) Grantees(ctx context.Context, actor domain.Actor, id string) ([]string, error) {
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
	if _, err := s.reportRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf)); err != nil {
		return nil, storeErr(err, "report")
	}
	ids, err := s.reportRepo.GranteeIDs(ctx, id)
	if err != nil {
		return nil, storeErr(err, "report grants")
	}
	return ids, nil
}
