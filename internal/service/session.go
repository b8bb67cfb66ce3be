package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	now         func() time.Time
}

func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, companyRepo repository.CompanyRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		now:         time.Now,
	}
}

// sessionTarget resolves the policy facts for a session operation on
// userID: whether it is the actor's own session and which company owns
// the target user.
func (s *sessionService) sessionTarget(ctx context.Context, actor domain.Actor, userID string) (authz.Target, error) {
	t := authz.Target{Self: actor.ID == userID}
	if t.Self {
		return t, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return t, storeErr(err, "user")
	}
	if user.CompanyID != nil {
		t.CompanyID = *user.CompanyID
	}
	return t, nil
}

func (s *sessionService) Start(ctx context.Context, actor domain.Actor, userID string) (*domain.Session, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	if err := fe.err(); err != nil {
		return nil, err
	}

	target, err := s.sessionTarget(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionCreate, domain.KindSession, target)); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.Start(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, storeErr(err, "session")
	}
	logger.Info("session started", "session_id", session.ID, "user_id", userID)
	return session, nil
}

// Stop closes the open interval. The client reports how much of it was
// active; the remainder, clamped to zero, counts as inactive. Both totals
// accumulate in whole seconds, fractions dropped.
func (s *sessionService) Stop(ctx context.Context, actor domain.Actor, userID, sessionID string, activeTimeMs int64) (*domain.Session, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	fe.required("session_id", sessionID)
	fe.uuid("session_id", sessionID)
	if activeTimeMs < 0 {
		fe.add("active_time_ms", "must not be negative")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	target, err := s.sessionTarget(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionUpdate, domain.KindSession, target)); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "session")
	}
	if session.ID != sessionID {
		return nil, domain.NotFoundErr("session")
	}
	if !session.Active() {
		return nil, domain.Conflict("session is already stopped")
	}

	endTime := s.now().UTC()
	elapsedMs := endTime.Sub(session.StartTime).Milliseconds()
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	// The reported active time is credited as-is; only the inactive
	// remainder clamps at zero when a client over-reports.
	inactiveMs := elapsedMs - activeTimeMs
	if inactiveMs < 0 {
		inactiveMs = 0
	}

	activeDelta := activeTimeMs / 1000
	inactiveDelta := inactiveMs / 1000
	if err := s.sessionRepo.Close(ctx, session.ID, endTime, activeDelta, inactiveDelta); err != nil {
		return nil, storeErr(err, "session")
	}

	session.EndTime = &endTime
	session.TotalActiveSeconds += activeDelta
	session.TotalInactiveSeconds += inactiveDelta
	logger.Info("session stopped", "session_id", session.ID, "user_id", userID,
		"active_seconds", activeDelta, "inactive_seconds", inactiveDelta)
	return session, nil
}

func (s *sessionService) IsActive(ctx context.Context, actor domain.Actor, userID string) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	fe := fieldErrors{}
	fe.required("user_id", userID)
	fe.uuid("user_id", userID)
	if err := fe.err(); err != nil {
		return false, err
	}

	target, err := s.sessionTarget(ctx, actor, userID)
	if err != nil {
		return false, err
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return false, err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionRead, domain.KindSession, target)); err != nil {
		return false, err
	}

	session, err := s.sessionRepo.GetByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "session")
	}
	return session.Active(), nil
}

// Stats is the superAdmin-only aggregate view.
func (s *sessionService) Stats(ctx context.Context, actor domain.Actor) (*domain.SessionStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionRead, domain.KindSessionStats, authz.Target{})); err != nil {
		return nil, err
	}

	active, err := s.sessionRepo.CountActive(ctx)
	if err != nil {
		return nil, storeErr(err, "sessions")
	}
	totalActive, err := s.sessionRepo.SumActiveSeconds(ctx)
	if err != nil {
		return nil, storeErr(err, "sessions")
	}
	return &domain.SessionStats{ActiveUsers: active, TotalActiveSeconds: totalActive}, nil
}

// CloseStale force-stops sessions whose open interval started before the
// cutoff. The client never reported activity for the interval, so the
// whole of it counts as inactive.
func (s *sessionService) CloseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := s.now().UTC()
	stale, err := s.sessionRepo.ListStale(ctx, now.Add(-olderThan))
	if err != nil {
		return 0, storeErr(err, "sessions")
	}

	var closed int64
	for i := range stale {
		session := &stale[i]
		elapsedMs := now.Sub(session.StartTime).Milliseconds()
		if elapsedMs < 0 {
			elapsedMs = 0
		}
		if err := s.sessionRepo.Close(ctx, session.ID, now, 0, elapsedMs/1000); err != nil {
			logger.Error("closing stale session", "session_id", session.ID, "error", err)
			continue
		}
		closed++
	}
	if closed > 0 {
		logger.Info("stale sessions closed", "count", closed)
	}
	return closed, nil
}
