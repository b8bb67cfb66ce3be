package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tenantadmin-backend/internal/security"
	"tenantadmin-backend/internal/service"
)

// Server wires the HTTP surface over the service layer.
type Server struct {
	router *mux.Router
	tokens security.TokenManager

	auth         service.AuthService
	companies    service.CompanyService
	users        service.UserService
	reports      service.ReportService
	billing      service.BillingService
	subscription service.SubscriptionService
	sessions     service.SessionService

	webhook http.Handler
}

// NewServer creates the API server. webhook is the payment-provider
// endpoint; it authenticates by signature, not by bearer token.
func NewServer(
	tokens security.TokenManager,
	auth service.AuthService,
	companies service.CompanyService,
	users service.UserService,
	reports service.ReportService,
	billing service.BillingService,
	subscription service.SubscriptionService,
	sessions service.SessionService,
	webhook http.Handler,
) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		tokens:       tokens,
		auth:         auth,
		companies:    companies,
		users:        users,
		reports:      reports,
		billing:      billing,
		subscription: subscription,
		sessions:     sessions,
		webhook:      webhook,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(recoveryMiddleware, loggingMiddleware)

	// Unauthenticated endpoints
	s.router.HandleFunc("/api/v1/auth/login", s.login).Methods("POST")
	if s.webhook != nil {
		s.router.Handle("/webhooks/stripe", s.webhook).Methods("POST")
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(s.tokens))

	// Company routes
	api.HandleFunc("/companies", s.createCompany).Methods("POST")
	api.HandleFunc("/companies", s.listCompanies).Methods("GET")
	api.HandleFunc("/companies/{id}", s.getCompany).Methods("GET")
	api.HandleFunc("/companies/{id}", s.updateCompany).Methods("PATCH")
	api.HandleFunc("/companies/{id}", s.deleteCompany).Methods("DELETE")
	api.HandleFunc("/companies/{id}/admins", s.assignCompanyAdmin).Methods("POST")
	api.HandleFunc("/companies/{id}/admins", s.listCompanyAdmins).Methods("GET")
	api.HandleFunc("/companies/{id}/admins/{user_id}", s.unassignCompanyAdmin).Methods("DELETE")

	// Subscription routes, nested under the owning company
	api.HandleFunc("/companies/{id}/subscription", s.getCurrentSubscription).Methods("GET")
	api.HandleFunc("/companies/{id}/subscriptions", s.listSubscriptions).Methods("GET")

	// User routes
	api.HandleFunc("/users", s.createUser).Methods("POST")
	api.HandleFunc("/users", s.listUsers).Methods("GET")
	api.HandleFunc("/users/{id}", s.getUser).Methods("GET")
	api.HandleFunc("/users/{id}", s.updateUser).Methods("PATCH")
	api.HandleFunc("/users/{id}", s.deleteUser).Methods("DELETE")
	api.HandleFunc("/users/{id}/password", s.changePassword).Methods("PUT")

	// Report routes
	api.HandleFunc("/reports", s.createReport).Methods("POST")
	api.HandleFunc("/reports", s.listReports).Methods("GET")
	api.HandleFunc("/reports/{id}", s.getReport).Methods("GET")
	api.HandleFunc("/reports/{id}", s.updateReport).Methods("PATCH")
	api.HandleFunc("/reports/{id}", s.deleteReport).Methods("DELETE")
	api.HandleFunc("/reports/{id}/status", s.setReportStatus).Methods("PUT")
	api.HandleFunc("/reports/{id}/access", s.recordReportAccess).Methods("POST")
	api.HandleFunc("/reports/{id}/grantees", s.listReportGrantees).Methods("GET")

	// Billing routes
	api.HandleFunc("/billing", s.listBilling).Methods("GET")
	api.HandleFunc("/billing/{id}", s.getBilling).Methods("GET")

	// Session routes
	api.HandleFunc("/sessions/start", s.startSession).Methods("POST")
	api.HandleFunc("/sessions/stop", s.stopSession).Methods("POST")
	api.HandleFunc("/sessions/active/{user_id}", s.isSessionActive).Methods("GET")
	api.HandleFunc("/sessions/stats", s.sessionStats).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
