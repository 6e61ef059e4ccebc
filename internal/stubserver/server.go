package stubserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kioskworks/kioskctl/internal/domain"
)

// Server serves the account protocol backed by the local store.
type Server struct {
	store  *Store
	tokens *TokenManager
	logger *slog.Logger
}

func NewServer(store *Store, tokens *TokenManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, tokens: tokens, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/account", func(r chi.Router) {
		r.Use(authMiddleware(s.tokens))
		r.Use(idempotencyMiddleware(s.store))

		r.Get("/session", s.handleSession)
		r.Post("/session/end", s.handleEndSession)
		r.Get("/users", s.handleListUsers)
		r.Post("/users", s.handleCreateUser)
		r.Delete("/users/{id}", s.handleDeleteUser)
		r.Get("/users/{id}/capabilities", s.handleUserCapabilities)
		r.Post("/users/{id}/capabilities/grant", s.handleGrant)
		r.Post("/users/{id}/capabilities/revoke", s.handleRevoke)
	})

	return otelhttp.NewHandler(r, "stubserver")
}

// requireCapability loads the caller's capability set and checks
// membership. The store is the source of truth on every request; nothing
// is cached server-side.
func (s *Server) requireCapability(w http.ResponseWriter, r *http.Request, required domain.Capability) (uint64, bool) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return 0, false
	}
	caps, err := s.store.Capabilities(accountID)
	if err != nil {
		s.logger.Error("load caller capabilities", "error", err, "account_id", accountID)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "capability lookup failed")
		return 0, false
	}
	if !caps.Has(required) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "missing capability "+string(required))
		return 0, false
	}
	return accountID, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	if _, err := s.store.GetAccount(accountID); err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
		return
	}
	caps, err := s.store.Capabilities(accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "capability lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      accountID,
		"capabilities": caps.Strings(),
	})
}

// handleEndSession acknowledges the logout. Tokens are stateless, so the
// stub has nothing to invalidate.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ended": true})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireCapability(w, r, domain.CapabilityListUsers); !ok {
		return
	}
	accounts, err := s.store.ListAccounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "list accounts failed")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireCapability(w, r, domain.CapabilityCreateUser); !ok {
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
		return
	}
	email := strings.TrimSpace(body.Email)
	if err := domain.ValidateEmail(email); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := s.store.GetAccountByEmail(email); err == nil {
		writeError(w, http.StatusConflict, "CONFLICT", "email already registered")
		return
	} else if !errors.Is(err, ErrAccountNotFound) {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "account lookup failed")
		return
	}
	account, err := s.store.CreateAccount(email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "create account failed")
		return
	}
	s.logger.Info("account created", "account_id", account.ID, "email", account.Email)
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.requireCapability(w, r, domain.CapabilityDeleteUser)
	if !ok {
		return
	}
	targetID, ok := parseTargetID(w, r)
	if !ok {
		return
	}
	if targetID == callerID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "cannot delete your own account")
		return
	}
	if err := s.store.DeleteAccount(targetID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "delete account failed")
		return
	}
	s.logger.Info("account deleted", "account_id", targetID, "by", callerID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserCapabilities(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireCapability(w, r, domain.CapabilityListUsers); !ok {
		return
	}
	targetID, ok := parseTargetID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.GetAccount(targetID); err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
		return
	}
	caps, err := s.store.Capabilities(targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "capability lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, caps.Strings())
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	s.handleCapabilityMutation(w, r, domain.CapabilityGrantCapability, s.store.GrantCapabilities, "granted")
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	s.handleCapabilityMutation(w, r, domain.CapabilityRevokeCapability, s.store.RevokeCapabilities, "revoked")
}

// handleCapabilityMutation enforces the shared policy for grant and
// revoke: the caller holds the gating capability, the target is another
// existing account, and every requested capability lies within the
// caller's own set.
func (s *Server) handleCapabilityMutation(
	w http.ResponseWriter,
	r *http.Request,
	required domain.Capability,
	apply func(uint64, []domain.Capability) error,
	verb string,
) {
	callerID, ok := s.requireCapability(w, r, required)
	if !ok {
		return
	}
	targetID, ok := parseTargetID(w, r)
	if !ok {
		return
	}
	if targetID == callerID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "cannot modify your own capabilities")
		return
	}
	if _, err := s.store.GetAccount(targetID); err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
		return
	}
	var body struct {
		Capabilities []string `json:"capabilities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
		return
	}
	caps := domain.CapabilitiesFromStrings(body.Capabilities).Sorted()
	if len(caps) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "no capabilities given")
		return
	}
	callerCaps, err := s.store.Capabilities(callerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "capability lookup failed")
		return
	}
	for _, c := range caps {
		if !callerCaps.Has(c) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "capability "+string(c)+" is outside your own set")
			return
		}
	}
	if err := apply(targetID, caps); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "capability update failed")
		return
	}
	s.logger.Info("capabilities "+verb, "account_id", targetID, "by", callerID, "count", len(caps))
	writeJSON(w, http.StatusOK, map[string]int{"applied": len(caps)})
}

func parseTargetID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return 0, false
	}
	return id, true
}
