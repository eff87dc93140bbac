package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog"

	"github.com/servify/backend/internal/auth"
	"github.com/servify/backend/internal/core/domain"
	logicv1 "github.com/servify/backend/internal/logic/v1"
	"github.com/servify/backend/middleware"
)

// Handler groups HTTP handlers for the auth API. Dependencies are
// injected via the constructor — no global state.
type Handler struct {
	accounts *logicv1.AccountService
	identity *auth.Service
}

// NewHandler creates a new Handler.
func NewHandler(accounts *logicv1.AccountService, identity *auth.Service) *Handler {
	return &Handler{accounts: accounts, identity: identity}
}

// RegisterRoutes registers the auth API routes on the given router
// group. The callback path shape /api/auth/callback/<provider> is fixed:
// it is what the OAuth providers have registered.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/sign-in/:provider", h.SignIn)
	rg.GET("/callback/:provider", h.Callback)
	rg.GET("/session", h.GetSession)
	rg.POST("/sign-out", h.SignOut)
	rg.GET("/providers", h.ListProviders)
	rg.GET("/accounts", h.ListAccounts)
	rg.POST("/provider", h.BecomeProvider)
	rg.POST("/addresses", h.AddAddress)
	rg.GET("/addresses", h.ListAddresses)
}

type sessionResponse struct {
	Token     string   `json:"token"`
	UserID    string   `json:"userId"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles,omitempty"`
	ExpiresAt string   `json:"expiresAt"`
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		UserID:    s.UserID,
		Email:     s.User.Email,
		Name:      s.User.Name,
		Roles:     s.Roles,
		ExpiresAt: s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, s *auth.Session) {
	c.SetCookie(auth.SessionCookie, s.Token, int(time.Until(s.ExpiresAt).Seconds()), "/", "", true, true)
}

// Register handles POST /register.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	session, err := h.accounts.Register(c.Request.Context(), logicv1.RegisterRequest{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: &ip,
		UserAgent: &ua,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	session, err := h.accounts.Login(c.Request.Context(), logicv1.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: &ip,
		UserAgent: &ua,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, toSessionResponse(session))
}

// SignIn handles GET /sign-in/:provider, returning the provider's
// authorization URL.
func (h *Handler) SignIn(c *gin.Context) {
	provider := auth.ProviderName(c.Param("provider"))
	state := c.Query("state")

	url, err := h.identity.SignInURL(provider, c.GetHeader("Origin"), state)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback handles GET /callback/:provider, completing the OAuth
// exchange and issuing a session.
func (h *Handler) Callback(c *gin.Context) {
	provider := auth.ProviderName(c.Param("provider"))
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	// When the login happens while signed in, the new account links to
	// the current user.
	current, err := middleware.GetSession(c)
	if err != nil && !errors.Is(err, auth.ErrSessionExpired) {
		h.writeError(c, err)
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	session, err := h.identity.HandleCallback(c.Request.Context(), auth.CallbackRequest{
		Provider:  provider,
		Code:      code,
		Origin:    c.GetHeader("Origin"),
		Current:   current,
		IPAddress: &ip,
		UserAgent: &ua,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, toSessionResponse(session))
}

// GetSession handles GET /session.
func (h *Handler) GetSession(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

// SignOut handles POST /sign-out.
func (h *Handler) SignOut(c *gin.Context) {
	token := auth.TokenFromHeaders(c.Request.Header)
	if err := h.identity.SignOut(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", true, true)
	c.Status(http.StatusNoContent)
}

// ListProviders handles GET /providers, returning the providers that
// currently accept login attempts.
func (h *Handler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.identity.Providers().EnabledProviders()})
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	linked, err := h.accounts.ListLinkedAccounts(c.Request.Context(), session.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	type accountResponse struct {
		Provider  string `json:"provider"`
		AccountID string `json:"accountId"`
	}
	out := make([]accountResponse, 0, len(linked))
	for _, l := range linked {
		out = append(out, accountResponse{Provider: l.Provider, AccountID: l.AccountID})
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

// BecomeProvider handles POST /provider.
func (h *Handler) BecomeProvider(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req struct {
		PhoneNumber *string `json:"phoneNumber"`
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		Bio         *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.accounts.BecomeProvider(c.Request.Context(), session.UserID, logicv1.ProviderProfileInput{
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// AddAddress handles POST /addresses.
func (h *Handler) AddAddress(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req struct {
		Title    *string `json:"title"`
		Location struct {
			Name        *string `json:"name"`
			FullAddress *string `json:"fullAddress"`
			House       *string `json:"house"`
			Street      *string `json:"street"`
			District    *string `json:"district"`
			City        *string `json:"city"`
			Region      *string `json:"region"`
			Country     *string `json:"country"`
			Type        string  `json:"type" binding:"required,oneof=point polygon multipolygon"`
			WKT         string  `json:"wkt"`
		} `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := domain.LocationRow{
		Name:        req.Location.Name,
		FullAddress: req.Location.FullAddress,
		House:       req.Location.House,
		Street:      req.Location.Street,
		District:    req.Location.District,
		City:        req.Location.City,
		Region:      req.Location.Region,
		Country:     req.Location.Country,
		Type:        domain.LocationType(req.Location.Type),
	}
	if req.Location.WKT != "" {
		geom, err := parseWKT(req.Location.WKT)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed geometry"})
			return
		}
		location.Geom = geom
	}

	id, err := h.accounts.AddAddress(c.Request.Context(), session.UserID, logicv1.AddressInput{
		Title:    req.Title,
		Location: location,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListAddresses handles GET /addresses.
func (h *Handler) ListAddresses(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	details, err := h.accounts.ListAddresses(c.Request.Context(), session.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	type locationResponse struct {
		Name        *string `json:"name,omitempty"`
		FullAddress *string `json:"fullAddress,omitempty"`
		City        *string `json:"city,omitempty"`
		Country     *string `json:"country,omitempty"`
		Type        string  `json:"type"`
		WKT         string  `json:"wkt,omitempty"`
	}
	type addressResponse struct {
		ID       string            `json:"id"`
		Title    *string           `json:"title,omitempty"`
		Location *locationResponse `json:"location,omitempty"`
	}

	out := make([]addressResponse, 0, len(details))
	for _, d := range details {
		resp := addressResponse{ID: d.Address.ID.String(), Title: d.Address.Title}
		if d.Location != nil {
			loc := locationResponse{
				Name:        d.Location.Name,
				FullAddress: d.Location.FullAddress,
				City:        d.Location.City,
				Country:     d.Location.Country,
				Type:        string(d.Location.Type),
			}
			if d.Location.Geom != nil {
				loc.WKT = wkt.MarshalString(d.Location.Geom)
			}
			resp.Location = &loc
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"addresses": out})
}

// requireSession resolves the request's session and writes 401 when it
// is absent. Callers bail out when ok is false.
func (h *Handler) requireSession(c *gin.Context) (*auth.Session, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}
	return session, true
}

// parseWKT decodes a client-provided WKT geometry.
func parseWKT(s string) (orb.Geometry, error) {
	return wkt.Unmarshal(s)
}

// writeError maps errors to HTTP statuses: sentinel errors first, then
// storage-engine constraint violations (which arrive here unmodified, as
// *pgconn.PgError).
func (h *Handler) writeError(c *gin.Context, err error) {
	logger := zerolog.Ctx(c.Request.Context())

	switch {
	case errors.Is(err, logicv1.ErrInvalidCredentials),
		errors.Is(err, logicv1.ErrUserNotFound),
		errors.Is(err, logicv1.ErrNoCredentialAccount):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, logicv1.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
	case errors.Is(err, auth.ErrProviderDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not available"})
	case errors.Is(err, auth.ErrUntrustedOrigin):
		c.JSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
				return
			case "23503": // foreign_key_violation
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Referenced resource does not exist"})
				return
			case "23514": // check_violation
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Constraint violated"})
				return
			}
		}
		logger.Error().Err(err).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
