package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BasePath is the API version prefix served by the fake.
const BasePath = "/v1"

// Options tunes the fake service.
type Options struct {
	// SigningKey signs issued tokens (HS256). Defaults to a fixed test key.
	SigningKey []byte
	// TokenTTL sets the exp claim of issued tokens. A negative value issues
	// already-expired tokens.
	TokenTTL time.Duration
	// OpaqueTokens issues random non-JWT tokens instead.
	OpaqueTokens bool
	// SignupRole is the role code stored for accounts created via signup.
	// Nil stores no role, so login responses omit the field.
	SignupRole any
	// SignupStatus overrides the success status of signup (default 201).
	SignupStatus int
}

// Account is a registered user as seen by the fake.
type Account struct {
	ID       string
	Email    string
	Password string
	// RoleCode is sent verbatim as the login "role" field; nil omits it.
	RoleCode any
	Profile  map[string]any
}

type failure struct {
	status  int
	message string
}

// Server is the fake auth service.
type Server struct {
	opts   Options
	engine *gin.Engine

	mu       sync.Mutex
	accounts map[string]*Account
	tokens   map[string]string
	failures map[string][]failure
	calls    map[string]int
	headers  map[string]http.Header
}

// New builds a fake with no accounts.
func New(opts Options) *Server {
	if len(opts.SigningKey) == 0 {
		opts.SigningKey = []byte("apitest-signing-key")
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.SignupStatus == 0 {
		opts.SignupStatus = http.StatusCreated
	}

	gin.SetMode(gin.TestMode)
	s := &Server{
		opts:     opts,
		engine:   gin.New(),
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		failures: make(map[string][]failure),
		calls:    make(map[string]int),
		headers:  make(map[string]http.Header),
	}
	s.engine.Use(gin.Recovery(), s.track)

	users := s.engine.Group(BasePath + "/users")
	users.POST("/signup", s.signup)
	users.POST("/login", s.login)
	users.POST("/editProfile", s.editProfile)
	return s
}

// Handler exposes the routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves the fake on a loopback listener. The returned URL includes
// [BasePath]; close the server when done.
func (s *Server) Start() (*httptest.Server, string) {
	ts := httptest.NewServer(s.engine)
	return ts, ts.URL + BasePath
}

// AddAccount registers an account directly.
func (s *Server) AddAccount(a Account) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Profile == nil {
		a.Profile = map[string]any{}
	}
	acct := a
	s.accounts[strings.ToLower(a.Email)] = &acct
	return &acct
}

// Account returns a copy of the account registered under email.
func (s *Server) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return Account{}, false
	}
	out := *a
	out.Profile = make(map[string]any, len(a.Profile))
	for k, v := range a.Profile {
		out.Profile[k] = v
	}
	return out, true
}

// FailNext makes the next call to endpoint (e.g. "/users/login") answer with
// status and message instead of being served.
func (s *Server) FailNext(endpoint string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = append(s.failures[endpoint], failure{status: status, message: message})
}

// Calls returns how many requests reached endpoint.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// LastHeaders returns the headers of the latest request to endpoint.
func (s *Server) LastHeaders(endpoint string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[endpoint].Clone()
}

func (s *Server) track(c *gin.Context) {
	endpoint := strings.TrimPrefix(c.FullPath(), BasePath)

	s.mu.Lock()
	s.calls[endpoint]++
	s.headers[endpoint] = c.Request.Header.Clone()
	var injected *failure
	if queue := s.failures[endpoint]; len(queue) > 0 {
		injected = &queue[0]
		s.failures[endpoint] = queue[1:]
	}
	s.mu.Unlock()

	if injected != nil {
		c.AbortWithStatusJSON(injected.status, gin.H{"message": injected.message})
		return
	}
	c.Next()
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	s.mu.Lock()
	key := strings.ToLower(req.Email)
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	s.accounts[key] = &Account{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: req.Password,
		RoleCode: s.opts.SignupRole,
		Profile:  map[string]any{},
	}
	s.mu.Unlock()

	c.JSON(s.opts.SignupStatus, gin.H{"message": "User created"})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acct.Password != req.Password {
		s.mu.Unlock()
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	token, err := s.issueToken(acct.ID)
	if err != nil {
		s.mu.Unlock()
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issue failed"})
		return
	}
	s.tokens[token] = acct.ID

	payload := gin.H{
		"id":          acct.ID,
		"token":       token,
		"socketToken": uuid.NewString(),
	}
	if acct.RoleCode != nil {
		payload["role"] = acct.RoleCode
	}
	for k, v := range acct.Profile {
		payload[k] = v
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, payload)
}

func (s *Server) editProfile(c *gin.Context) {
	token := c.GetHeader("token")
	id := c.GetHeader("id")

	s.mu.Lock()
	owner, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok || owner != id {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	for _, acct := range s.accounts {
		if acct.ID == id {
			for k, v := range fields {
				acct.Profile[k] = v
			}
			break
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, fields)
}

func (s *Server) issueToken(userID string) (string, error) {
	if s.opts.OpaqueTokens {
		return uuid.NewString(), nil
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.SigningKey)
}
