package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/handler"
	"github.com/oblozinskyroman/stars/internal/infra/cache"
	"github.com/oblozinskyroman/stars/internal/infra/devauth"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"
	"github.com/oblozinskyroman/stars/internal/service"

	"go.uber.org/zap"
)

type fakeCompanyStore struct {
	approved []domain.CompanyWithRating
	inserted []*domain.Company
}

func (s *fakeCompanyStore) ListApproved(context.Context, domain.CompanyQuery) ([]domain.CompanyWithRating, error) {
	return s.approved, nil
}

func (s *fakeCompanyStore) InsertCompany(_ context.Context, c *domain.Company) (*domain.Company, error) {
	s.inserted = append(s.inserted, c)
	created := *c
	created.ID = "c1"
	return &created, nil
}

func (s *fakeCompanyStore) ListOwnedCompanies(context.Context, string) ([]domain.Company, error) {
	return []domain.Company{}, nil
}

type fakeInquiryStore struct{}

func (fakeInquiryStore) ListOwnedInquiries(context.Context, string) ([]domain.Inquiry, error) {
	return []domain.Inquiry{}, nil
}

type fakeContactStore struct {
	messages []*domain.ContactMessage
}

func (s *fakeContactStore) InsertMessage(_ context.Context, m *domain.ContactMessage) error {
	s.messages = append(s.messages, m)
	return nil
}

type fakeAccountStore struct{}

func (fakeAccountStore) CreateDeletionRequest(context.Context, *domain.DeletionRequest) error {
	return nil
}

type fakeAssistant struct {
	reply string
}

func (f *fakeAssistant) Ask(context.Context, string) (string, error) {
	return f.reply, nil
}

type testStack struct {
	router    http.Handler
	companies *fakeCompanyStore
	contact   *fakeContactStore
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dev := devauth.New("http://localhost", logger)

	probe := service.NewEmailProbe(dev, time.Millisecond, logger)
	broker := service.NewSessionBroker()
	sessionSvc := service.NewSessionService(dev, dev, probe, broker, metrics, logger)

	companies := &fakeCompanyStore{
		approved: []domain.CompanyWithRating{
			{Company: domain.Company{ID: "c1", Name: "Fix It", Status: domain.CompanyStatusApproved}},
		},
	}
	listingCache := cache.New[[]domain.CompanyWithRating](time.Minute)
	listingSvc := service.NewListingService(companies, listingCache, metrics, logger)

	contact := &fakeContactStore{}
	providerSvc := service.NewProviderService(companies, metrics, logger)
	contactSvc := service.NewContactService(contact, metrics, logger)
	accountSvc := service.NewAccountService(dev, companies, fakeInquiryStore{}, fakeAccountStore{}, metrics, logger)
	assistantSvc := service.NewAssistantService(&fakeAssistant{reply: "Dobrý deň!"}, resilience.NewBulkhead(2), metrics, logger)

	router := handler.NewRouter(handler.Deps{
		Session:            sessionSvc,
		Listing:            listingSvc,
		Provider:           providerSvc,
		Contact:            contactSvc,
		Account:            accountSvc,
		Assistant:          assistantSvc,
		Validator:          handler.NewRemoteValidator(dev),
		Metrics:            metrics,
		Logger:             logger,
		AllowedOrigins:     []string{"*"},
		SupabaseConfigured: false,
	})

	return &testStack{router: router, companies: companies, contact: contact}
}

func (s *testStack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	stack := newTestStack(t)

	if rec := stack.do(t, http.MethodGet, "/ping", "", nil); rec.Code != http.StatusOK {
		t.Errorf("ping status = %d, want 200", rec.Code)
	}
	if rec := stack.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	} else if !bytes.Contains(rec.Body.Bytes(), []byte("in-memory")) {
		t.Errorf("healthz body %q does not report the in-memory backend", rec.Body.String())
	}
	if rec := stack.do(t, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/auth/signup", "", domain.SignUpRequest{
		Email:           "jana@example.sk",
		Password:        "Heslo-2026!",
		ConfirmPassword: "Heslo-2026!",
		Name:            "Jana",
		TermsAccepted:   true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	rec = stack.do(t, http.MethodPost, "/v1/auth/signin", "", domain.SignInRequest{
		Email:    "jana@example.sk",
		Password: "Heslo-2026!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var signIn domain.SignInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &signIn); err != nil {
		t.Fatalf("decode signin response: %v", err)
	}
	if signIn.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	rec = stack.do(t, http.MethodGet, "/v1/session", signIn.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d, want 200", rec.Code)
	}
	var state domain.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode session state: %v", err)
	}
	if !state.LoggedIn {
		t.Error("expected a logged-in state for a valid token")
	}
	if state.DisplayName != "Jana" {
		t.Errorf("display name = %q, want Jana", state.DisplayName)
	}

	rec = stack.do(t, http.MethodPost, "/v1/auth/signout", signIn.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("signout status = %d, want 200", rec.Code)
	}

	rec = stack.do(t, http.MethodGet, "/v1/session", signIn.AccessToken, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode session state: %v", err)
	}
	if state.LoggedIn {
		t.Error("expected logged-out after sign-out")
	}
}

func TestRouter_SessionWithoutTokenIsLoggedOut(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/v1/session", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d, want 200 even without a token", rec.Code)
	}
	var state domain.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode session state: %v", err)
	}
	if state.LoggedIn {
		t.Error("expected a logged-out state")
	}
}

func TestRouter_SignInFailureSurfacesProviderMessage(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/auth/signin", "", domain.SignInRequest{
		Email:    "nobody@example.sk",
		Password: "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("signin status = %d, want 401", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Invalid login credentials")) {
		t.Errorf("body %q does not carry the provider message", rec.Body.String())
	}
}

func TestRouter_AccountRequiresAuth(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/v1/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a token", rec.Code)
	}

	rec = stack.do(t, http.MethodGet, "/v1/me", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a bogus token", rec.Code)
	}
}

func TestRouter_CompaniesListing(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/v1/companies?sort=rating&filters=has-reviews", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snapshot domain.ListingSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot.Companies) != 1 || snapshot.Companies[0].Name != "Fix It" {
		t.Errorf("companies = %+v, want the one approved row", snapshot.Companies)
	}
	if snapshot.Query.SortBy != domain.SortRating {
		t.Errorf("query sort = %q, want rating", snapshot.Query.SortBy)
	}
}

// A bot without a session posting a filled honeypot must see plain success.
func TestRouter_ProviderHoneypotOverHTTP(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/providers", "", domain.ProviderForm{
		Name:        "Spam Co",
		Description: "spam",
		Services:    "spam",
		Location:    "spam",
		Email:       "spam@spam.sk",
		Phone:       "000",
		Website:     "http://spam.example",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 for a honeypot drop", rec.Code)
	}
	if len(stack.companies.inserted) != 0 {
		t.Error("expected no insert for a honeypot submission")
	}
}

func TestRouter_ProviderRequiresSession(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/providers", "", domain.ProviderForm{
		Name:        "Fix It",
		Description: "Plumbing",
		Services:    "Vodár",
		Location:    "Bratislava",
		Email:       "a@b.sk",
		Phone:       "+421900000000",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for an honest unauthenticated submission", rec.Code)
	}
	if len(stack.companies.inserted) != 0 {
		t.Error("expected no insert without a session")
	}
}

func TestRouter_ContactValidation(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/contact", "", domain.ContactForm{
		Name: "Jana",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	for _, field := range []string{"email", "subject", "message"} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("expected field %q flagged, got %v", field, resp.Fields)
		}
	}
	if len(stack.contact.messages) != 0 {
		t.Error("expected no write on validation failure")
	}
}

func TestRouter_Assistant(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/v1/assistant", "", domain.AssistantRequest{Prompt: "Ahoj"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var reply domain.AssistantReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Reply != "Dobrý deň!" {
		t.Errorf("reply = %q, want the proxied text", reply.Reply)
	}
}

func TestRouter_DataRoutesUnavailableWithoutBackend(t *testing.T) {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dev := devauth.New("http://localhost", logger)
	probe := service.NewEmailProbe(dev, time.Millisecond, logger)
	sessionSvc := service.NewSessionService(dev, dev, probe, service.NewSessionBroker(), metrics, logger)
	assistantSvc := service.NewAssistantService(&fakeAssistant{reply: "ok"}, resilience.NewBulkhead(1), metrics, logger)

	router := handler.NewRouter(handler.Deps{
		Session:        sessionSvc,
		Assistant:      assistantSvc,
		Validator:      handler.NewRemoteValidator(dev),
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: []string{"*"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/companies", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a data backend", rec.Code)
	}
}
