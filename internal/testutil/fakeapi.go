package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/bidhub/console-go/internal/domain/user"
)

// FakeUser is one account known to the fake remote API.
type FakeUser struct {
	ID       int
	Username string
	Email    string
	Password string
	Roles    []user.Role
}

// RecordedRequest captures one request the fake API served, for assertions
// on paths, query parameters and auth attachment.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

// FakeAPI is an in-process stand-in for the remote API: bearer-token
// authenticated, JSON bodies, the user/roles endpoint set. Gate, when set,
// runs before a request is handled so tests can hold responses in flight.
type FakeAPI struct {
	Server *httptest.Server

	// Gate is invoked before handling each request. Tests use it to control
	// response ordering.
	Gate func(r *http.Request)

	mu       sync.Mutex
	users    []FakeUser
	requests []RecordedRequest
}

// NewFakeAPI starts a fake remote API seeded with the given accounts.
func NewFakeAPI(users ...FakeUser) *FakeAPI {
	f := &FakeAPI{users: users}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", f.handleLogin)
	mux.HandleFunc("POST /users/logout", f.handleLogout)
	mux.HandleFunc("GET /users/me", f.handleMe)
	mux.HandleFunc("GET /users/count", f.handleCount)
	mux.HandleFunc("GET /users/", f.handleList)
	mux.HandleFunc("GET /users/{id}", f.handleGet)
	mux.HandleFunc("PATCH /users/{id}", f.handleUpdate)
	mux.HandleFunc("DELETE /users/{id}", f.handleDelete)
	mux.HandleFunc("POST /users/register", f.handleRegister)
	mux.HandleFunc("GET /roles", f.handleRoles)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.Gate != nil {
			f.Gate(r)
		}
		mux.ServeHTTP(w, r)
	}))
	return f
}

// BaseURL returns the API root for engine clients.
func (f *FakeAPI) BaseURL() string { return f.Server.URL + "/" }

// Close shuts the fake API down.
func (f *FakeAPI) Close() { f.Server.Close() }

// Requests returns a copy of every request served so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (f *FakeAPI) LastRequest() (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}, false
	}
	return f.requests[len(f.requests)-1], true
}

func (f *FakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
	})
}

func (f *FakeAPI) findByUsername(name string) (FakeUser, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == name {
			return u, true
		}
	}
	return FakeUser{}, false
}

// authenticate resolves the bearer token to a known account.
func (f *FakeAPI) authenticate(r *http.Request) (FakeUser, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return FakeUser{}, false
	}

	var claims jwtlib.MapClaims
	token, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (interface{}, error) {
		return TestSigningKey, nil
	})
	if err != nil || !token.Valid {
		return FakeUser{}, false
	}

	sub, _ := claims["sub"].(string)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strconv.Itoa(u.ID) == sub {
			return u, true
		}
	}
	return FakeUser{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	account, ok := f.findByUsername(req.Username)
	if !ok || account.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	claims := jwtlib.MapClaims{
		"sub":   strconv.Itoa(account.ID),
		"name":  account.Username,
		"roles": account.Roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(TestSigningKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": "refresh-" + strconv.Itoa(account.ID),
	})
}

func (f *FakeAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (f *FakeAPI) userPayload(account FakeUser) user.User {
	return user.User{
		ID:       strconv.Itoa(account.ID),
		Username: account.Username,
		Email:    account.Email,
		Created:  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Modified: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Roles:    account.Roles,
	}
}

func (f *FakeAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := f.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, f.userPayload(account))
}

func (f *FakeAPI) filtered(search string) []FakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	if search == "" {
		out := make([]FakeUser, len(f.users))
		copy(out, f.users)
		return out
	}
	var out []FakeUser
	needle := strings.ToLower(search)
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Username), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out
}

func (f *FakeAPI) handleCount(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, len(f.filtered(r.URL.Query().Get("search"))))
}

func (f *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 100
	}

	rows := f.filtered(q.Get("search"))
	applySort(rows, q.Get("sort"))

	start := page * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	out := make([]map[string]any, 0, end-start)
	for _, u := range rows[start:end] {
		out = append(out, map[string]any{
			"id":                 u.ID,
			"name":               u.Username,
			"email":              u.Email,
			"bidCount":           "0",
			"subscriptionType":   0,
			"subscriptionTrial":  false,
			"subscriptionStatus": 1,
			"renewalDate":        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// applySort orders rows by the serialized "<column> <ASC|DESC>" parameter.
func applySort(rows []FakeUser, serialized string) {
	fields := strings.Fields(serialized)
	if len(fields) != 2 {
		return
	}
	column, dir := fields[0], fields[1]

	less := func(a, b FakeUser) bool {
		switch column {
		case "email":
			return a.Email < b.Email
		case "id":
			return a.ID < b.ID
		default:
			return a.Username < b.Username
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == "DESC" {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func (f *FakeAPI) lookupByPathID(r *http.Request) (FakeUser, int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return FakeUser{}, 0, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			return u, i, true
		}
	}
	return FakeUser{}, 0, false
}

func (f *FakeAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	account, _, ok := f.lookupByPathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, f.userPayload(account))
}

func (f *FakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	account, idx, ok := f.lookupByPathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	f.mu.Lock()
	f.users[idx].Username = req.Username
	account = f.users[idx]
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, f.userPayload(account))
}

func (f *FakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	account, idx, ok := f.lookupByPathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	f.mu.Lock()
	f.users = append(f.users[:idx], f.users[idx+1:]...)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, f.userPayload(account))
}

func (f *FakeAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if _, exists := f.findByUsername(req.Username); exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username taken"})
		return
	}

	f.mu.Lock()
	next := 1
	for _, u := range f.users {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	created := FakeUser{
		ID:       next,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    []user.Role{{ID: 2, Name: "User"}},
	}
	f.users = append(f.users, created)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, f.userPayload(created))
}

func (f *FakeAPI) handleRoles(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "Admin"},
		{"id": 2, "name": "User"},
	})
}

// Addr returns the host:port the fake API listens on, handy for log output.
func (f *FakeAPI) Addr() string {
	u, err := url.Parse(f.Server.URL)
	if err != nil {
		return f.Server.URL
	}
	return u.Host
}
