// Package main implements a mock plant-tracking backend for local
// development and manual testing of the verdant CLI. It keeps everything in
// memory: bcrypt-hashed users, JWT bearer tokens (opaque to the client),
// plants with simulated asynchronous image analysis, and notifications.
//
// Usage:
//
//	mock-api -port 8080 -latency 50ms -fail-rate 0.1
//
// -fail-rate injects random 503 responses so the client's retry policy can
// be exercised against something real.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret = []byte("mock-api-dev-secret")

// fixedOTP is accepted for every verify-otp call; it is logged at startup
// so manual reset-password runs are painless.
const fixedOTP = "123456"

const pageSize = 10

// --- Domain records (wire shapes the real backend uses) ---

type user struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	DOB          string `json:"dob,omitempty"`
	passwordHash []byte
}

type measurementFields struct {
	Height       float64 `json:"height"`
	LeafCount    int     `json:"leafCount"`
	HealthScore  float64 `json:"healthScore"`
	LastWatered  string  `json:"lastWatered"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	LightLevel   float64 `json:"lightLevel"`
	SoilMoisture float64 `json:"soilMoisture"`
}

type plantRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	PlantCoverURL   string  `json:"plantCoverUrl,omitempty"`
	MediaURL        string  `json:"mediaUrl,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
	PlantStage      *string `json:"plantStage"`
	DetectedSpecies *string `json:"detectedSpecies"`

	owner string
	// analysisPending simulates the asynchronous classifier: the first
	// details fetch after an upload sees no analysis yet.
	analysisPending bool
}

type historyRecord struct {
	ImageID         string   `json:"imageId"`
	PlantID         string   `json:"plantId"`
	MediaURL        string   `json:"mediaUrl"`
	UploaderID      string   `json:"uploaderId"`
	UploaderName    string   `json:"uploaderName"`
	UploadDate      string   `json:"uploadDate"`
	PlantStage      *string  `json:"plantStage"`
	StageConfidence *float64 `json:"stageConfidence"`
	DetectedSpecies *string  `json:"detectedSpecies"`
}

type notificationRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Read      bool   `json:"read"`
	ActionURL string `json:"actionUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
	User      struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FullName  string `json:"fullName"`
		AvatarURL string `json:"avatarUrl,omitempty"`
	} `json:"user"`
	owner string
}

type page struct {
	Content       any `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// --- Server state ---

type server struct {
	mu            sync.Mutex
	users         map[string]*user // keyed by email
	plants        []*plantRecord
	history       []*historyRecord
	notifications []*notificationRecord
	revoked       map[string]bool // revoked token strings

	latency  time.Duration
	failRate float64

	requests *prometheus.CounterVec
}

func newServer(latency time.Duration, failRate float64) *server {
	s := &server{
		users:    make(map[string]*user),
		revoked:  make(map[string]bool),
		latency:  latency,
		failRate: failRate,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mock_api_requests_total",
				Help: "Requests served, by route and status.",
			},
			[]string{"route", "status"},
		),
	}
	prometheus.MustRegister(s.requests)
	s.seed()
	return s
}

// seed creates a development account with a couple of plants.
func (s *server) seed() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("verdant"), bcrypt.DefaultCost)
	dev := &user{
		ID:           uuid.NewString(),
		Email:        "dev@verdant.local",
		FirstName:    "Dev",
		LastName:     "Gardener",
		passwordHash: hash,
	}
	s.users[dev.Email] = dev

	stage := "vegetative"
	species := "Monstera deliciosa"
	now := time.Now().UTC().Format(time.RFC3339)
	s.plants = append(s.plants, &plantRecord{
		ID:              uuid.NewString(),
		Name:            "Window Monstera",
		CreatedAt:       now,
		UpdatedAt:       now,
		PlantStage:      &stage,
		DetectedSpecies: &species,
		owner:           dev.Email,
	})
	log.Printf("seeded user %s (password %q), OTP is always %q", dev.Email, "verdant", fixedOTP)
}

// --- Token handling (jwt tokens, opaque to the client) ---

func (s *server) issueToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func (s *server) authenticate(r *http.Request) (*user, string, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, "", fmt.Errorf("missing bearer token")
	}

	s.mu.Lock()
	revoked := s.revoked[raw]
	s.mu.Unlock()
	if revoked {
		return nil, "", fmt.Errorf("token revoked")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, "", fmt.Errorf("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, "", fmt.Errorf("invalid claims")
	}

	s.mu.Lock()
	u := s.users[sub]
	s.mu.Unlock()
	if u == nil {
		return nil, "", fmt.Errorf("unknown user")
	}
	return u, raw, nil
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"code": 200, "result": result})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "message": msg})
}

func paginate[T any](items []T, pageNum int) page {
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := pageNum * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return page{
		Content:       items[start:end],
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          pageSize,
		Number:        pageNum,
	}
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// --- Middleware ---

func (s *server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		if s.failRate > 0 && rand.Float64() < s.failRate {
			s.requests.WithLabelValues(route, "503").Inc()
			writeError(w, http.StatusServiceUnavailable, "injected failure")
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) authed(route string, next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return s.instrument(route, func(w http.ResponseWriter, r *http.Request) {
		u, _, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next(w, r, u)
	})
}

// --- Auth handlers ---

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	u := s.users[req.Email]
	s.mu.Unlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.issueToken(u.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeEnvelope(w, map[string]any{"token": token, "authenticated": true})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request, _ *user) {
	_, raw, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	s.mu.Lock()
	s.revoked[raw] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"code": 200})
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[req.Email] != nil {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hashing failed")
		return
	}
	u := &user{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		passwordHash: hash,
	}
	s.users[req.Email] = u

	token, err := s.issueToken(u.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (s *server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	known := s.users[req.Email] != nil
	s.mu.Unlock()
	if !known {
		writeError(w, http.StatusNotFound, "no account for that email")
		return
	}

	log.Printf("OTP for %s: %s", req.Email, fixedOTP)
	writeEnvelope(w, map[string]any{"authenticated": true})
}

func (s *server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	writeEnvelope(w, map[string]any{"authenticated": req.OTP == fixedOTP})
}

func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	s.mu.Lock()
	u := s.users[req.Email]
	if u != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err == nil {
			u.passwordHash = hash
		}
	}
	s.mu.Unlock()
	if u == nil {
		writeError(w, http.StatusNotFound, "no account for that email")
		return
	}

	token, err := s.issueToken(u.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeEnvelope(w, map[string]any{"token": token, "authenticated": true})
}

// --- User handlers ---

func (s *server) handleMyInfo(w http.ResponseWriter, _ *http.Request, u *user) {
	writeEnvelope(w, u)
}

func (s *server) handleUpdateUser(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}
	firstName := r.FormValue("firstName")
	lastName := r.FormValue("lastName")
	if firstName == "" || lastName == "" {
		writeError(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}

	s.mu.Lock()
	u.FirstName = firstName
	u.LastName = lastName
	if file, header, err := r.FormFile("avatar"); err == nil {
		_, _ = io.Copy(io.Discard, file)
		file.Close()
		u.AvatarURL = "/media/avatars/" + u.ID + "/" + header.Filename
	}
	s.mu.Unlock()

	writeEnvelope(w, u)
}

func (s *server) handleMe(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"fullName":  u.FirstName + " " + u.LastName,
		"avatarUrl": u.AvatarURL,
	})
}

// --- Plant handlers ---

func (s *server) handleMyUploads(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	var mine []*plantRecord
	for _, p := range s.plants {
		if p.owner == u.Email {
			mine = append(mine, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(mine, pageParam(r)))
}

func (s *server) handleCreatePlant(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}
	name := r.FormValue("name")
	file, header, err := r.FormFile("image")
	if name == "" || err != nil {
		writeError(w, http.StatusBadRequest, "name and image are required")
		return
	}
	_, _ = io.Copy(io.Discard, file)
	file.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	p := &plantRecord{
		ID:              uuid.NewString(),
		Name:            name,
		MediaURL:        "/media/plants/" + header.Filename,
		CreatedAt:       now,
		UpdatedAt:       now,
		owner:           u.Email,
		analysisPending: true,
	}

	s.mu.Lock()
	s.plants = append(s.plants, p)
	s.appendHistoryLocked(p, u, header.Filename)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request, u *user) {
	id := r.URL.Query().Get("plantId")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plants {
		if p.ID != id || p.owner != u.Email {
			continue
		}
		if p.analysisPending {
			// Analysis has not finished: the contract is an empty
			// body, and the next fetch sees the result.
			s.finishAnalysisLocked(p, u)
			w.WriteHeader(http.StatusOK)
			return
		}
		resp := map[string]any{
			"id":              p.ID,
			"name":            p.Name,
			"plantCoverUrl":   p.PlantCoverURL,
			"mediaUrl":        p.MediaURL,
			"createdAt":       p.CreatedAt,
			"updatedAt":       p.UpdatedAt,
			"plantStage":      p.PlantStage,
			"detectedSpecies": p.DetectedSpecies,
		}
		if p.PlantStage != nil {
			m := measurementFields{
				Height:       24.5,
				LeafCount:    7,
				HealthScore:  0.87,
				LastWatered:  time.Now().Add(-36 * time.Hour).UTC().Format(time.RFC3339),
				Temperature:  22.5,
				Humidity:     48,
				LightLevel:   0.6,
				SoilMoisture: 0.35,
			}
			data, _ := json.Marshal(m)
			var flat map[string]any
			_ = json.Unmarshal(data, &flat)
			for k, v := range flat {
				resp[k] = v
			}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeError(w, http.StatusNotFound, "plant not found")
}

// finishAnalysisLocked completes the simulated classification and emits a
// stage-change notification. Caller holds s.mu.
func (s *server) finishAnalysisLocked(p *plantRecord, u *user) {
	stages := []string{"seedling", "vegetative", "flowering"}
	species := []string{"Monstera deliciosa", "Ficus lyrata", "Epipremnum aureum"}
	st := stages[rand.Intn(len(stages))]
	sp := species[rand.Intn(len(species))]
	conf := 0.6 + rand.Float64()*0.4

	p.PlantStage = &st
	p.DetectedSpecies = &sp
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	p.analysisPending = false

	for _, h := range s.history {
		if h.PlantID == p.ID && h.PlantStage == nil {
			h.PlantStage = &st
			h.StageConfidence = &conf
			h.DetectedSpecies = &sp
		}
	}

	n := &notificationRecord{
		ID:        uuid.NewString(),
		Title:     "Analysis complete",
		Content:   fmt.Sprintf("%s was classified as %s (%s)", p.Name, sp, st),
		Type:      "plant-stage-change",
		ActionURL: "/plants/" + p.ID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		owner:     u.Email,
	}
	n.User.ID = u.ID
	n.User.Email = u.Email
	n.User.FullName = u.FirstName + " " + u.LastName
	s.notifications = append(s.notifications, n)
}

func (s *server) appendHistoryLocked(p *plantRecord, u *user, filename string) {
	s.history = append(s.history, &historyRecord{
		ImageID:      uuid.NewString(),
		PlantID:      p.ID,
		MediaURL:     "/media/plants/" + filename,
		UploaderID:   u.ID,
		UploaderName: u.FirstName + " " + u.LastName,
		UploadDate:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request, u *user) {
	id := r.URL.Query().Get("plantId")

	s.mu.Lock()
	var entries []*historyRecord
	for i := len(s.history) - 1; i >= 0; i-- { // reverse-chronological
		if s.history[i].PlantID == id {
			entries = append(entries, s.history[i])
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(entries, pageParam(r)))
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}
	id := r.FormValue("plantId")
	file, header, err := r.FormFile("image")
	if id == "" || err != nil {
		writeError(w, http.StatusBadRequest, "plantId and image are required")
		return
	}
	_, _ = io.Copy(io.Discard, file)
	file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plants {
		if p.ID == id && p.owner == u.Email {
			p.MediaURL = "/media/plants/" + header.Filename
			p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			p.analysisPending = true
			s.appendHistoryLocked(p, u, header.Filename)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeError(w, http.StatusNotFound, "plant not found")
}

// --- Notification handlers ---

func (s *server) mine(u *user) []*notificationRecord {
	var out []*notificationRecord
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].owner == u.Email {
			out = append(out, s.notifications[i])
		}
	}
	return out
}

func (s *server) handleUnreadCount(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	count := 0
	for _, n := range s.mine(u) {
		if !n.Read {
			count++
		}
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "%d", count)
}

func (s *server) handleByType(w http.ResponseWriter, r *http.Request, u *user) {
	typ := r.URL.Query().Get("type")
	s.mu.Lock()
	var matched []*notificationRecord
	for _, n := range s.mine(u) {
		if n.Type == typ {
			matched = append(matched, n)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(matched, pageParam(r)))
}

func (s *server) handleUnread(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	unread := []*notificationRecord{}
	for _, n := range s.mine(u) {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, unread)
}

func (s *server) handleMarkAllRead(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	for _, n := range s.notifications {
		if n.owner == u.Email {
			n.Read = true
		}
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// --- Wiring ---

func (s *server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/login", s.instrument("login", s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.authed("logout", s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", s.instrument("register", s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/auth/verifyEmail", s.instrument("verify_email", s.handleVerifyEmail)).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-otp", s.instrument("verify_otp", s.handleVerifyOTP)).Methods(http.MethodPost)
	r.HandleFunc("/auth/changePassword", s.instrument("change_password", s.handleChangePassword)).Methods(http.MethodPost)

	r.HandleFunc("/user/myInfo", s.authed("my_info", s.handleMyInfo)).Methods(http.MethodGet)
	r.HandleFunc("/user/update-user", s.authed("update_user", s.handleUpdateUser)).Methods(http.MethodPatch)
	r.HandleFunc("/users/me", s.authed("me", s.handleMe)).Methods(http.MethodGet)

	r.HandleFunc("/plants/my-uploads", s.authed("my_uploads", s.handleMyUploads)).Methods(http.MethodGet)
	r.HandleFunc("/plants/create", s.authed("create_plant", s.handleCreatePlant)).Methods(http.MethodPost)
	r.HandleFunc("/plants/latest", s.authed("latest", s.handleLatest)).Methods(http.MethodGet)
	r.HandleFunc("/plants/history", s.authed("history", s.handleHistory)).Methods(http.MethodGet)
	r.HandleFunc("/plants/upload", s.authed("upload", s.handleUpload)).Methods(http.MethodPost)

	r.HandleFunc("/notifications/count/unread", s.authed("unread_count", s.handleUnreadCount)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/by-type", s.authed("by_type", s.handleByType)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread", s.authed("unread", s.handleUnread)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/mark-all-read", s.authed("mark_all_read", s.handleMarkAllRead)).Methods(http.MethodPatch)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func main() {
	port := flag.Int("port", 8080, "listen port")
	latency := flag.Duration("latency", 0, "artificial latency per request")
	failRate := flag.Float64("fail-rate", 0, "probability of an injected 503 per request")
	flag.Parse()

	s := newServer(*latency, *failRate)
	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock-api listening on %s", addr)
	if err := http.ListenAndServe(addr, s.router()); err != nil {
		log.Fatal(err)
	}
}
