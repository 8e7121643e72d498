package stubapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventhub/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	return NewServer(NewStore(), "test-secret", zap.NewNop()).NewRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signUpUser registers an account and returns its bearer token.
func signUpUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/signup", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		IDToken string `json:"idToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.IDToken == "" {
		t.Fatalf("signup reply missing token: %s", w.Body.String())
	}
	return resp.IDToken
}

func futureEvent(title string, eventType models.EventType, offset time.Duration) models.CreateEventRequest {
	return models.CreateEventRequest{
		Title:       title,
		Description: "a community gathering",
		Location:    "Town Square",
		EventType:   eventType,
		Thumbnail:   "https://cdn.example.com/thumb.jpg",
		Date:        time.Now().Add(offset).UTC(),
	}
}

func createEvent(t *testing.T, r *gin.Engine, token string, req models.CreateEventRequest) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/events", token, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		InsertedID   string `json:"insertedId"`
		Acknowledged bool   `json:"acknowledged"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if resp.InsertedID == "" || !resp.Acknowledged {
		t.Fatalf("unexpected create response: %s", w.Body.String())
	}
	return resp.InsertedID
}

func TestSignUpDuplicateEmail(t *testing.T) {
	r := newTestRouter()
	signUpUser(t, r, "dup@example.com")

	w := doJSON(t, r, http.MethodPost, "/v1/signup", "", map[string]string{
		"email":    "dup@example.com",
		"password": "hunter22",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	r := newTestRouter()
	signUpUser(t, r, "u@example.com")

	w := doJSON(t, r, http.MethodPost, "/v1/signin", "", map[string]string{
		"email":    "u@example.com",
		"password": "not-the-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefreshToken(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/v1/signup", "", map[string]string{
		"email":    "u@example.com",
		"password": "hunter22",
	})
	var resp struct {
		RefreshToken string `json:"refreshToken"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.RefreshToken == "" {
		t.Fatalf("signup reply missing refresh token: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/token", "", map[string]string{
		"refreshToken": resp.RefreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/token", "", map[string]string{
		"refreshToken": "no-such-token",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown refresh token, got %d", w.Code)
	}
}

func TestProfileUpdate(t *testing.T) {
	r := newTestRouter()
	token := signUpUser(t, r, "u@example.com")

	w := doJSON(t, r, http.MethodPatch, "/v1/me", token, map[string]string{
		"displayName": "Ana",
		"photoURL":    "https://cdn.example.com/ana.jpg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/me", token, nil)
	var user models.User
	json.Unmarshal(w.Body.Bytes(), &user)
	if user.DisplayName != "Ana" {
		t.Errorf("profile update not persisted: %+v", user)
	}

	// A patch that omits the photo leaves it untouched.
	w = doJSON(t, r, http.MethodPatch, "/v1/me", token, map[string]string{
		"displayName": "Ana B.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/me", token, nil)
	user = models.User{}
	json.Unmarshal(w.Body.Bytes(), &user)
	if user.DisplayName != "Ana B." || user.PhotoURL != "https://cdn.example.com/ana.jpg" {
		t.Errorf("partial patch cleared a field: %+v", user)
	}
}

func TestCreateAndSearchEvents(t *testing.T) {
	r := newTestRouter()
	token := signUpUser(t, r, "creator@example.com")

	createEvent(t, r, token, futureEvent("Parade", models.EventCulturalParade, 48*time.Hour))
	createEvent(t, r, token, futureEvent("Concert", models.EventMusicFestival, 24*time.Hour))

	// Unfiltered search: bare array, sorted ascending by date.
	w := doJSON(t, r, http.MethodGet, "/events/search", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search failed: %d", w.Code)
	}
	var events []models.EventRecord
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("search should reply with a bare array: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Concert" || events[1].Title != "Parade" {
		t.Errorf("events not sorted by date: %s, %s", events[0].Title, events[1].Title)
	}

	// Filtered search.
	w = doJSON(t, r, http.MethodGet, "/events/search?type=Music+Festival", "", nil)
	events = nil
	json.Unmarshal(w.Body.Bytes(), &events)
	if len(events) != 1 || events[0].Title != "Concert" {
		t.Errorf("type filter failed: %+v", events)
	}
}

func TestCreateEventRejectsPastDate(t *testing.T) {
	r := newTestRouter()
	token := signUpUser(t, r, "creator@example.com")

	req := futureEvent("Yesterday", models.EventStreetFestival, -24*time.Hour)
	w := doJSON(t, r, http.MethodPost, "/events", token, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for past date, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateEventRequiresAuth(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/events", "", futureEvent("X", models.EventFilmSupport, time.Hour))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestGetEventNotFound(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/events/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["message"] != "event not found" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	r := newTestRouter()
	owner := signUpUser(t, r, "owner@example.com")
	other := signUpUser(t, r, "other@example.com")

	id := createEvent(t, r, owner, futureEvent("Fest", models.EventHeritageFestival, time.Hour))

	w := doJSON(t, r, http.MethodPatch, "/events/"+id, other, map[string]string{"title": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPatch, "/events/"+id, owner, map[string]string{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var e models.EventRecord
	json.Unmarshal(w.Body.Bytes(), &e)
	if e.Title != "Renamed" || e.EventType != models.EventHeritageFestival {
		t.Errorf("partial update went wrong: %+v", e)
	}
}

func TestDeleteEvent(t *testing.T) {
	r := newTestRouter()
	owner := signUpUser(t, r, "owner@example.com")
	id := createEvent(t, r, owner, futureEvent("Gone", models.EventNationalCelebration, time.Hour))

	w := doJSON(t, r, http.MethodDelete, "/events/"+id, owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/events/"+id, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted event still retrievable: %d", w.Code)
	}
}

func TestMyEventsWrappedShape(t *testing.T) {
	r := newTestRouter()
	mine := signUpUser(t, r, "mine@example.com")
	other := signUpUser(t, r, "other@example.com")

	createEvent(t, r, mine, futureEvent("Mine", models.EventCulturalParade, time.Hour))
	createEvent(t, r, other, futureEvent("Theirs", models.EventCulturalParade, time.Hour))

	w := doJSON(t, r, http.MethodGet, "/events/my-events", mine, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Events []models.EventRecord `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("my-events should reply with a wrapped object: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Title != "Mine" {
		t.Errorf("unexpected my-events: %+v", resp.Events)
	}
}

func TestJoinEvent(t *testing.T) {
	r := newTestRouter()
	creator := signUpUser(t, r, "creator@example.com")
	joiner := signUpUser(t, r, "joiner@example.com")

	id := createEvent(t, r, creator, futureEvent("Block Party", models.EventStreetFestival, time.Hour))

	w := doJSON(t, r, http.MethodPost, "/joinedEvents", joiner, models.JoinEventRequest{EventID: id})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Same pair again: conflict.
	w = doJSON(t, r, http.MethodPost, "/joinedEvents", joiner, models.JoinEventRequest{EventID: id})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate join, got %d", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["message"] != "already joined" {
		t.Errorf("unexpected conflict body: %s", w.Body.String())
	}

	// Missing event: not found.
	w = doJSON(t, r, http.MethodPost, "/joinedEvents", joiner, models.JoinEventRequest{EventID: "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown event, got %d", w.Code)
	}

	// The joined list reflects the join; the creator's is empty.
	w = doJSON(t, r, http.MethodGet, "/joinedEvents/my-joined", joiner, nil)
	var joined []models.EventRecord
	json.Unmarshal(w.Body.Bytes(), &joined)
	if len(joined) != 1 || joined[0].ID != id {
		t.Errorf("unexpected joined list: %+v", joined)
	}

	w = doJSON(t, r, http.MethodGet, "/joinedEvents/my-joined", creator, nil)
	joined = nil
	json.Unmarshal(w.Body.Bytes(), &joined)
	if len(joined) != 0 {
		t.Errorf("creator should have no joins: %+v", joined)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, "/events/my-events", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, w.Code)
		}
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	r := newTestRouter()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("correlation id not echoed, got %q", got)
	}
}

func TestSearchRejectsUnknownType(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/events/search?type=%s", "Bake+Sale"), "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}
}
