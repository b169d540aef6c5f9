package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"buzz-service/internal/config"
	"buzz-service/internal/database"
	"buzz-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			BasePath: "/api/buzz",
			Env:      "production",
			CORS:     "*",
		},
		Auth: config.AuthConfig{
			SecretKey: testSecret,
		},
		Presence: config.PresenceConfig{
			TTL: 30 * time.Second,
		},
		Radar: config.RadarConfig{
			DefaultRadiusMeters: 50,
			MaxRadiusMeters:     100,
		},
	}

	server := httptest.NewServer(Setup(cfg, db, nil, zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func activateBody(pos model.Position, gender string, age int) map[string]any {
	return map[string]any{
		"latitude":    pos.Latitude,
		"longitude":   pos.Longitude,
		"selfieRef":   "selfies/test",
		"displayName": "tester",
		"gender":      gender,
		"age":         age,
		"filter":      map[string]any{"interestedIn": []string{"EVERYONE"}},
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	resp, err := server.Client().Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	server := testServer(t)

	var errResp map[string]any
	status := doJSON(t, server, http.MethodGet, "/api/buzz/matches", "", nil, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", status)
	}

	status = doJSON(t, server, http.MethodGet, "/api/buzz/matches", "not-a-jwt", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", status)
	}
}

func TestActivateRejectsBadCoordinates(t *testing.T) {
	server := testServer(t)
	token := tokenFor(t, uuid.New())

	body := activateBody(model.Position{Latitude: 123.0, Longitude: 0}, "MALE", 30)
	var errResp map[string]any
	status := doJSON(t, server, http.MethodPost, "/api/buzz/presence/activate", token, body, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

// TestBuzzToMatchFlow exercises the whole happy path over HTTP: two users
// activate in the same room, discover each other on the radar, exchange
// buzzes, and end up with the same match and room on both sides.
func TestBuzzToMatchFlow(t *testing.T) {
	server := testServer(t)

	alice, bob := uuid.New(), uuid.New()
	aliceToken, bobToken := tokenFor(t, alice), tokenFor(t, bob)

	base := model.Position{Latitude: 52.5200, Longitude: 13.4050}
	nearby := model.Position{Latitude: base.Latitude + 5.0/111195.0, Longitude: base.Longitude}
	radarPath := fmt.Sprintf("/api/buzz/radar?lat=%f&lng=%f", base.Latitude, base.Longitude)

	if status := doJSON(t, server, http.MethodPost, "/api/buzz/presence/activate",
		aliceToken, activateBody(base, "FEMALE", 28), nil); status != http.StatusOK {
		t.Fatalf("alice activate: expected 200, got %d", status)
	}
	if status := doJSON(t, server, http.MethodPost, "/api/buzz/presence/activate",
		bobToken, activateBody(nearby, "MALE", 31), nil); status != http.StatusOK {
		t.Fatalf("bob activate: expected 200, got %d", status)
	}

	// Alice sees Bob a few meters away.
	var candidates []struct {
		ID             uuid.UUID `json:"id"`
		DistanceMeters int       `json:"distanceMeters"`
	}
	if status := doJSON(t, server, http.MethodGet, radarPath,
		aliceToken, nil, &candidates); status != http.StatusOK {
		t.Fatalf("radar: expected 200, got %d", status)
	}
	if len(candidates) != 1 || candidates[0].ID != bob {
		t.Fatalf("expected bob on the radar, got %+v", candidates)
	}
	if candidates[0].DistanceMeters < 3 || candidates[0].DistanceMeters > 8 {
		t.Errorf("unexpected distance %dm", candidates[0].DistanceMeters)
	}

	// First buzz only records interest.
	var first struct {
		Result string  `json:"result"`
		RoomID *string `json:"roomId"`
	}
	if status := doJSON(t, server, http.MethodPost, "/api/buzz/buzz",
		aliceToken, map[string]any{"toId": bob.String()}, &first); status != http.StatusOK {
		t.Fatalf("alice buzz: expected 200, got %d", status)
	}
	if first.Result != "created" || first.RoomID != nil {
		t.Fatalf("expected created with no room, got %+v", first)
	}

	// Bob can discover the pending buzz after a reconnect.
	var pending []struct {
		FromID uuid.UUID `json:"fromId"`
	}
	if status := doJSON(t, server, http.MethodGet, "/api/buzz/buzz/pending",
		bobToken, nil, &pending); status != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d", status)
	}
	if len(pending) != 1 || pending[0].FromID != alice {
		t.Fatalf("expected alice's buzz pending, got %+v", pending)
	}

	// The reciprocal buzz completes the match.
	var second struct {
		Result  string  `json:"result"`
		MatchID *string `json:"matchId"`
		RoomID  *string `json:"roomId"`
	}
	if status := doJSON(t, server, http.MethodPost, "/api/buzz/buzz",
		bobToken, map[string]any{"toId": alice.String()}, &second); status != http.StatusOK {
		t.Fatalf("bob buzz: expected 200, got %d", status)
	}
	if second.Result != "matched" || second.MatchID == nil || second.RoomID == nil {
		t.Fatalf("expected matched with ids, got %+v", second)
	}

	// Both sides list the same match with the same room.
	type matchView struct {
		MatchID string `json:"matchId"`
		PeerID  string `json:"peerId"`
		RoomID  string `json:"roomId"`
	}
	var aliceMatches, bobMatches []matchView
	if status := doJSON(t, server, http.MethodGet, "/api/buzz/matches",
		aliceToken, nil, &aliceMatches); status != http.StatusOK {
		t.Fatalf("alice matches: expected 200, got %d", status)
	}
	if status := doJSON(t, server, http.MethodGet, "/api/buzz/matches",
		bobToken, nil, &bobMatches); status != http.StatusOK {
		t.Fatalf("bob matches: expected 200, got %d", status)
	}
	if len(aliceMatches) != 1 || len(bobMatches) != 1 {
		t.Fatalf("expected one match each, got %d and %d", len(aliceMatches), len(bobMatches))
	}
	if aliceMatches[0].RoomID != *second.RoomID || bobMatches[0].RoomID != *second.RoomID {
		t.Error("room IDs diverge across views")
	}
	if aliceMatches[0].PeerID != bob.String() || bobMatches[0].PeerID != alice.String() {
		t.Error("peer IDs are wrong")
	}

	// Matched users drop off each other's radar.
	candidates = nil
	if status := doJSON(t, server, http.MethodGet, radarPath,
		aliceToken, nil, &candidates); status != http.StatusOK {
		t.Fatalf("radar after match: expected 200, got %d", status)
	}
	if len(candidates) != 0 {
		t.Errorf("matched peer still on the radar: %+v", candidates)
	}
}

func TestPermanentIgnoreOverHTTP(t *testing.T) {
	server := testServer(t)

	viewer, subject := uuid.New(), uuid.New()
	viewerToken, subjectToken := tokenFor(t, viewer), tokenFor(t, subject)

	base := model.Position{Latitude: 52.5200, Longitude: 13.4050}
	radarPath := fmt.Sprintf("/api/buzz/radar?lat=%f&lng=%f", base.Latitude, base.Longitude)
	if status := doJSON(t, server, http.MethodPost, "/api/buzz/presence/activate",
		viewerToken, activateBody(base, "FEMALE", 28), nil); status != http.StatusOK {
		t.Fatalf("viewer activate: expected 200, got %d", status)
	}
	if status := doJSON(t, server, http.MethodPost, "/api/buzz/presence/activate",
		subjectToken, activateBody(base, "MALE", 31), nil); status != http.StatusOK {
		t.Fatalf("subject activate: expected 200, got %d", status)
	}

	if status := doJSON(t, server, http.MethodPost, "/api/buzz/ignore",
		viewerToken, map[string]any{"subjectId": subject.String(), "scope": "permanent"}, nil); status != http.StatusOK {
		t.Fatalf("ignore: expected 200, got %d", status)
	}

	var candidates []struct {
		ID uuid.UUID `json:"id"`
	}
	if status := doJSON(t, server, http.MethodGet, radarPath,
		viewerToken, nil, &candidates); status != http.StatusOK {
		t.Fatalf("radar: expected 200, got %d", status)
	}
	if len(candidates) != 0 {
		t.Errorf("ignored subject still on the radar: %+v", candidates)
	}

	// The ignored side buzzing in gets the same answer as buzzing someone absent.
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	status := doJSON(t, server, http.MethodPost, "/api/buzz/buzz",
		subjectToken, map[string]any{"toId": viewer.String()}, &errResp)
	if status != http.StatusNotFound || errResp.Error.Code != "PEER_UNAVAILABLE" {
		t.Fatalf("expected 404 PEER_UNAVAILABLE, got %d %+v", status, errResp)
	}
}
