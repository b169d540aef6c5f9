package service

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"buzz-service/internal/model"
	"buzz-service/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTTL = 30 * time.Second

// recordingDeliverer captures pushed events per user.
type recordingDeliverer struct {
	mu     sync.Mutex
	events map[uuid.UUID][]model.Event
}

func newRecordingDeliverer() *recordingDeliverer {
	return &recordingDeliverer{events: make(map[uuid.UUID][]model.Event)}
}

func (d *recordingDeliverer) Push(userID uuid.UUID, event model.Event) {
	d.mu.Lock()
	d.events[userID] = append(d.events[userID], event)
	d.mu.Unlock()
}

func (d *recordingDeliverer) eventsFor(userID uuid.UUID) []model.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Event(nil), d.events[userID]...)
}

func (d *recordingDeliverer) lastOfType(userID uuid.UUID, eventType model.EventType) (model.Event, bool) {
	events := d.eventsFor(userID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i], true
		}
	}
	return model.Event{}, false
}

type fixture struct {
	db       *gorm.DB
	presence *PresenceService
	ignores  *IgnoreService
	radar    *RadarService
	buzz     *BuzzService
	pushed   *recordingDeliverer
}

func setup(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.BuzzSignal{}, &model.Match{}, &model.IgnoreEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	// Single connection keeps concurrent test writers off sqlite's
	// file-level lock.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	log := zap.NewNop()
	pushed := newRecordingDeliverer()

	buzzRepo := repository.NewBuzzRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	ignoreRepo := repository.NewIgnoreRepository(db)

	ignores := NewIgnoreService(ignoreRepo, log)
	presence := NewPresenceService(ignores, testTTL, log)
	radar := NewRadarService(presence, ignores, matchRepo, 50, 100, log)
	buzz := NewBuzzService(presence, ignores, buzzRepo, matchRepo, pushed, log)

	return &fixture{
		db:       db,
		presence: presence,
		ignores:  ignores,
		radar:    radar,
		buzz:     buzz,
		pushed:   pushed,
	}
}

// basePos is a fixed downtown corner all tests position users around.
var basePos = model.Position{Latitude: 52.5200, Longitude: 13.4050}

// offsetMeters shifts a position north by roughly the given meters.
func offsetMeters(p model.Position, meters float64) model.Position {
	return model.Position{
		Latitude:  p.Latitude + meters/111195.0,
		Longitude: p.Longitude,
	}
}

func activate(t *testing.T, f *fixture, userID uuid.UUID, pos model.Position, gender string, age int, filter model.Filter) {
	t.Helper()
	err := f.presence.Activate(ActivateParams{
		UserID:      userID,
		Position:    pos,
		SelfieRef:   "selfies/" + userID.String(),
		DisplayName: "user-" + userID.String()[:8],
		Gender:      gender,
		Age:         age,
		Filter:      filter,
	})
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
}

func openFilter() model.Filter {
	return model.Filter{InterestedIn: []string{model.GenderEveryone}}
}
