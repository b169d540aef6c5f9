package repository

import (
	"testing"

	"github.com/google/uuid"
)

func TestIgnoreRepositoryAddIsIdempotent(t *testing.T) {
	repo := NewIgnoreRepository(setupDB(t))
	viewer, subject := uuid.New(), uuid.New()

	if err := repo.Add(viewer, subject); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.Add(viewer, subject); err != nil {
		t.Fatalf("repeated add failed: %v", err)
	}

	exists, err := repo.Exists(viewer, subject)
	if err != nil || !exists {
		t.Fatalf("expected ignore to exist, got exists=%v err=%v", exists, err)
	}

	subjects, err := repo.SubjectsOf(viewer)
	if err != nil {
		t.Fatalf("SubjectsOf failed: %v", err)
	}
	if len(subjects) != 1 || !subjects[subject] {
		t.Fatalf("expected exactly one subject, got %v", subjects)
	}
}

func TestIgnoreRepositoryIsDirectional(t *testing.T) {
	repo := NewIgnoreRepository(setupDB(t))
	viewer, subject := uuid.New(), uuid.New()

	if err := repo.Add(viewer, subject); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	exists, _ := repo.Exists(subject, viewer)
	if exists {
		t.Fatal("ignore leaked to the reverse direction")
	}
}
