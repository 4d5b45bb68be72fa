package service

import (
	"errors"
	"testing"

	"github.com/emzola/athenaeum/data/dto"
)

func TestDeleteTitle(t *testing.T) {
	t.Run("purges borrow history along with the title", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		_, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		err = svc.DeleteTitle(2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		repo.mu.Lock()
		defer repo.mu.Unlock()
		if _, ok := repo.titles[2]; ok {
			t.Errorf("expected title to be deleted")
		}
		if len(repo.inventories) != 0 || len(repo.copies) != 0 {
			t.Errorf("expected inventories and copies to be purged, got %d/%d", len(repo.inventories), len(repo.copies))
		}
		if len(repo.requests) != 0 || len(repo.records) != 0 {
			t.Errorf("expected borrow history to be purged, got %d/%d", len(repo.requests), len(repo.records))
		}
	})

	t.Run("refused while a copy is out on loan", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		openLoan(t, svc, repo)

		err := svc.DeleteTitle(2)
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict, got %v", err)
		}
	})

	t.Run("unknown title", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		err := svc.DeleteTitle(42)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}
