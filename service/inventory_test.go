package service

import (
	"errors"
	"testing"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
)

func int32Ptr(i int32) *int32 { return &i }

func TestCreateInventory(t *testing.T) {
	t.Run("creates an empty inventory", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 0)
		repo.titles[4] = &data.Title{ID: 4, Name: "Learning Go", Version: 1}
		svc := newTestService(repo)

		inventory, err := svc.CreateInventory(librarian(repo), dto.CreateInventoryRequestBody{LibraryID: 1, TitleID: 4})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if inventory.TotalCopies != 0 || inventory.AvailableCopies != 0 {
			t.Errorf("expected counts 0/0, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("rejects a duplicate inventory for the same pair", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 0)
		svc := newTestService(repo)

		_, err := svc.CreateInventory(librarian(repo), dto.CreateInventoryRequestBody{LibraryID: 1, TitleID: 2})
		if !errors.Is(err, ErrDuplicateRecord) {
			t.Fatalf("expected ErrDuplicateRecord, got %v", err)
		}
	})

	t.Run("requires staff scope for the library", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 0)
		svc := newTestService(repo)

		_, err := svc.CreateInventory(member(repo), dto.CreateInventoryRequestBody{LibraryID: 1, TitleID: 2})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})
}

func TestUpdateInventory(t *testing.T) {
	t.Run("clamps available copies to the total", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 2)
		svc := newTestService(repo)

		inventory, err := svc.UpdateInventory(3, librarian(repo), dto.UpdateInventoryRequestBody{AvailableCopies: int32Ptr(10)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if inventory.AvailableCopies != inventory.TotalCopies {
			t.Errorf("expected available clamped to %d, got %d", inventory.TotalCopies, inventory.AvailableCopies)
		}
	})

	t.Run("clamps a negative total to zero", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 2)
		svc := newTestService(repo)

		inventory, err := svc.UpdateInventory(3, librarian(repo), dto.UpdateInventoryRequestBody{TotalCopies: int32Ptr(-5)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if inventory.TotalCopies != 0 || inventory.AvailableCopies != 0 {
			t.Errorf("expected counts 0/0, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("requires staff scope for the library", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 2)
		svc := newTestService(repo)

		_, err := svc.UpdateInventory(3, member(repo), dto.UpdateInventoryRequestBody{TotalCopies: int32Ptr(5)})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})
}

func TestReconcileInventory(t *testing.T) {
	t.Run("restores counts from the copies table", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 3)
		svc := newTestService(repo)

		// Drift the counts away from the authoritative copy state.
		_, err := svc.UpdateInventory(3, librarian(repo), dto.UpdateInventoryRequestBody{TotalCopies: int32Ptr(99), AvailableCopies: int32Ptr(1)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		inventory, err := svc.ReconcileInventory(3, librarian(repo))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if inventory.TotalCopies != 3 || inventory.AvailableCopies != 3 {
			t.Errorf("expected counts 3/3, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("unknown inventory", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 0)
		svc := newTestService(repo)

		_, err := svc.ReconcileInventory(99, librarian(repo))
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}
