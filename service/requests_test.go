package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
)

// seedBranch populates a library, a title, an inventory and n available
// copies, plus a member and a librarian scoped to the branch. IDs are fixed so
// tests can refer to them directly.
func seedBranch(repo *fakeRepo, availableCopies int) {
	repo.libraries[1] = &data.Library{ID: 1, Code: "CEN", Name: "Central", Version: 1}
	repo.titles[2] = &data.Title{ID: 2, Name: "The Go Programming Language", Version: 1}
	repo.inventories[3] = &data.Inventory{ID: 3, LibraryID: 1, TitleID: 2, Version: 1}
	for i := 0; i < availableCopies; i++ {
		id := int64(10 + i)
		repo.copies[id] = &data.Copy{
			ID:          id,
			InventoryID: 3,
			LibraryID:   1,
			TitleID:     2,
			Barcode:     data.FormatBarcode("CEN", time.Now().Year(), i+1),
			Status:      data.CopyStatusAvailable,
			Condition:   data.CopyConditionGood,
			Version:     1,
		}
	}
	repo.inventories[3].TotalCopies = int32(availableCopies)
	repo.inventories[3].AvailableCopies = int32(availableCopies)
	repo.users[50] = &data.User{ID: 50, Name: "Alice Example", Email: "alice@example.com", Activated: true, Role: data.RoleMember, Version: 1}
	repo.users[60] = &data.User{ID: 60, Name: "Bob Staff", Email: "bob@example.com", Activated: true, Role: data.RoleLibrarian, LibraryIDs: []int64{1}, Version: 1}
	repo.users[50].Password.Hash = []byte("$2a$12$seededhashseededhashseededha")
	repo.users[60].Password.Hash = []byte("$2a$12$seededhashseededhashseededha")
	repo.nextID = 100
}

func librarian(repo *fakeRepo) *data.User {
	user := *repo.users[60]
	return &user
}

func member(repo *fakeRepo) *data.User {
	user := *repo.users[50]
	return &user
}

func TestCreateBorrowRequest(t *testing.T) {
	t.Run("files a pending request", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if request.Status != data.RequestStatusPending {
			t.Errorf("expected status %s, got %s", data.RequestStatusPending, request.Status)
		}
		if request.InventoryID != 3 {
			t.Errorf("expected inventory ID 3, got %d", request.InventoryID)
		}
	})

	t.Run("refuses a request when no copy is available", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 0)
		svc := newTestService(repo)

		_, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if !errors.Is(err, ErrInsufficientAvailability) {
			t.Fatalf("expected ErrInsufficientAvailability, got %v", err)
		}
	})

	t.Run("rejects a request for an unknown inventory", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		_, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 99})
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("rejects a second pending request for the same title", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		_, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if !errors.Is(err, ErrDuplicateRecord) {
			t.Fatalf("expected ErrDuplicateRecord, got %v", err)
		}
	})
}

func TestDecideBorrowRequest(t *testing.T) {
	t.Run("approval allocates a copy and opens a loan", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		decided, err := svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if decided.Status != data.RequestStatusApproved {
			t.Errorf("expected status %s, got %s", data.RequestStatusApproved, decided.Status)
		}
		if decided.CopyID == nil || decided.RecordID == nil {
			t.Fatal("expected copy and record IDs to be set")
		}

		record, err := repo.GetBorrowRecord(*decided.RecordID)
		if err != nil {
			t.Fatalf("expected a borrow record to exist, got %v", err)
		}
		if record.Status != data.RecordStatusBorrowed {
			t.Errorf("expected record status %s, got %s", data.RecordStatusBorrowed, record.Status)
		}
		wantDue := time.Now().AddDate(0, 0, defaultLoanPeriodDays)
		if diff := record.DueDate.Sub(wantDue); diff < -time.Minute || diff > time.Minute {
			t.Errorf("expected due date near %v, got %v", wantDue, record.DueDate)
		}
		if record.ApprovedBy != 60 {
			t.Errorf("expected approved_by 60, got %d", record.ApprovedBy)
		}

		if got := repo.storedCopy(*decided.CopyID).Status; got != data.CopyStatusBorrowed {
			t.Errorf("expected copy status %s, got %s", data.CopyStatusBorrowed, got)
		}
		inventory := repo.storedInventory(3)
		if inventory.AvailableCopies != 0 || inventory.TotalCopies != 1 {
			t.Errorf("expected counts 0/1, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("approval fails when availability ran out after filing", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// Pull the only copy out of circulation between filing and approval.
		repo.mu.Lock()
		repo.copies[10].Status = data.CopyStatusMaintenance
		repo.recount(3)
		repo.mu.Unlock()

		_, err = svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
		if !errors.Is(err, ErrInsufficientAvailability) {
			t.Fatalf("expected ErrInsufficientAvailability, got %v", err)
		}
		if got := repo.storedRequest(request.ID).Status; got != data.RequestStatusPending {
			t.Errorf("expected request to stay pending, got %s", got)
		}
	})

	t.Run("rejection closes the request without touching copies", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		decided, err := svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusRejected})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if decided.Status != data.RequestStatusRejected {
			t.Errorf("expected status %s, got %s", data.RequestStatusRejected, decided.Status)
		}
		if decided.DecidedBy == nil || *decided.DecidedBy != 60 {
			t.Error("expected decided_by to be the deciding librarian")
		}
		if got := repo.storedCopy(10).Status; got != data.CopyStatusAvailable {
			t.Errorf("expected copy to stay available, got %s", got)
		}
	})

	t.Run("rejects a decision from a librarian of another branch", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		outsider := &data.User{ID: 70, Role: data.RoleLibrarian, LibraryIDs: []int64{99}}
		_, err = svc.DecideBorrowRequest(request.ID, outsider, dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})

	t.Run("rejects a decision on a decided request", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusRejected})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict, got %v", err)
		}
	})

	t.Run("rejects an invalid decision status", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: "maybe"})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("expected ErrFailedValidation, got %v", err)
		}
	})
}

// TestConcurrentApprovals drives N concurrent approvals against an inventory
// holding fewer copies, and checks that exactly as many loans open as there
// are copies, each claiming a distinct copy.
func TestConcurrentApprovals(t *testing.T) {
	const pending = 5
	const available = 3

	repo := newFakeRepo()
	seedBranch(repo, available)
	svc := newTestService(repo)

	requestIDs := make([]int64, 0, pending)
	for i := 0; i < pending; i++ {
		userID := int64(200 + i)
		repo.users[userID] = &data.User{ID: userID, Name: "Member", Email: "m@example.com", Activated: true, Role: data.RoleMember, Version: 1}
		request, err := svc.CreateBorrowRequest(userID, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		requestIDs = append(requestIDs, request.ID)
	}

	errs := make(chan error, pending)
	var wg sync.WaitGroup
	for _, id := range requestIDs {
		wg.Add(1)
		go func(requestID int64) {
			defer wg.Done()
			_, err := svc.DecideBorrowRequest(requestID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var approved, unavailable int
	for err := range errs {
		switch {
		case err == nil:
			approved++
		case errors.Is(err, ErrInsufficientAvailability):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if approved != available {
		t.Errorf("expected %d approvals, got %d", available, approved)
	}
	if unavailable != pending-available {
		t.Errorf("expected %d availability failures, got %d", pending-available, unavailable)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	claimed := map[int64]bool{}
	for _, record := range repo.records {
		if claimed[record.CopyID] {
			t.Errorf("copy %d claimed by more than one loan", record.CopyID)
		}
		claimed[record.CopyID] = true
	}
	if got := repo.inventories[3].AvailableCopies; got != 0 {
		t.Errorf("expected 0 available copies, got %d", got)
	}
}

func TestCancelBorrowRequest(t *testing.T) {
	t.Run("owner cancels a pending request", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		cancelled, err := svc.CancelBorrowRequest(request.ID, member(repo))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cancelled.Status != data.RequestStatusCancelled {
			t.Errorf("expected status %s, got %s", data.RequestStatusCancelled, cancelled.Status)
		}
	})

	t.Run("only the owner may cancel", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.CancelBorrowRequest(request.ID, librarian(repo))
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})

	t.Run("a decided request cannot be cancelled", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.CancelBorrowRequest(request.ID, member(repo))
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict, got %v", err)
		}
	})
}
