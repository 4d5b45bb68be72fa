package service

import (
	"errors"
	"testing"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
)

// openLoan files a request for the seeded branch and approves it, returning
// the opened borrow record.
func openLoan(t *testing.T, svc *service, repo *fakeRepo) *data.BorrowRecord {
	t.Helper()
	request, err := svc.CreateBorrowRequest(50, dto.CreateBorrowRequestRequestBody{LibraryID: 1, TitleID: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	decided, err := svc.DecideBorrowRequest(request.ID, librarian(repo), dto.DecideBorrowRequestRequestBody{Status: data.RequestStatusApproved})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	record, err := repo.GetBorrowRecord(*decided.RecordID)
	if err != nil {
		t.Fatalf("expected a borrow record to exist, got %v", err)
	}
	return record
}

func float64Ptr(f float64) *float64 { return &f }

func TestReturnBorrowRecord(t *testing.T) {
	t.Run("closes the loan and releases the copy", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		returned, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if returned.Status != data.RecordStatusReturned {
			t.Errorf("expected status %s, got %s", data.RecordStatusReturned, returned.Status)
		}
		if returned.ReturnDate == nil {
			t.Error("expected return date to be set")
		}
		if got := repo.storedCopy(record.CopyID).Status; got != data.CopyStatusAvailable {
			t.Errorf("expected copy status %s, got %s", data.CopyStatusAvailable, got)
		}
		inventory := repo.storedInventory(record.InventoryID)
		if inventory.AvailableCopies != 1 || inventory.TotalCopies != 1 {
			t.Errorf("expected counts 1/1, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("merges fee adjustments", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		returned, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{
			LateFee:   float64Ptr(2.50),
			DamageFee: float64Ptr(10),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if returned.Fees.Total() != 12.50 {
			t.Errorf("expected total fees 12.50, got %.2f", returned.Fees.Total())
		}
		if returned.Fees.Currency != data.DefaultCurrency {
			t.Errorf("expected currency %s, got %s", data.DefaultCurrency, returned.Fees.Currency)
		}
	})

	t.Run("a supplied fee replaces the stored value", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		repo.mu.Lock()
		repo.records[record.ID].Fees.LateFee = 5
		repo.mu.Unlock()

		returned, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{LateFee: float64Ptr(10)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if returned.Fees.LateFee != 10 {
			t.Errorf("expected late fee 10, got %.2f", returned.Fees.LateFee)
		}
	})

	t.Run("rejects negative fee adjustments", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		_, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{LateFee: float64Ptr(-1)})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("expected ErrFailedValidation, got %v", err)
		}
	})

	t.Run("a repeat return conflicts and leaves the record untouched", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		first, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict on repeat return, got %v", err)
		}
		stored := repo.storedRecord(record.ID)
		if stored.Status != data.RecordStatusReturned {
			t.Errorf("expected status %s, got %s", data.RecordStatusReturned, stored.Status)
		}
		if stored.Version != first.Version {
			t.Errorf("expected repeat return to leave the record untouched, version %d != %d", stored.Version, first.Version)
		}
	})

	t.Run("a lost loan cannot be returned", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		_, err := svc.MarkBorrowRecordLost(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict, got %v", err)
		}
	})

	t.Run("requires staff scope for the loan's branch", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		outsider := &data.User{ID: 70, Role: data.RoleLibrarian, LibraryIDs: []int64{99}}
		_, err := svc.ReturnBorrowRecord(record.ID, outsider, dto.ReturnBorrowRecordRequestBody{})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})
}

func TestMarkBorrowRecordLost(t *testing.T) {
	t.Run("closes the loan and takes the copy out of circulation", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		lost, err := svc.MarkBorrowRecordLost(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{DamageFee: float64Ptr(25)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lost.Status != data.RecordStatusLost {
			t.Errorf("expected status %s, got %s", data.RecordStatusLost, lost.Status)
		}
		if lost.Fees.DamageFee != 25 {
			t.Errorf("expected damage fee 25, got %.2f", lost.Fees.DamageFee)
		}
		if got := repo.storedCopy(record.CopyID).Status; got != data.CopyStatusLost {
			t.Errorf("expected copy status %s, got %s", data.CopyStatusLost, got)
		}
		inventory := repo.storedInventory(record.InventoryID)
		if inventory.AvailableCopies != 0 || inventory.TotalCopies != 1 {
			t.Errorf("expected counts 0/1, got %d/%d", inventory.AvailableCopies, inventory.TotalCopies)
		}
	})

	t.Run("a closed loan cannot be marked lost", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		_, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = svc.MarkBorrowRecordLost(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("expected ErrEditConflict, got %v", err)
		}
	})
}

func TestGetBorrowRecord(t *testing.T) {
	t.Run("a member may view their own loan", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		got, err := svc.GetBorrowRecord(record.ID, member(repo))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != record.ID {
			t.Errorf("expected record %d, got %d", record.ID, got.ID)
		}
	})

	t.Run("a member may not view another member's loan", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		other := &data.User{ID: 51, Role: data.RoleMember}
		_, err := svc.GetBorrowRecord(record.ID, other)
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})

	t.Run("an open loan past its due date reads as overdue", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		repo.mu.Lock()
		repo.records[record.ID].DueDate = time.Now().AddDate(0, 0, -3)
		repo.mu.Unlock()

		got, err := svc.GetBorrowRecord(record.ID, member(repo))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Status != data.RecordStatusOverdue {
			t.Errorf("expected status %s, got %s", data.RecordStatusOverdue, got.Status)
		}
		if persisted := repo.storedRecord(record.ID); persisted.Status != data.RecordStatusOverdue {
			t.Errorf("expected persisted status %s, got %s", data.RecordStatusOverdue, persisted.Status)
		}
	})

	t.Run("an overdue copy can still be returned", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		repo.mu.Lock()
		repo.records[record.ID].Status = data.RecordStatusOverdue
		repo.mu.Unlock()

		returned, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if returned.Status != data.RecordStatusReturned {
			t.Errorf("expected status %s, got %s", data.RecordStatusReturned, returned.Status)
		}
	})
}

func TestListBorrowRecords(t *testing.T) {
	baseFilters := data.Filters{Page: 1, PageSize: 20, Sort: "id", SortSafeList: []string{"id"}}

	t.Run("sweeps overdue loans before listing", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		repo.mu.Lock()
		repo.records[record.ID].DueDate = time.Now().AddDate(0, 0, -1)
		repo.mu.Unlock()

		records, _, err := svc.ListBorrowRecords(librarian(repo), dto.QsListBorrowRecords{LibraryID: 1, Filters: baseFilters})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Status != data.RecordStatusOverdue {
			t.Errorf("expected status %s, got %s", data.RecordStatusOverdue, records[0].Status)
		}
	})

	t.Run("overdue listing omits closed loans past their due date", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 2)
		svc := newTestService(repo)

		closed := openLoan(t, svc, repo)
		lateLoan := openLoan(t, svc, repo)

		repo.mu.Lock()
		repo.records[closed.ID].DueDate = time.Now().AddDate(0, 0, -3)
		repo.records[lateLoan.ID].DueDate = time.Now().AddDate(0, 0, -1)
		repo.mu.Unlock()

		_, err := svc.ReturnBorrowRecord(closed.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, _, err := svc.ListBorrowRecords(librarian(repo), dto.QsListBorrowRecords{
			LibraryID:   1,
			OverdueOnly: true,
			Filters:     baseFilters,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 overdue record, got %d", len(records))
		}
		if records[0].ID != lateLoan.ID {
			t.Errorf("expected record %d, got %d", lateLoan.ID, records[0].ID)
		}
		if records[0].Status != data.RecordStatusOverdue {
			t.Errorf("expected status %s, got %s", data.RecordStatusOverdue, records[0].Status)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)
		record := openLoan(t, svc, repo)

		_, err := svc.ReturnBorrowRecord(record.ID, librarian(repo), dto.ReturnBorrowRecordRequestBody{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		records, _, err := svc.ListBorrowRecords(librarian(repo), dto.QsListBorrowRecords{
			LibraryID: 1,
			Statuses:  []string{data.RecordStatusBorrowed},
			Filters:   baseFilters,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no borrowed records, got %d", len(records))
		}
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		_, _, err := svc.ListBorrowRecords(librarian(repo), dto.QsListBorrowRecords{
			LibraryID: 1,
			Statuses:  []string{"misplaced"},
			Filters:   baseFilters,
		})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("expected ErrFailedValidation, got %v", err)
		}
	})

	t.Run("requires staff scope for the branch", func(t *testing.T) {
		repo := newFakeRepo()
		seedBranch(repo, 1)
		svc := newTestService(repo)

		_, _, err := svc.ListBorrowRecords(member(repo), dto.QsListBorrowRecords{LibraryID: 1, Filters: baseFilters})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("expected ErrNotPermitted, got %v", err)
		}
	})
}
