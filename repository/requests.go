package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
)

type requests interface {
	CreateBorrowRequest(request *data.BorrowRequest) error
	GetBorrowRequest(requestID int64) (*data.BorrowRequest, error)
	UpdateBorrowRequest(request *data.BorrowRequest) error
	ApproveBorrowRequest(request *data.BorrowRequest, record *data.BorrowRecord) error
	GetAllBorrowRequests(libraryID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error)
	GetAllBorrowRequestsForUser(userID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error)
}

// CreateBorrowRequest creates a new pending borrow request record. The partial
// unique index on (user, library, title) for pending requests rejects a
// duplicate pending ask even when two are submitted concurrently.
func (r *repository) CreateBorrowRequest(request *data.BorrowRequest) error {
	query := `
		INSERT INTO borrow_requests (user_id, library_id, title_id, inventory_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, requested_at, version`
	args := []interface{}{
		request.UserID,
		request.LibraryID,
		request.TitleID,
		request.InventoryID,
		request.Status,
		request.Notes,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&request.ID, &request.RequestedAt, &request.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "borrow_requests_pending_uniq"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// GetBorrowRequest retrieves a borrow request record by its ID.
func (r *repository) GetBorrowRequest(requestID int64) (*data.BorrowRequest, error) {
	if requestID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, user_id, library_id, title_id, inventory_id, copy_id, record_id, status, notes, requested_at, decided_at, decided_by, version
		FROM borrow_requests
		WHERE id = $1`
	var request data.BorrowRequest
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(
		&request.ID,
		&request.UserID,
		&request.LibraryID,
		&request.TitleID,
		&request.InventoryID,
		&request.CopyID,
		&request.RecordID,
		&request.Status,
		&request.Notes,
		&request.RequestedAt,
		&request.DecidedAt,
		&request.DecidedBy,
		&request.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &request, nil
}

// UpdateBorrowRequest persists a decision or cancellation on a request. The
// status guard in the WHERE clause means a request that has already left the
// pending state cannot be moved again, even by a concurrent caller that read
// it as pending.
func (r *repository) UpdateBorrowRequest(request *data.BorrowRequest) error {
	query := `
		UPDATE borrow_requests
		SET status = $1, notes = $2, decided_at = $3, decided_by = $4, version = version + 1
		WHERE id = $5 AND version = $6 AND status = $7
		RETURNING version`
	args := []interface{}{
		request.Status,
		request.Notes,
		request.DecidedAt,
		request.DecidedBy,
		request.ID,
		request.Version,
		data.RequestStatusPending,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&request.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// ApproveBorrowRequest runs the approval sequence as one transaction: claim an
// available copy under the request's inventory, flip it to borrowed, open the
// loan record, mark the request approved, and recompute the inventory counts.
// If any step fails nothing is persisted.
//
// The copy claim uses FOR UPDATE SKIP LOCKED, so two concurrent approvals
// against the same inventory either claim distinct copies or, when none are
// left, fail with ErrInsufficientAvailability. The partial unique index on
// active loans per copy backs the claim as a hard invariant.
func (r *repository) ApproveBorrowRequest(request *data.BorrowRequest, record *data.BorrowRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Re-check the request is still pending, locking its row so a concurrent
	// decision on the same request serializes behind this one.
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM borrow_requests WHERE id = $1 FOR UPDATE`, request.ID).Scan(&status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	if status != data.RequestStatusPending {
		return ErrEditConflict
	}

	// Atomically claim one available copy. SKIP LOCKED steps over copies
	// already claimed by concurrent approvals instead of blocking on them.
	query := `
		UPDATE copies
		SET status = $1, version = version + 1
		WHERE id = (
			SELECT id FROM copies
			WHERE inventory_id = $2 AND status = $3
			ORDER BY id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id`
	err = tx.QueryRowContext(ctx, query, data.CopyStatusBorrowed, request.InventoryID, data.CopyStatusAvailable).Scan(&record.CopyID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrInsufficientAvailability
		default:
			return err
		}
	}

	query = `
		INSERT INTO borrow_records (user_id, library_id, title_id, inventory_id, copy_id, borrow_date, due_date, status, approved_by, late_fee, damage_fee, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, version`
	args := []interface{}{
		record.UserID,
		record.LibraryID,
		record.TitleID,
		record.InventoryID,
		record.CopyID,
		record.BorrowDate,
		record.DueDate,
		record.Status,
		record.ApprovedBy,
		record.Fees.LateFee,
		record.Fees.DamageFee,
		record.Fees.Currency,
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "borrow_records_copy_active_uniq"`:
			return ErrEditConflict
		default:
			return err
		}
	}

	query = `
		UPDATE borrow_requests
		SET status = $1, notes = $2, copy_id = $3, record_id = $4, decided_at = $5, decided_by = $6, version = version + 1
		WHERE id = $7 AND status = $8
		RETURNING version`
	args = []interface{}{
		data.RequestStatusApproved,
		request.Notes,
		record.CopyID,
		record.ID,
		record.BorrowDate,
		record.ApprovedBy,
		request.ID,
		data.RequestStatusPending,
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&request.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	_, err = recomputeInventoryCounts(ctx, tx, request.InventoryID)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	request.Status = data.RequestStatusApproved
	request.CopyID = &record.CopyID
	request.RecordID = &record.ID
	decidedAt := record.BorrowDate
	request.DecidedAt = &decidedAt
	request.DecidedBy = &record.ApprovedBy
	return nil
}

// GetAllBorrowRequests retrieves a paginated list of borrow requests,
// optionally scoped to a library and/or status.
func (r *repository) GetAllBorrowRequests(libraryID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, user_id, library_id, title_id, inventory_id, copy_id, record_id, status, notes, requested_at, decided_at, decided_by, version
		FROM borrow_requests
		WHERE (library_id = $1 OR $1 = 0)
		AND (status = $2 OR $2 = '')
		ORDER BY %s %s, id ASC
		LIMIT $3 OFFSET $4`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{libraryID, status, filters.Limit(), filters.Offset()}
	return r.getAllBorrowRequests(query, args, filters)
}

// GetAllBorrowRequestsForUser retrieves a paginated list of one user's borrow
// requests, optionally scoped to a status.
func (r *repository) GetAllBorrowRequestsForUser(userID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, user_id, library_id, title_id, inventory_id, copy_id, record_id, status, notes, requested_at, decided_at, decided_by, version
		FROM borrow_requests
		WHERE user_id = $1
		AND (status = $2 OR $2 = '')
		ORDER BY %s %s, id ASC
		LIMIT $3 OFFSET $4`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{userID, status, filters.Limit(), filters.Offset()}
	return r.getAllBorrowRequests(query, args, filters)
}

func (r *repository) getAllBorrowRequests(query string, args []interface{}, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	requests := []*data.BorrowRequest{}
	for rows.Next() {
		var request data.BorrowRequest
		err := rows.Scan(
			&totalRecords,
			&request.ID,
			&request.UserID,
			&request.LibraryID,
			&request.TitleID,
			&request.InventoryID,
			&request.CopyID,
			&request.RecordID,
			&request.Status,
			&request.Notes,
			&request.RequestedAt,
			&request.DecidedAt,
			&request.DecidedBy,
			&request.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		requests = append(requests, &request)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return requests, metadata, nil
}
