package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/lib/pq"
)

type records interface {
	GetBorrowRecord(recordID int64) (*data.BorrowRecord, error)
	ReturnBorrowRecord(record *data.BorrowRecord) (*data.Inventory, error)
	MarkBorrowRecordLost(record *data.BorrowRecord) (*data.Inventory, error)
	MarkBorrowRecordOverdue(record *data.BorrowRecord) error
	SweepOverdueBorrowRecords(libraryID int64) ([]*data.BorrowRecord, error)
	GetAllBorrowRecords(userID, libraryID int64, statuses []string, overdueOnly bool, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error)
	GetAllBorrowRecordsForUser(userID int64, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error)
}

// GetBorrowRecord retrieves a borrow record by its ID.
func (r *repository) GetBorrowRecord(recordID int64) (*data.BorrowRecord, error) {
	if recordID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, user_id, library_id, title_id, inventory_id, copy_id, borrow_date, due_date, return_date, status, approved_by, late_fee, damage_fee, currency, version
		FROM borrow_records
		WHERE id = $1`
	var record data.BorrowRecord
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, recordID).Scan(
		&record.ID,
		&record.UserID,
		&record.LibraryID,
		&record.TitleID,
		&record.InventoryID,
		&record.CopyID,
		&record.BorrowDate,
		&record.DueDate,
		&record.ReturnDate,
		&record.Status,
		&record.ApprovedBy,
		&record.Fees.LateFee,
		&record.Fees.DamageFee,
		&record.Fees.Currency,
		&record.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &record, nil
}

// ReturnBorrowRecord closes a loan as returned and, in the same transaction,
// flips the copy back to available and recomputes the inventory counts. The
// caller sets status, return date and merged fees on the record beforehand;
// the status guard in the WHERE clause rejects a repeat return even when two
// staff check the same copy in concurrently. It returns the refreshed
// inventory.
func (r *repository) ReturnBorrowRecord(record *data.BorrowRecord) (*data.Inventory, error) {
	return r.closeBorrowRecord(record, data.CopyStatusAvailable, []string{data.RecordStatusBorrowed, data.RecordStatusOverdue})
}

// MarkBorrowRecordLost closes a loan as lost. The copy moves to the lost
// status and stays non-available until staff restore it. Counts are recomputed
// in the same transaction. It returns the refreshed inventory.
func (r *repository) MarkBorrowRecordLost(record *data.BorrowRecord) (*data.Inventory, error) {
	return r.closeBorrowRecord(record, data.CopyStatusLost, []string{data.RecordStatusBorrowed, data.RecordStatusOverdue})
}

func (r *repository) closeBorrowRecord(record *data.BorrowRecord, copyStatus string, fromStatuses []string) (*data.Inventory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE borrow_records
		SET status = $1, return_date = $2, late_fee = $3, damage_fee = $4, currency = $5, version = version + 1
		WHERE id = $6 AND version = $7 AND status = ANY($8)
		RETURNING version`
	args := []interface{}{
		record.Status,
		record.ReturnDate,
		record.Fees.LateFee,
		record.Fees.DamageFee,
		record.Fees.Currency,
		record.ID,
		record.Version,
		pq.Array(fromStatuses),
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&record.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE copies SET status = $1, version = version + 1 WHERE id = $2`, copyStatus, record.CopyID)
	if err != nil {
		return nil, err
	}

	inventory, err := recomputeInventoryCounts(ctx, tx, record.InventoryID)
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return inventory, nil
}

// MarkBorrowRecordOverdue applies the derived overdue status to a single
// record. The guard means the update silently does nothing if the record has
// moved on since it was read, in which case the in-memory record is left
// untouched.
func (r *repository) MarkBorrowRecordOverdue(record *data.BorrowRecord) error {
	query := `
		UPDATE borrow_records
		SET status = $1, version = version + 1
		WHERE id = $2 AND status = $3 AND due_date < now()
		RETURNING version`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, data.RecordStatusOverdue, record.ID, data.RecordStatusBorrowed).Scan(&record.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		default:
			return err
		}
	}
	record.Status = data.RecordStatusOverdue
	return nil
}

// SweepOverdueBorrowRecords marks every unreturned record past its due date as
// overdue, optionally scoped to a library, and returns the records it moved so
// the caller can emit overdue notifications. Read paths run this before
// listing, which is what makes overdue a derived state rather than something a
// scheduler has to write.
func (r *repository) SweepOverdueBorrowRecords(libraryID int64) ([]*data.BorrowRecord, error) {
	query := `
		UPDATE borrow_records
		SET status = $1, version = version + 1
		WHERE status = $2 AND due_date < now()
		AND (library_id = $3 OR $3 = 0)
		RETURNING id, user_id, library_id, title_id, inventory_id, copy_id, borrow_date, due_date, return_date, status, approved_by, late_fee, damage_fee, currency, version`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, data.RecordStatusOverdue, data.RecordStatusBorrowed, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := []*data.BorrowRecord{}
	for rows.Next() {
		var record data.BorrowRecord
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.LibraryID,
			&record.TitleID,
			&record.InventoryID,
			&record.CopyID,
			&record.BorrowDate,
			&record.DueDate,
			&record.ReturnDate,
			&record.Status,
			&record.ApprovedBy,
			&record.Fees.LateFee,
			&record.Fees.DamageFee,
			&record.Fees.Currency,
			&record.Version,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAllBorrowRecords retrieves a paginated list of borrow records filtered by
// user, library and status set. When overdueOnly is true only open loans past
// their due date are returned; closed records whose due date has since passed
// do not count as overdue.
func (r *repository) GetAllBorrowRecords(userID, libraryID int64, statuses []string, overdueOnly bool, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, user_id, library_id, title_id, inventory_id, copy_id, borrow_date, due_date, return_date, status, approved_by, late_fee, damage_fee, currency, version
		FROM borrow_records
		WHERE (user_id = $1 OR $1 = 0)
		AND (library_id = $2 OR $2 = 0)
		AND (status = ANY($3) OR $3 = '{}')
		AND ((status IN ('borrowed', 'overdue') AND due_date < now()) OR $4 = false)
		ORDER BY %s %s, id ASC
		LIMIT $5 OFFSET $6`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{userID, libraryID, pq.Array(statuses), overdueOnly, filters.Limit(), filters.Offset()}
	return r.getAllBorrowRecords(query, args, filters)
}

// GetAllBorrowRecordsForUser retrieves one user's full loan history, most
// recent first.
func (r *repository) GetAllBorrowRecordsForUser(userID int64, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error) {
	query := `
		SELECT count(*) OVER(), id, user_id, library_id, title_id, inventory_id, copy_id, borrow_date, due_date, return_date, status, approved_by, late_fee, damage_fee, currency, version
		FROM borrow_records
		WHERE user_id = $1
		ORDER BY borrow_date DESC, id DESC
		LIMIT $2 OFFSET $3`
	args := []interface{}{userID, filters.Limit(), filters.Offset()}
	return r.getAllBorrowRecords(query, args, filters)
}

func (r *repository) getAllBorrowRecords(query string, args []interface{}, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	records := []*data.BorrowRecord{}
	for rows.Next() {
		var record data.BorrowRecord
		err := rows.Scan(
			&totalRecords,
			&record.ID,
			&record.UserID,
			&record.LibraryID,
			&record.TitleID,
			&record.InventoryID,
			&record.CopyID,
			&record.BorrowDate,
			&record.DueDate,
			&record.ReturnDate,
			&record.Status,
			&record.ApprovedBy,
			&record.Fees.LateFee,
			&record.Fees.DamageFee,
			&record.Fees.Currency,
			&record.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		records = append(records, &record)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return records, metadata, nil
}
