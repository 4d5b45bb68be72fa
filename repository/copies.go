package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
)

type copies interface {
	CreateCopy(copy *data.Copy, libraryCode string) error
	GetCopy(copyID int64) (*data.Copy, error)
	GetCopyByBarcode(barcode string, libraryID int64) (*data.Copy, error)
	UpdateCopy(copy *data.Copy) (*data.Inventory, error)
	DeleteCopy(copyID int64) (*data.Inventory, error)
	GetAllCopies(libraryID, titleID int64, status string, filters data.Filters) ([]*data.Copy, data.Metadata, error)
}

// CreateCopy creates a physical copy record, lazily creating the owning
// inventory if this is the first copy for the library and title pair. The
// whole sequence runs in one transaction with the library row locked, which
// serializes barcode generation per branch: two concurrent creations cannot
// compute the same next sequence number. Inventory counts are recomputed
// before the transaction commits.
func (r *repository) CreateCopy(copy *data.Copy, libraryCode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the library row for the duration of the transaction.
	var libraryID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM libraries WHERE id = $1 FOR UPDATE`, copy.LibraryID).Scan(&libraryID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	// Ensure the inventory row exists. The no-op DO UPDATE makes the RETURNING
	// clause yield the existing row's id on conflict.
	query := `
		INSERT INTO inventories (library_id, title_id, total_copies, available_copies)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (library_id, title_id) DO UPDATE SET library_id = EXCLUDED.library_id
		RETURNING id`
	err = tx.QueryRowContext(ctx, query, copy.LibraryID, copy.TitleID).Scan(&copy.InventoryID)
	if err != nil {
		switch {
		case err.Error() == `pq: insert or update on table "inventories" violates foreign key constraint "inventories_title_id_fkey"`:
			return ErrRecordNotFound
		default:
			return err
		}
	}

	// Generate a barcode if none was supplied. The prefix count is stable
	// because the library row is locked above.
	if copy.Barcode == "" {
		prefix := data.BarcodePrefix(libraryCode, time.Now().Year())
		var existing int
		err = tx.QueryRowContext(ctx, `SELECT count(*) FROM copies WHERE library_id = $1 AND barcode LIKE $2 || '%'`, copy.LibraryID, prefix).Scan(&existing)
		if err != nil {
			return err
		}
		copy.Barcode = data.FormatBarcode(libraryCode, time.Now().Year(), existing+1)
	}

	query = `
		INSERT INTO copies (inventory_id, library_id, title_id, barcode, status, condition, shelf_location, acquired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version`
	args := []interface{}{
		copy.InventoryID,
		copy.LibraryID,
		copy.TitleID,
		copy.Barcode,
		copy.Status,
		copy.Condition,
		copy.ShelfLocation,
		copy.AcquiredAt,
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&copy.ID, &copy.CreatedAt, &copy.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "copies_library_barcode_uniq"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}

	_, err = recomputeInventoryCounts(ctx, tx, copy.InventoryID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetCopy retrieves a copy record by its ID.
func (r *repository) GetCopy(copyID int64) (*data.Copy, error) {
	if copyID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, inventory_id, library_id, title_id, barcode, status, condition, shelf_location, acquired_at, version
		FROM copies
		WHERE id = $1`
	return r.getCopy(query, copyID)
}

// GetCopyByBarcode retrieves a copy record by its barcode. Barcodes are only
// unique per library, so the library ID is part of the lookup.
func (r *repository) GetCopyByBarcode(barcode string, libraryID int64) (*data.Copy, error) {
	query := `
		SELECT id, created_at, inventory_id, library_id, title_id, barcode, status, condition, shelf_location, acquired_at, version
		FROM copies
		WHERE barcode = $1 AND library_id = $2`
	return r.getCopy(query, barcode, libraryID)
}

func (r *repository) getCopy(query string, args ...interface{}) (*data.Copy, error) {
	var copy data.Copy
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&copy.ID,
		&copy.CreatedAt,
		&copy.InventoryID,
		&copy.LibraryID,
		&copy.TitleID,
		&copy.Barcode,
		&copy.Status,
		&copy.Condition,
		&copy.ShelfLocation,
		&copy.AcquiredAt,
		&copy.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &copy, nil
}

// UpdateCopy updates a copy record and recomputes the owning inventory's
// counts in the same transaction, since the update may change the copy's
// status. It returns the refreshed inventory.
func (r *repository) UpdateCopy(copy *data.Copy) (*data.Inventory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE copies
		SET status = $1, condition = $2, shelf_location = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version`
	args := []interface{}{
		copy.Status,
		copy.Condition,
		copy.ShelfLocation,
		copy.ID,
		copy.Version,
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&copy.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}

	inventory, err := recomputeInventoryCounts(ctx, tx, copy.InventoryID)
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return inventory, nil
}

// DeleteCopy deletes a copy record unless it is currently out on loan, and
// recomputes the owning inventory's counts in the same transaction. Closed
// loan history for the copy cascades away with it. It returns the refreshed
// inventory.
func (r *repository) DeleteCopy(copyID int64) (*data.Inventory, error) {
	if copyID < 1 {
		return nil, ErrRecordNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var inventoryID int64
	var status string
	err = tx.QueryRowContext(ctx, `SELECT inventory_id, status FROM copies WHERE id = $1 FOR UPDATE`, copyID).Scan(&inventoryID, &status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if status == data.CopyStatusBorrowed {
		return nil, ErrEditConflict
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM copies WHERE id = $1`, copyID)
	if err != nil {
		return nil, err
	}

	inventory, err := recomputeInventoryCounts(ctx, tx, inventoryID)
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return inventory, nil
}

// GetAllCopies retrieves a paginated list of copy records, optionally scoped
// to a library, title and/or status.
func (r *repository) GetAllCopies(libraryID, titleID int64, status string, filters data.Filters) ([]*data.Copy, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, inventory_id, library_id, title_id, barcode, status, condition, shelf_location, acquired_at, version
		FROM copies
		WHERE (library_id = $1 OR $1 = 0)
		AND (title_id = $2 OR $2 = 0)
		AND (status = $3 OR $3 = '')
		ORDER BY %s %s, id ASC
		LIMIT $4 OFFSET $5`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{libraryID, titleID, status, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	copies := []*data.Copy{}
	for rows.Next() {
		var copy data.Copy
		err := rows.Scan(
			&totalRecords,
			&copy.ID,
			&copy.CreatedAt,
			&copy.InventoryID,
			&copy.LibraryID,
			&copy.TitleID,
			&copy.Barcode,
			&copy.Status,
			&copy.Condition,
			&copy.ShelfLocation,
			&copy.AcquiredAt,
			&copy.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		copies = append(copies, &copy)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return copies, metadata, nil
}
