package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
)

type inventories interface {
	CreateInventory(inventory *data.Inventory) error
	GetInventory(inventoryID int64) (*data.Inventory, error)
	GetInventoryForLibraryTitle(libraryID, titleID int64) (*data.Inventory, error)
	UpdateInventory(inventory *data.Inventory) error
	RecomputeInventory(inventoryID int64) (*data.Inventory, error)
	GetAllInventories(libraryID, titleID int64, availableOnly bool, filters data.Filters) ([]*data.Inventory, data.Metadata, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx, so count recomputation can
// run inside the transaction that mutated copy state.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// recomputeInventoryCounts refreshes an inventory's total and available copy
// counts from the authoritative copies table. Counts are never adjusted
// incrementally; a fresh count inside the mutating transaction is what keeps
// the aggregate from drifting under concurrent updates.
func recomputeInventoryCounts(ctx context.Context, q queryer, inventoryID int64) (*data.Inventory, error) {
	query := `
		UPDATE inventories
		SET total_copies = (
				SELECT count(*) FROM copies WHERE inventory_id = inventories.id
			),
			available_copies = (
				SELECT count(*) FROM copies WHERE inventory_id = inventories.id AND status = $2
			),
			version = version + 1
		WHERE id = $1
		RETURNING id, created_at, library_id, title_id, total_copies, available_copies, version`
	var inventory data.Inventory
	err := q.QueryRowContext(ctx, query, inventoryID, data.CopyStatusAvailable).Scan(
		&inventory.ID,
		&inventory.CreatedAt,
		&inventory.LibraryID,
		&inventory.TitleID,
		&inventory.TotalCopies,
		&inventory.AvailableCopies,
		&inventory.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &inventory, nil
}

// CreateInventory creates an inventory record for a library and title pair.
func (r *repository) CreateInventory(inventory *data.Inventory) error {
	query := `
		INSERT INTO inventories (library_id, title_id, total_copies, available_copies)
		VALUES ($1, $2, 0, 0)
		RETURNING id, created_at, total_copies, available_copies, version`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, inventory.LibraryID, inventory.TitleID).Scan(
		&inventory.ID,
		&inventory.CreatedAt,
		&inventory.TotalCopies,
		&inventory.AvailableCopies,
		&inventory.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "inventories_library_title_uniq"`:
			return ErrDuplicateRecord
		case err.Error() == `pq: insert or update on table "inventories" violates foreign key constraint "inventories_library_id_fkey"`,
			err.Error() == `pq: insert or update on table "inventories" violates foreign key constraint "inventories_title_id_fkey"`:
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// GetInventory retrieves an inventory record by its ID.
func (r *repository) GetInventory(inventoryID int64) (*data.Inventory, error) {
	if inventoryID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, library_id, title_id, total_copies, available_copies, version
		FROM inventories
		WHERE id = $1`
	return r.getInventory(query, inventoryID)
}

// GetInventoryForLibraryTitle retrieves the inventory record for a library and
// title pair.
func (r *repository) GetInventoryForLibraryTitle(libraryID, titleID int64) (*data.Inventory, error) {
	if libraryID < 1 || titleID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, library_id, title_id, total_copies, available_copies, version
		FROM inventories
		WHERE library_id = $1 AND title_id = $2`
	return r.getInventory(query, libraryID, titleID)
}

func (r *repository) getInventory(query string, args ...interface{}) (*data.Inventory, error) {
	var inventory data.Inventory
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&inventory.ID,
		&inventory.CreatedAt,
		&inventory.LibraryID,
		&inventory.TitleID,
		&inventory.TotalCopies,
		&inventory.AvailableCopies,
		&inventory.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &inventory, nil
}

// UpdateInventory persists a manual adjustment of an inventory's counts. The
// caller is expected to have clamped available to [0, total] beforehand.
func (r *repository) UpdateInventory(inventory *data.Inventory) error {
	query := `
		UPDATE inventories
		SET total_copies = $1, available_copies = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version`
	args := []interface{}{
		inventory.TotalCopies,
		inventory.AvailableCopies,
		inventory.ID,
		inventory.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&inventory.Version)
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

// RecomputeInventory refreshes an inventory's counts from its copies outside
// of any other mutation, e.g. after staff correct copy rows by hand.
func (r *repository) RecomputeInventory(inventoryID int64) (*data.Inventory, error) {
	if inventoryID < 1 {
		return nil, ErrRecordNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return recomputeInventoryCounts(ctx, r.db, inventoryID)
}

// GetAllInventories retrieves a paginated list of inventory records, optionally
// scoped to a library and/or title. When availableOnly is true only inventories
// with at least one available copy are returned.
func (r *repository) GetAllInventories(libraryID, titleID int64, availableOnly bool, filters data.Filters) ([]*data.Inventory, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, library_id, title_id, total_copies, available_copies, version
		FROM inventories
		WHERE (library_id = $1 OR $1 = 0)
		AND (title_id = $2 OR $2 = 0)
		AND (available_copies > 0 OR $3 = false)
		ORDER BY %s %s, id ASC
		LIMIT $4 OFFSET $5`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{libraryID, titleID, availableOnly, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	inventories := []*data.Inventory{}
	for rows.Next() {
		var inventory data.Inventory
		err := rows.Scan(
			&totalRecords,
			&inventory.ID,
			&inventory.CreatedAt,
			&inventory.LibraryID,
			&inventory.TitleID,
			&inventory.TotalCopies,
			&inventory.AvailableCopies,
			&inventory.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		inventories = append(inventories, &inventory)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return inventories, metadata, nil
}
