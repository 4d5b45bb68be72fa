package service

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emzola/athenaeum/config"
	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/internal/jsonlog"
	"github.com/emzola/athenaeum/repository"
)

// fakeRepo is an in-memory stand-in for the postgres repository. It mirrors
// the repository's observable semantics: sentinel errors, optimistic version
// checks, lazy inventory creation, barcode generation and count recomputation
// inside every mutating call. All methods are safe for concurrent use.
type fakeRepo struct {
	mu          sync.Mutex
	libraries   map[int64]*data.Library
	titles      map[int64]*data.Title
	inventories map[int64]*data.Inventory
	copies      map[int64]*data.Copy
	requests    map[int64]*data.BorrowRequest
	records     map[int64]*data.BorrowRecord
	users       map[int64]*data.User
	tokens      []*data.Token
	nextID      int64
}

var _ repository.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		libraries:   map[int64]*data.Library{},
		titles:      map[int64]*data.Title{},
		inventories: map[int64]*data.Inventory{},
		copies:      map[int64]*data.Copy{},
		requests:    map[int64]*data.BorrowRequest{},
		records:     map[int64]*data.BorrowRecord{},
		users:       map[int64]*data.User{},
	}
}

func newTestService(repo *fakeRepo) *service {
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	return New(config.Config{}, &wg, logger, repo)
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

// Locked state accessors for test assertions. Background notification
// goroutines touch the repo after a service call returns, so tests must not
// read the maps directly.

func (f *fakeRepo) storedCopy(id int64) data.Copy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.copies[id]
}

func (f *fakeRepo) storedInventory(id int64) data.Inventory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.inventories[id]
}

func (f *fakeRepo) storedRequest(id int64) data.BorrowRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.requests[id]
}

func (f *fakeRepo) storedRecord(id int64) data.BorrowRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.records[id]
}

// recount refreshes an inventory's counts from the copies map. Callers must
// hold the mutex.
func (f *fakeRepo) recount(inventoryID int64) (*data.Inventory, error) {
	inventory, ok := f.inventories[inventoryID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	var total, available int32
	for _, c := range f.copies {
		if c.InventoryID != inventoryID {
			continue
		}
		total++
		if c.Status == data.CopyStatusAvailable {
			available++
		}
	}
	inventory.TotalCopies = total
	inventory.AvailableCopies = available
	inventory.Version++
	out := *inventory
	return &out, nil
}

func (f *fakeRepo) CreateLibrary(library *data.Library) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.libraries {
		if l.Code == library.Code {
			return repository.ErrDuplicateRecord
		}
	}
	library.ID = f.id()
	library.CreatedAt = time.Now()
	library.Version = 1
	stored := *library
	f.libraries[library.ID] = &stored
	return nil
}

func (f *fakeRepo) GetLibrary(libraryID int64) (*data.Library, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	library, ok := f.libraries[libraryID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *library
	return &out, nil
}

func (f *fakeRepo) GetLibraryByCode(code string) (*data.Library, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, library := range f.libraries {
		if library.Code == code {
			out := *library
			return &out, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) UpdateLibrary(library *data.Library) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.libraries[library.ID]
	if !ok || stored.Version != library.Version {
		return repository.ErrEditConflict
	}
	library.Version++
	next := *library
	f.libraries[library.ID] = &next
	return nil
}

func (f *fakeRepo) DeleteLibrary(libraryID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.libraries[libraryID]; !ok {
		return repository.ErrRecordNotFound
	}
	for _, inventory := range f.inventories {
		if inventory.LibraryID == libraryID {
			return repository.ErrEditConflict
		}
	}
	delete(f.libraries, libraryID)
	return nil
}

func (f *fakeRepo) GetAllLibraries(search string, filters data.Filters) ([]*data.Library, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	libraries := []*data.Library{}
	for _, library := range f.libraries {
		if search != "" && !strings.Contains(strings.ToLower(library.Name), strings.ToLower(search)) {
			continue
		}
		out := *library
		libraries = append(libraries, &out)
	}
	return libraries, data.CalculateMetadata(len(libraries), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) CreateTitle(title *data.Title) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	title.ID = f.id()
	title.CreatedAt = time.Now()
	title.Version = 1
	stored := *title
	f.titles[title.ID] = &stored
	return nil
}

func (f *fakeRepo) GetTitle(titleID int64) (*data.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	title, ok := f.titles[titleID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *title
	return &out, nil
}

func (f *fakeRepo) UpdateTitle(title *data.Title) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.titles[title.ID]
	if !ok || stored.Version != title.Version {
		return repository.ErrEditConflict
	}
	title.Version++
	next := *title
	f.titles[title.ID] = &next
	return nil
}

func (f *fakeRepo) DeleteTitle(titleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.titles[titleID]; !ok {
		return repository.ErrRecordNotFound
	}
	for _, record := range f.records {
		if record.TitleID != titleID {
			continue
		}
		if record.Status == data.RecordStatusBorrowed || record.Status == data.RecordStatusOverdue {
			return repository.ErrEditConflict
		}
	}
	delete(f.titles, titleID)
	for id, inventory := range f.inventories {
		if inventory.TitleID == titleID {
			delete(f.inventories, id)
		}
	}
	for id, c := range f.copies {
		if c.TitleID == titleID {
			delete(f.copies, id)
		}
	}
	for id, request := range f.requests {
		if request.TitleID == titleID {
			delete(f.requests, id)
		}
	}
	for id, record := range f.records {
		if record.TitleID == titleID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeRepo) GetAllTitles(search string, filters data.Filters) ([]*data.Title, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := []*data.Title{}
	for _, title := range f.titles {
		if search != "" && !strings.Contains(strings.ToLower(title.Name), strings.ToLower(search)) {
			continue
		}
		out := *title
		titles = append(titles, &out)
	}
	return titles, data.CalculateMetadata(len(titles), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) CreateInventory(inventory *data.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.libraries[inventory.LibraryID]; !ok {
		return repository.ErrRecordNotFound
	}
	if _, ok := f.titles[inventory.TitleID]; !ok {
		return repository.ErrRecordNotFound
	}
	for _, existing := range f.inventories {
		if existing.LibraryID == inventory.LibraryID && existing.TitleID == inventory.TitleID {
			return repository.ErrDuplicateRecord
		}
	}
	inventory.ID = f.id()
	inventory.CreatedAt = time.Now()
	inventory.Version = 1
	stored := *inventory
	f.inventories[inventory.ID] = &stored
	return nil
}

func (f *fakeRepo) GetInventory(inventoryID int64) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inventory, ok := f.inventories[inventoryID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *inventory
	return &out, nil
}

func (f *fakeRepo) GetInventoryForLibraryTitle(libraryID, titleID int64) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inventory := range f.inventories {
		if inventory.LibraryID == libraryID && inventory.TitleID == titleID {
			out := *inventory
			return &out, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) UpdateInventory(inventory *data.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.inventories[inventory.ID]
	if !ok || stored.Version != inventory.Version {
		return repository.ErrEditConflict
	}
	inventory.Version++
	next := *inventory
	f.inventories[inventory.ID] = &next
	return nil
}

func (f *fakeRepo) RecomputeInventory(inventoryID int64) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recount(inventoryID)
}

func (f *fakeRepo) GetAllInventories(libraryID, titleID int64, availableOnly bool, filters data.Filters) ([]*data.Inventory, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inventories := []*data.Inventory{}
	for _, inventory := range f.inventories {
		if libraryID != 0 && inventory.LibraryID != libraryID {
			continue
		}
		if titleID != 0 && inventory.TitleID != titleID {
			continue
		}
		if availableOnly && inventory.AvailableCopies < 1 {
			continue
		}
		out := *inventory
		inventories = append(inventories, &out)
	}
	return inventories, data.CalculateMetadata(len(inventories), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) CreateCopy(copy *data.Copy, libraryCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.libraries[copy.LibraryID]; !ok {
		return repository.ErrRecordNotFound
	}
	if _, ok := f.titles[copy.TitleID]; !ok {
		return repository.ErrRecordNotFound
	}
	var inventory *data.Inventory
	for _, existing := range f.inventories {
		if existing.LibraryID == copy.LibraryID && existing.TitleID == copy.TitleID {
			inventory = existing
			break
		}
	}
	if inventory == nil {
		inventory = &data.Inventory{
			ID:        f.id(),
			CreatedAt: time.Now(),
			LibraryID: copy.LibraryID,
			TitleID:   copy.TitleID,
			Version:   1,
		}
		f.inventories[inventory.ID] = inventory
	}
	copy.InventoryID = inventory.ID
	if copy.Barcode == "" {
		prefix := data.BarcodePrefix(libraryCode, time.Now().Year())
		existing := 0
		for _, c := range f.copies {
			if c.LibraryID == copy.LibraryID && strings.HasPrefix(c.Barcode, prefix) {
				existing++
			}
		}
		copy.Barcode = data.FormatBarcode(libraryCode, time.Now().Year(), existing+1)
	}
	for _, c := range f.copies {
		if c.LibraryID == copy.LibraryID && c.Barcode == copy.Barcode {
			return repository.ErrDuplicateRecord
		}
	}
	copy.ID = f.id()
	copy.CreatedAt = time.Now()
	copy.Version = 1
	stored := *copy
	f.copies[copy.ID] = &stored
	_, err := f.recount(inventory.ID)
	return err
}

func (f *fakeRepo) GetCopy(copyID int64) (*data.Copy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy, ok := f.copies[copyID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *copy
	return &out, nil
}

func (f *fakeRepo) GetCopyByBarcode(barcode string, libraryID int64) (*data.Copy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, copy := range f.copies {
		if copy.LibraryID == libraryID && copy.Barcode == barcode {
			out := *copy
			return &out, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) UpdateCopy(copy *data.Copy) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.copies[copy.ID]
	if !ok || stored.Version != copy.Version {
		return nil, repository.ErrEditConflict
	}
	copy.Version++
	next := *copy
	f.copies[copy.ID] = &next
	return f.recount(copy.InventoryID)
}

func (f *fakeRepo) DeleteCopy(copyID int64) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy, ok := f.copies[copyID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	if copy.Status == data.CopyStatusBorrowed {
		return nil, repository.ErrEditConflict
	}
	delete(f.copies, copyID)
	return f.recount(copy.InventoryID)
}

func (f *fakeRepo) GetAllCopies(libraryID, titleID int64, status string, filters data.Filters) ([]*data.Copy, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copies := []*data.Copy{}
	for _, copy := range f.copies {
		if libraryID != 0 && copy.LibraryID != libraryID {
			continue
		}
		if titleID != 0 && copy.TitleID != titleID {
			continue
		}
		if status != "" && copy.Status != status {
			continue
		}
		out := *copy
		copies = append(copies, &out)
	}
	return copies, data.CalculateMetadata(len(copies), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) CreateBorrowRequest(request *data.BorrowRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.requests {
		if existing.UserID == request.UserID &&
			existing.LibraryID == request.LibraryID &&
			existing.TitleID == request.TitleID &&
			existing.Status == data.RequestStatusPending {
			return repository.ErrDuplicateRecord
		}
	}
	request.ID = f.id()
	request.RequestedAt = time.Now()
	request.Version = 1
	stored := *request
	f.requests[request.ID] = &stored
	return nil
}

func (f *fakeRepo) GetBorrowRequest(requestID int64) (*data.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *request
	return &out, nil
}

func (f *fakeRepo) UpdateBorrowRequest(request *data.BorrowRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[request.ID]
	if !ok || stored.Version != request.Version || stored.Status != data.RequestStatusPending {
		return repository.ErrEditConflict
	}
	request.Version++
	next := *request
	f.requests[request.ID] = &next
	return nil
}

func (f *fakeRepo) ApproveBorrowRequest(request *data.BorrowRequest, record *data.BorrowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[request.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	if stored.Status != data.RequestStatusPending {
		return repository.ErrEditConflict
	}
	var claimed *data.Copy
	for _, copy := range f.copies {
		if copy.InventoryID != request.InventoryID || copy.Status != data.CopyStatusAvailable {
			continue
		}
		if claimed == nil || copy.ID < claimed.ID {
			claimed = copy
		}
	}
	if claimed == nil {
		return repository.ErrInsufficientAvailability
	}
	claimed.Status = data.CopyStatusBorrowed
	claimed.Version++

	record.CopyID = claimed.ID
	record.ID = f.id()
	record.Version = 1
	storedRecord := *record
	f.records[record.ID] = &storedRecord

	stored.Status = data.RequestStatusApproved
	stored.Notes = request.Notes
	stored.CopyID = &storedRecord.CopyID
	stored.RecordID = &storedRecord.ID
	decidedAt := record.BorrowDate
	stored.DecidedAt = &decidedAt
	stored.DecidedBy = &storedRecord.ApprovedBy
	stored.Version++

	request.Status = data.RequestStatusApproved
	request.CopyID = &record.CopyID
	request.RecordID = &record.ID
	request.DecidedAt = &decidedAt
	request.DecidedBy = &record.ApprovedBy
	request.Version = stored.Version

	_, err := f.recount(request.InventoryID)
	return err
}

func (f *fakeRepo) GetAllBorrowRequests(libraryID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := []*data.BorrowRequest{}
	for _, request := range f.requests {
		if libraryID != 0 && request.LibraryID != libraryID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		out := *request
		requests = append(requests, &out)
	}
	return requests, data.CalculateMetadata(len(requests), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) GetAllBorrowRequestsForUser(userID int64, status string, filters data.Filters) ([]*data.BorrowRequest, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := []*data.BorrowRequest{}
	for _, request := range f.requests {
		if request.UserID != userID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		out := *request
		requests = append(requests, &out)
	}
	return requests, data.CalculateMetadata(len(requests), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) GetBorrowRecord(recordID int64) (*data.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *record
	return &out, nil
}

// closeRecord applies a terminal record status and moves the copy to
// copyStatus, mirroring the single-transaction close in the real repository.
// Callers must hold the mutex.
func (f *fakeRepo) closeRecord(record *data.BorrowRecord, copyStatus string) (*data.Inventory, error) {
	stored, ok := f.records[record.ID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	if stored.Status != data.RecordStatusBorrowed && stored.Status != data.RecordStatusOverdue {
		return nil, repository.ErrEditConflict
	}
	record.Version = stored.Version + 1
	next := *record
	f.records[record.ID] = &next
	copy, ok := f.copies[record.CopyID]
	if ok {
		copy.Status = copyStatus
		copy.Version++
	}
	return f.recount(record.InventoryID)
}

func (f *fakeRepo) ReturnBorrowRecord(record *data.BorrowRecord) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeRecord(record, data.CopyStatusAvailable)
}

func (f *fakeRepo) MarkBorrowRecordLost(record *data.BorrowRecord) (*data.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeRecord(record, data.CopyStatusLost)
}

func (f *fakeRepo) MarkBorrowRecordOverdue(record *data.BorrowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[record.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	if stored.Status != data.RecordStatusBorrowed {
		return repository.ErrEditConflict
	}
	stored.Status = data.RecordStatusOverdue
	stored.Version++
	record.Version = stored.Version
	return nil
}

func (f *fakeRepo) SweepOverdueBorrowRecords(libraryID int64) ([]*data.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	swept := []*data.BorrowRecord{}
	for _, record := range f.records {
		if libraryID != 0 && record.LibraryID != libraryID {
			continue
		}
		if record.Status != data.RecordStatusBorrowed || !record.DueDate.Before(now) {
			continue
		}
		record.Status = data.RecordStatusOverdue
		record.Version++
		out := *record
		swept = append(swept, &out)
	}
	return swept, nil
}

func (f *fakeRepo) GetAllBorrowRecords(userID, libraryID int64, statuses []string, overdueOnly bool, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*data.BorrowRecord{}
	for _, record := range f.records {
		if userID != 0 && record.UserID != userID {
			continue
		}
		if libraryID != 0 && record.LibraryID != libraryID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, status := range statuses {
				if record.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if overdueOnly {
			open := record.Status == data.RecordStatusBorrowed || record.Status == data.RecordStatusOverdue
			if !open || !record.DueDate.Before(time.Now()) {
				continue
			}
		}
		out := *record
		records = append(records, &out)
	}
	return records, data.CalculateMetadata(len(records), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) GetAllBorrowRecordsForUser(userID int64, filters data.Filters) ([]*data.BorrowRecord, data.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := []*data.BorrowRecord{}
	for _, record := range f.records {
		if record.UserID != userID {
			continue
		}
		out := *record
		records = append(records, &out)
	}
	return records, data.CalculateMetadata(len(records), filters.Page, filters.PageSize), nil
}

func (f *fakeRepo) RegisterUser(user *data.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateRecord
		}
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	user.Version = 1
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeRepo) GetUserByID(ID int64) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[ID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeRepo) GetUserByEmail(email string) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) UpdateUser(user *data.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.ID]
	if !ok || stored.Version != user.Version {
		return repository.ErrEditConflict
	}
	user.Version++
	next := *user
	f.users[user.ID] = &next
	return nil
}

func (f *fakeRepo) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.Scope != tokenScope || token.Plaintext != tokenPlaintext {
			continue
		}
		if token.Expiry.Before(time.Now()) {
			continue
		}
		user, ok := f.users[token.UserID]
		if !ok {
			continue
		}
		out := *user
		return &out, nil
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) CreateNewToken(userID int64, ttl time.Duration, scope string) (*data.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := &data.Token{
		Plaintext: fmt.Sprintf("%026d", f.id()),
		UserID:    userID,
		Expiry:    time.Now().Add(ttl),
		Scope:     scope,
	}
	f.tokens = append(f.tokens, token)
	return token, nil
}

func (f *fakeRepo) DeleteAllTokensForUser(scope string, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tokens[:0]
	for _, token := range f.tokens {
		if token.Scope == scope && token.UserID == userID {
			continue
		}
		kept = append(kept, token)
	}
	f.tokens = kept
	return nil
}
