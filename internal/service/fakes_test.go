package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeTx runs fn directly. AfterCommit hooks run once the outermost call
// returns nil and are dropped on error.
type fakeTx struct {
	mu    sync.Mutex
	depth int
	hooks []func()
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.depth++
	f.mu.Unlock()

	err := fn(ctx)

	f.mu.Lock()
	f.depth--
	outer := f.depth == 0
	var hooks []func()
	if outer {
		if err == nil {
			hooks = f.hooks
		}
		f.hooks = nil
	}
	f.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	return err
}

func (f *fakeTx) AfterCommit(ctx context.Context, hook func()) {
	f.mu.Lock()
	if f.depth > 0 {
		f.hooks = append(f.hooks, hook)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	hook()
}

type stockKey struct{ product, location uuid.UUID }

// store backs every fake repository so tests can inspect writes.
type store struct {
	mu           sync.Mutex
	products     map[uuid.UUID]model.Product
	locations    map[uuid.UUID]model.Location
	projects     map[uuid.UUID]model.Project
	stock        map[stockKey]decimal.Decimal
	transactions []model.Transaction
	workCodes    []model.WorkCode
	projectCodes map[uuid.UUID][]model.ProjectWorkCode
	timeRows     []model.TimeRegistration

	stockWrites  int
	failTxCreate error
	failTimeRows error
}

func newStore() *store {
	return &store{
		products:     make(map[uuid.UUID]model.Product),
		locations:    make(map[uuid.UUID]model.Location),
		projects:     make(map[uuid.UUID]model.Project),
		stock:        make(map[stockKey]decimal.Decimal),
		projectCodes: make(map[uuid.UUID][]model.ProjectWorkCode),
	}
}

func (s *store) addProduct(name, sku, ean string) model.Product {
	p := model.Product{Name: name, SKU: sku, EAN: ean, Unit: "st"}
	p.ID = uuid.New()
	s.products[p.ID] = p
	return p
}

func (s *store) addLocation(name string) model.Location {
	l := model.Location{Name: name, Type: model.LocationWarehouse}
	l.ID = uuid.New()
	s.locations[l.ID] = l
	return l
}

func (s *store) addProject(number string) model.Project {
	p := model.Project{Number: number, Name: "Project " + number, Active: true}
	p.ID = uuid.New()
	s.projects[p.ID] = p
	return p
}

func (s *store) addWorkCode(code string, active bool, sortOrder int) model.WorkCode {
	w := model.WorkCode{Code: code, Name: "Code " + code, Active: active, SortOrder: sortOrder}
	w.ID = uuid.New()
	s.workCodes = append(s.workCodes, w)
	return w
}

func (s *store) setStock(productID, locationID uuid.UUID, qty string) {
	s.stock[stockKey{productID, locationID}] = decimal.RequireFromString(qty)
}

func (s *store) quantity(productID, locationID uuid.UUID) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.stock[stockKey{productID, locationID}]
	return q, ok
}

type fakeProductRepo struct{ s *store }

func (r fakeProductRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeProductRepo) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	q := strings.ToLower(query)
	all, _ := r.FindAll(ctx)
	var out []model.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.EAN), q) {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.s.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.s.products)), nil
}

type fakeLocationRepo struct{ s *store }

func (r fakeLocationRepo) Create(ctx context.Context, l *model.Location) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r fakeLocationRepo) FindAll(ctx context.Context) ([]model.Location, error) {
	out := make([]model.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		out = append(out, l)
	}
	return out, nil
}

func (r fakeLocationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	l, ok := r.s.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r fakeLocationRepo) Update(ctx context.Context, l *model.Location) error {
	r.s.locations[l.ID] = *l
	return nil
}

type fakeStockRepo struct{ s *store }

func (r fakeStockRepo) Quantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	q, _ := r.s.quantity(productID, locationID)
	return q, nil
}

func (r fakeStockRepo) FindForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*model.StockEntry, error) {
	q, ok := r.s.quantity(productID, locationID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.StockEntry{ProductID: productID, LocationID: locationID, Quantity: q}, nil
}

func (r fakeStockRepo) Adjust(ctx context.Context, productID, locationID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := stockKey{productID, locationID}
	r.s.stock[k] = r.s.stock[k].Add(delta)
	r.s.stockWrites++
	return r.s.stock[k], nil
}

func (r fakeStockRepo) Delete(ctx context.Context, productID, locationID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.stock, stockKey{productID, locationID})
	r.s.stockWrites++
	return nil
}

func (r fakeStockRepo) ListByLocation(ctx context.Context, q repository.StockQuery) ([]model.StockedProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.StockedProduct
	for k, qty := range r.s.stock {
		if k.location != q.LocationID {
			continue
		}
		p := r.s.products[k.product]
		if q.Category != nil && p.Category != *q.Category {
			continue
		}
		if q.PositiveOnly && !qty.IsPositive() {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, model.StockedProduct{Product: p, LocationID: k.location, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.Name < out[j].Product.Name })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r fakeStockRepo) ListAll(ctx context.Context) ([]model.StockRow, error) {
	return nil, nil
}

type fakeTransactionRepo struct{ s *store }

func (r fakeTransactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	if r.s.failTxCreate != nil {
		return r.s.failTxCreate
	}
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	r.s.mu.Lock()
	r.s.transactions = append(r.s.transactions, *tx)
	r.s.mu.Unlock()
	return nil
}

func (r fakeTransactionRepo) FindAll(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		t := r.s.transactions[i]
		if filter.ProductID != nil && t.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	for _, t := range r.s.transactions {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeTransactionRepo) Update(ctx context.Context, tx *model.Transaction) error {
	for i := range r.s.transactions {
		if r.s.transactions[i].ID == tx.ID {
			r.s.transactions[i] = *tx
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range r.s.transactions {
		if r.s.transactions[i].ID == id {
			r.s.transactions = append(r.s.transactions[:i], r.s.transactions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r fakeTransactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	return nil, nil
}

func (r fakeTransactionRepo) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return &repository.DashboardStats{}, nil
}

type fakeProjectRepo struct{ s *store }

func (r fakeProjectRepo) FindAll(ctx context.Context, activeOnly bool) ([]model.Project, error) {
	var out []model.Project
	for _, p := range r.s.projects {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r fakeProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := r.s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakeProjectRepo) Create(ctx context.Context, p *model.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.projects[p.ID] = *p
	return nil
}

type fakeProjectCodeRepo struct{ s *store }

func (r fakeProjectCodeRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectWorkCode, error) {
	return r.s.projectCodes[projectID], nil
}

func (r fakeProjectCodeRepo) ReplaceForProject(ctx context.Context, projectID uuid.UUID, rows []model.ProjectWorkCode) error {
	r.s.projectCodes[projectID] = rows
	return nil
}

// fakeWorkCodeRepo counts FindActive calls so cache use can be asserted.
// afterRead, when set, runs after the catalog was read and before it is returned.
type fakeWorkCodeRepo struct {
	s           *store
	activeLoads int
	afterRead   func()
}

func (r *fakeWorkCodeRepo) FindActive(ctx context.Context) ([]model.WorkCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.activeLoads++
	var out []model.WorkCode
	for _, w := range r.s.workCodes {
		if w.Active {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	if r.afterRead != nil {
		r.afterRead()
	}
	return out, nil
}

func (r *fakeWorkCodeRepo) FindAll(ctx context.Context) ([]model.WorkCode, error) {
	return append([]model.WorkCode(nil), r.s.workCodes...), nil
}

func (r *fakeWorkCodeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkCode, error) {
	for _, w := range r.s.workCodes {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWorkCodeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WorkCode, error) {
	var out []model.WorkCode
	for _, id := range ids {
		if w, err := r.FindByID(ctx, id); err == nil {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWorkCodeRepo) Create(ctx context.Context, w *model.WorkCode) error {
	w.ID = uuid.New()
	r.s.workCodes = append(r.s.workCodes, *w)
	return nil
}

func (r *fakeWorkCodeRepo) Update(ctx context.Context, w *model.WorkCode) error {
	for i := range r.s.workCodes {
		if r.s.workCodes[i].ID == w.ID {
			r.s.workCodes[i] = *w
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTimeRepo struct{ s *store }

func (r fakeTimeRepo) CreateBatch(ctx context.Context, rows []model.TimeRegistration) error {
	if r.s.failTimeRows != nil {
		return r.s.failTimeRows
	}
	r.s.timeRows = append(r.s.timeRows, rows...)
	return nil
}

func (r fakeTimeRepo) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeRegistration, error) {
	var out []model.TimeRegistration
	for _, row := range r.s.timeRows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

// recordingPublisher captures published warning events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.StockWarningRaised
}

func (p *recordingPublisher) Publish(evt model.StockWarningRaised) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) published() []model.StockWarningRaised {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.StockWarningRaised(nil), p.events...)
}
