package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"merchant-api/internal/domain"
)

type fakeAccountRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[string]domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{rows: map[string]domain.Account{}}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.MobileNumber]; ok {
		return domain.ErrMobileNumberTaken
	}
	r.nextID++
	a.ID = r.nextID
	r.rows[a.MobileNumber] = *a
	return nil
}

func (r *fakeAccountRepo) FindByMobileNumber(_ context.Context, mobileNumber string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[mobileNumber]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(subject string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + subject, nil
}

// fakeProductRepo 按 id 保存副本；Transaction 失败时整体回滚
type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]domain.Product
	finds    int
	patterns []string
	failWith error
	// onFind 只触发一次，在读出行之后、返回之前调用
	onFind func()
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{rows: map[int64]domain.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	p, ok := r.rows[id]
	hook := r.onFind
	r.onFind = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	r.mu.Lock()
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.rows[p.ID]; !ok {
		return errors.New("save: no such row")
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) sorted() []domain.Product {
	out := make([]domain.Product, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) ListAfter(_ context.Context, cursor int64, limit int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.sorted() {
		if p.ID > cursor && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SearchByName(_ context.Context, substr string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.sorted() {
		if strings.Contains(p.Name, substr) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SearchByNamePattern(_ context.Context, pattern string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
	return nil, nil
}

func (r *fakeProductRepo) Transaction(_ context.Context, fn func(domain.ProductRepository) error) error {
	r.mu.Lock()
	snapshot := make(map[int64]domain.Product, len(r.rows))
	for k, v := range r.rows {
		snapshot[k] = v
	}
	next := r.nextID
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.rows, r.nextID = snapshot, next
		r.mu.Unlock()
		return err
	}
	return nil
}
