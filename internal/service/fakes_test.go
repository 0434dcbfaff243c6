package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts []domain.Account
	nextID   int64

	// lookupErr and createErr force failures on the next calls.
	lookupErr error
	createErr error
	listErr   error
}

func (f *fakeAccountRepo) Init(context.Context) error { return nil }

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, a := range f.accounts {
		if a.Username == account.Username {
			return 0, repository.ErrDuplicateUsername
		}
		if a.Email == account.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	account.ID = f.nextID
	f.accounts = append(f.accounts, *account)
	return account.ID, nil
}

func (f *fakeAccountRepo) find(match func(domain.Account) bool) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, a := range f.accounts {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return f.find(func(a domain.Account) bool { return a.Username == username })
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return f.find(func(a domain.Account) bool { return a.Email == email })
}

func (f *fakeAccountRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			t := at
			f.accounts[i].LastLogin = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAccountRepo) List(context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Account(nil), f.accounts...), nil
}

func (f *fakeAccountRepo) stored(username string) domain.Account {
	a, _ := f.find(func(a domain.Account) bool { return a.Username == username })
	return *a
}

type fakeQueryRepo struct {
	mu      sync.Mutex
	rows    map[int64]domain.QueryMessage
	nextID  int64
	calls   int
	listErr error
	// zeroRows makes Update report no touched rows.
	zeroRows bool
}

func newFakeQueryRepo() *fakeQueryRepo {
	return &fakeQueryRepo{rows: map[int64]domain.QueryMessage{}}
}

func (f *fakeQueryRepo) Init(context.Context) error { return nil }

func (f *fakeQueryRepo) Create(_ context.Context, msg *domain.QueryMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.nextID++
	msg.ID = f.nextID
	f.rows[msg.ID] = *msg
	return msg.ID, nil
}

func (f *fakeQueryRepo) Get(_ context.Context, id int64) (*domain.QueryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	msg, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &msg, nil
}

func (f *fakeQueryRepo) List(context.Context) ([]domain.QueryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.QueryMessage, 0, len(f.rows))
	for _, msg := range f.rows {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeQueryRepo) Update(_ context.Context, id int64, patch domain.QueryPatch) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	msg, ok := f.rows[id]
	if !ok || f.zeroRows {
		return 0, nil
	}
	if patch.Name != nil {
		msg.Name = *patch.Name
	}
	if patch.Email != nil {
		msg.Email = *patch.Email
	}
	if patch.Message != nil {
		msg.Message = *patch.Message
	}
	f.rows[id] = msg
	return 1, nil
}

func (f *fakeQueryRepo) Delete(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

type fakeArchiver struct {
	archived []domain.QueryMessage
	err      error
}

func (f *fakeArchiver) Archive(_ context.Context, msg domain.QueryMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, msg)
	return "s3://test/archived", nil
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}
