package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"lead-service/internal/domain"
	"lead-service/internal/repository"
	"lead-service/internal/store"
)

// In-memory fakes shared by the service tests.

type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*domain.ShadowUser
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*domain.ShadowUser)}
}

func (f *fakeUsersRepo) GetShadowUser(_ context.Context, userID string) (*domain.ShadowUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsersRepo) InsertShadowUser(_ context.Context, user *domain.ShadowUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		f.users[user.ID] = user
	}
	return nil
}

type fakeRequirementsRepo struct {
	requirements map[string]*domain.Requirement

	createErr    error
	updateResult *domain.Requirement
	updateErr    error
	deleteOneErr error
	deleteCount  int64
	closeErr     error
	selectErr    error

	closedID       string
	selectedSeller string
}

func newFakeRequirementsRepo() *fakeRequirementsRepo {
	return &fakeRequirementsRepo{requirements: make(map[string]*domain.Requirement)}
}

func (f *fakeRequirementsRepo) CreateRequirement(_ context.Context, req *domain.Requirement) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	f.requirements[req.ID] = req
	return nil
}

func (f *fakeRequirementsRepo) GetRequirement(_ context.Context, id string) (*domain.Requirement, error) {
	if req, ok := f.requirements[id]; ok {
		return req, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRequirementsRepo) ListRequirements(_ context.Context, filters repository.RequirementFilters) ([]*domain.Requirement, error) {
	items := []*domain.Requirement{}
	for _, req := range f.requirements {
		if filters.BuyerID != "" && req.BuyerID != filters.BuyerID {
			continue
		}
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		items = append(items, req)
	}
	return items, nil
}

func (f *fakeRequirementsRepo) UpdateRequirement(_ context.Context, _, _ string, _ repository.RequirementUpdate) (*domain.Requirement, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeRequirementsRepo) DeleteRequirement(_ context.Context, id, buyerID string) error {
	if f.deleteOneErr != nil {
		return f.deleteOneErr
	}
	req, ok := f.requirements[id]
	if !ok || req.BuyerID != buyerID {
		return sql.ErrNoRows
	}
	delete(f.requirements, id)
	return nil
}

func (f *fakeRequirementsRepo) DeleteAllByBuyer(_ context.Context, _ string) (int64, error) {
	return f.deleteCount, nil
}

func (f *fakeRequirementsRepo) CloseRequirement(_ context.Context, id, _ string) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closedID = id
	return nil
}

func (f *fakeRequirementsRepo) SelectSeller(_ context.Context, _, _, sellerID string) error {
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selectedSeller = sellerID
	return nil
}

type fakeLeadsRepo struct {
	createErr error
	created   []*domain.Lead

	cancelResult *domain.Lead
	cancelErr    error

	stats     *domain.LeadStats
	statsErr  error
	statCalls int

	contacted []*domain.ContactedRequirement
}

func (f *fakeLeadsRepo) CreateLead(_ context.Context, lead *domain.Lead) error {
	if f.createErr != nil {
		return f.createErr
	}
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	f.created = append(f.created, lead)
	return nil
}

func (f *fakeLeadsRepo) CancelLead(_ context.Context, _, _ string) (*domain.Lead, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelResult, nil
}

func (f *fakeLeadsRepo) SellerStats(_ context.Context, _ string) (*domain.LeadStats, error) {
	f.statCalls++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeLeadsRepo) ListContactedBySeller(_ context.Context, _ string) ([]*domain.ContactedRequirement, error) {
	return f.contacted, nil
}

type fakeIdentityClient struct {
	users map[string]*RemoteUser
	err   error
	calls int
}

func (f *fakeIdentityClient) FetchUser(_ context.Context, userID string) (*RemoteUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, domain.NewError(domain.ErrNotFound, "User not found")
}

type fakeChatClient struct {
	err  error
	sent []ChatMessage
}

func (f *fakeChatClient) SendMessage(_ context.Context, msg ChatMessage) (*ChatDelivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &ChatDelivery{ConversationID: "convo-1"}, nil
}

type fakeNotifier struct {
	pushes map[string][]any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pushes: make(map[string][]any)}
}

func (f *fakeNotifier) Push(userID string, event any) {
	f.pushes[userID] = append(f.pushes[userID], event)
}

type fakeKV struct {
	data map[string]string
	sets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", store.ErrMiss
}

func (f *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}
