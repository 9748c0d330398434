package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakePasswords accepts "secret" for every hash.
type fakePasswords struct{}

func (fakePasswords) Verify(plaintext, hash string) bool {
	return plaintext == "secret"
}

type fakeAccessRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.UserAccess
}

func newFakeAccessRepo() *fakeAccessRepo {
	return &fakeAccessRepo{rows: make(map[uuid.UUID]*model.UserAccess)}
}

func (r *fakeAccessRepo) set(userID uuid.UUID, portfolios, properties []string) {
	r.rows[userID] = &model.UserAccess{UserID: userID, PortfolioIDs: portfolios, PropertyIDs: properties}
}

func (r *fakeAccessRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	copied.PortfolioIDs = append([]string{}, row.PortfolioIDs...)
	copied.PropertyIDs = append([]string{}, row.PropertyIDs...)
	return &copied, nil
}

func (r *fakeAccessRepo) FindByPropertyID(ctx context.Context, propertyID string) ([]model.UserAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.UserAccess
	for _, row := range r.rows {
		if row.Contains(model.AccessFieldProperty, propertyID) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeAccessRepo) row(userID uuid.UUID) *model.UserAccess {
	row, ok := r.rows[userID]
	if !ok {
		row = &model.UserAccess{UserID: userID, PortfolioIDs: []string{}, PropertyIDs: []string{}}
		r.rows[userID] = row
	}
	return row
}

func (r *fakeAccessRepo) AddIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.row(userID)
	for _, id := range model.UniqueIDs(ids) {
		if row.Contains(field, id) {
			continue
		}
		if field == model.AccessFieldPortfolio {
			row.PortfolioIDs = append(row.PortfolioIDs, id)
		} else {
			row.PropertyIDs = append(row.PropertyIDs, id)
		}
	}
	return nil
}

func (r *fakeAccessRepo) RemoveIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := []string{}
	for _, id := range row.IDs(field) {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	if field == model.AccessFieldPortfolio {
		row.PortfolioIDs = kept
	} else {
		row.PropertyIDs = kept
	}
	return nil
}

func (r *fakeAccessRepo) ReplaceIDs(ctx context.Context, userID uuid.UUID, field model.AccessField, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.row(userID)
	if field == model.AccessFieldPortfolio {
		row.PortfolioIDs = model.UniqueIDs(ids)
	} else {
		row.PropertyIDs = model.UniqueIDs(ids)
	}
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByRoleCode(ctx context.Context, code string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Role != nil && u.Role.Code == code && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	if u, ok := r.users[userID]; ok {
		u.Password = hashedPassword
	}
	return nil
}

func (r *fakeUserRepo) UpdateSession(ctx context.Context, userID uuid.UUID, tokenVersion string) error {
	if u, ok := r.users[userID]; ok {
		u.TokenVersion = tokenVersion
	}
	return nil
}

type fakePropertyRepo struct {
	properties map[uuid.UUID]*model.Property
	portfolios *fakePortfolioRepo
}

func (r *fakePropertyRepo) Create(ctx context.Context, property *model.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	r.properties[property.ID] = property
	return nil
}

func (r *fakePropertyRepo) FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Property, error) {
	var out []model.Property
	for _, p := range r.properties {
		if scope.All || scope.Contains(p.ID.String()) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	if r.portfolios != nil {
		copied.Portfolio = r.portfolios.portfolios[p.PortfolioID]
	}
	return &copied, nil
}

func (r *fakePropertyRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePropertyRepo) UpdatePortfolio(ctx context.Context, id, portfolioID uuid.UUID) error {
	r.properties[id].PortfolioID = portfolioID
	return nil
}

func (r *fakePropertyRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.properties[id].IsActive = active
	return nil
}

type fakePortfolioRepo struct {
	portfolios map[uuid.UUID]*model.Portfolio
}

func (r *fakePortfolioRepo) Create(ctx context.Context, portfolio *model.Portfolio) error {
	if portfolio.ID == uuid.Nil {
		portfolio.ID = uuid.New()
	}
	r.portfolios[portfolio.ID] = portfolio
	return nil
}

func (r *fakePortfolioRepo) FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Portfolio, error) {
	var out []model.Portfolio
	for _, p := range r.portfolios {
		if scope.All || scope.Contains(p.ID.String()) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePortfolioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error) {
	p, ok := r.portfolios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakePortfolioRepo) FindByName(ctx context.Context, name string) (*model.Portfolio, error) {
	for _, p := range r.portfolios {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAuditRepo struct {
	audits map[uuid.UUID]*model.Audit
}

func (r *fakeAuditRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Audit, error) {
	a, ok := r.audits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAuditRepo) UpdateAmountConfirmed(ctx context.Context, id uuid.UUID, amount float64) error {
	a, ok := r.audits[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.AmountConfirmed = &amount
	return nil
}

// fakeActionRepo mimics the conditional update: the claim and apply are
// undone together when apply fails.
type fakeActionRepo struct {
	mu      sync.Mutex
	actions map[uuid.UUID]*model.PendingAction
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: make(map[uuid.UUID]*model.PendingAction)}
}

func (r *fakeActionRepo) Create(ctx context.Context, action *model.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	copied := *action
	r.actions[action.ID] = &copied
	return nil
}

func (r *fakeActionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeActionRepo) FindAll(ctx context.Context, filter repository.PendingActionFilter) ([]model.PendingAction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filter.Normalize()
	var matched []model.PendingAction
	for _, a := range r.actions {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.ActionType != "" && a.ActionType != filter.ActionType {
			continue
		}
		if filter.RequestedUserID != nil && a.RequestedUserID != *filter.RequestedUserID {
			continue
		}
		matched = append(matched, *a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeActionRepo) Resolve(ctx context.Context, id uuid.UUID, decision model.PendingActionDecision, apply func(ctx context.Context) error) error {
	r.mu.Lock()
	a, ok := r.actions[id]
	if !ok || a.Status != model.PendingActionStatusPending {
		r.mu.Unlock()
		return repository.ErrNotPending
	}
	before := *a
	a.Status = decision.Status
	approver := decision.ApprovalUserID
	a.ApprovalUserID = &approver
	a.RejectionReason = decision.RejectionReason
	decided := decision.DecidedAt
	a.ApprovedAt = &decided
	if decision.TransferData != nil {
		a.SetTransfer(*decision.TransferData)
	}
	r.mu.Unlock()

	if apply == nil {
		return nil
	}
	if err := apply(ctx); err != nil {
		r.mu.Lock()
		*a = before
		r.mu.Unlock()
		return err
	}
	return nil
}

type recordingExecutor struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (e *recordingExecutor) record(call string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	return e.err
}

func (e *recordingExecutor) TransferProperty(ctx context.Context, propertyID, newPortfolioID uuid.UUID) error {
	return e.record("transfer")
}

func (e *recordingExecutor) DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return e.record("deactivate")
}

func (e *recordingExecutor) ActivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return e.record("activate")
}

func (e *recordingExecutor) UpdateAuditAmountConfirmed(ctx context.Context, auditID uuid.UUID, amount float64) error {
	return e.record("audit_amount")
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	err   error
	panic bool
}

func (n *fakeNotifier) Notify(ctx context.Context, kind string, recipients []uuid.UUID, payload interface{}) error {
	if n.panic {
		panic("notifier exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
	return n.err
}

var errBoom = errors.New("boom")

// Test roles and users.

func roleWith(code string, perms map[model.ModuleType]model.Permission) *model.Role {
	role := &model.Role{Code: code, Name: code}
	for module, p := range perms {
		switch module {
		case model.ModulePortfolio:
			role.PortfolioPermission = p
		case model.ModuleProperty:
			role.PropertyPermission = p
		case model.ModuleAudit:
			role.AuditPermission = p
		case model.ModuleUser:
			role.UserPermission = p
		case model.ModuleSystemSettings:
			role.SystemSettingsPermission = p
		case model.ModuleBankDetails:
			role.BankDetailsPermission = p
		}
	}
	return role
}

func perm(level model.PermissionLevel, access model.AccessLevel) model.Permission {
	return model.Permission{PermissionLevel: level, AccessLevel: access}
}

func superAdminRole() *model.Role {
	role := model.DefaultRoles[0]
	return &role
}

func newUser(name string, role *model.Role) *model.User {
	u := &model.User{Email: name + "@example.com", FullName: name, Role: role, IsActive: true, Password: "hash"}
	u.ID = uuid.New()
	return u
}
