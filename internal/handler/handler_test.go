package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshbasket/orderd/internal/domain/auth"
	"github.com/freshbasket/orderd/internal/domain/banner"
	"github.com/freshbasket/orderd/internal/domain/member"
	"github.com/freshbasket/orderd/internal/domain/newsletter"
	"github.com/freshbasket/orderd/internal/domain/order"
	"github.com/freshbasket/orderd/internal/domain/product"
	"github.com/freshbasket/orderd/internal/domain/report"
	"github.com/freshbasket/orderd/internal/domain/user"
)

// --- In-memory fakes ---

type memOrderRepo struct {
	orders map[string]*order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*order.Order)}
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) List(_ context.Context, f order.Filter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if !f.Since.IsZero() && o.PlacedAt.Before(f.Since) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *memOrderRepo) Accept(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status == order.StatusAccepted {
		return nil, order.ErrAlreadyAccepted
	}
	o.Status = order.StatusAccepted
	return o, nil
}

func (m *memOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.orders)), nil
}

func (m *memOrderRepo) SumTotals(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range m.orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum, nil
}

type memUserRepo struct {
	users map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*user.User)}
}

func (m *memUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.users {
		if existing.Phone == u.Phone {
			return user.ErrPhoneTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

type memProductRepo struct {
	products []product.Product
}

func (m *memProductRepo) Create(_ context.Context, p *product.Product) error {
	m.products = append(m.products, *p)
	return nil
}

func (m *memProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, nil
}

func (m *memProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

type memMemberRepo struct {
	members []member.Member
}

func (m *memMemberRepo) Create(_ context.Context, mm *member.Member) error {
	mm.CreatedAt = time.Now().UTC()
	m.members = append(m.members, *mm)
	return nil
}

func (m *memMemberRepo) List(_ context.Context) ([]member.Member, error) {
	return m.members, nil
}

func (m *memMemberRepo) Recent(_ context.Context, limit int) ([]member.Member, error) {
	out := make([]member.Member, len(m.members))
	copy(out, m.members)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memNewsletterRepo struct {
	emails map[string]bool
}

func newMemNewsletterRepo() *memNewsletterRepo {
	return &memNewsletterRepo{emails: make(map[string]bool)}
}

func (m *memNewsletterRepo) Subscribe(_ context.Context, email string) error {
	if m.emails[email] {
		return newsletter.ErrAlreadySubscribed
	}
	m.emails[email] = true
	return nil
}

func (m *memNewsletterRepo) List(_ context.Context) ([]newsletter.Subscriber, error) {
	out := make([]newsletter.Subscriber, 0, len(m.emails))
	for email := range m.emails {
		out = append(out, newsletter.Subscriber{Email: email})
	}
	return out, nil
}

type memBannerRepo struct {
	banners []banner.Banner
}

func (m *memBannerRepo) Add(_ context.Context, b *banner.Banner) error {
	b.CreatedAt = time.Now().UTC()
	m.banners = append(m.banners, *b)
	if len(m.banners) > banner.KeepLatest {
		m.banners = m.banners[len(m.banners)-banner.KeepLatest:]
	}
	return nil
}

func (m *memBannerRepo) List(_ context.Context) ([]banner.Banner, error) {
	return m.banners, nil
}

// --- Test fixture ---

type fixture struct {
	handler  *Handler
	mux      *http.ServeMux
	orders   *memOrderRepo
	users    *memUserRepo
	products *memProductRepo
	tokens   *auth.TokenManager
	userSvc  *user.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := newMemOrderRepo()
	users := newMemUserRepo()
	products := &memProductRepo{}
	tokens := auth.NewTokenManager([]byte("test-secret"), 2*time.Hour)

	orderSvc := order.NewService(orders)
	userSvc := user.NewService(users)
	reportSvc := report.NewService(orders, users, products)

	h := New(orderSvc, userSvc, tokens, reportSvc, products, &memMemberRepo{}, newMemNewsletterRepo(), &memBannerRepo{})

	return &fixture{
		handler:  h,
		mux:      h.Routes(),
		orders:   orders,
		users:    users,
		products: products,
		tokens:   tokens,
		userSvc:  userSvc,
	}
}

// registerUser creates an account directly through the service and returns
// the user plus a valid bearer token.
func (f *fixture) registerUser(t *testing.T, username, phone, password string) (*user.User, string) {
	t.Helper()

	u, err := f.userSvc.Register(context.Background(), username, phone, password)
	require.NoError(t, err)

	token, err := f.tokens.Issue(auth.Claims{UserID: u.ID, Username: u.Username, Phone: u.Phone})
	require.NoError(t, err)

	return u, token
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
