package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestCatalog returns a stock store holding stock 1 "A" @ 1.23 and
// stock 2 "B" @ 4.56.
func newTestCatalog(t *testing.T) *store.StockStore {
	t.Helper()
	ss := store.NewStockStore()
	for _, st := range []*domain.Stock{
		{ID: 1, Name: "A", Price: d("1.23")},
		{ID: 2, Name: "B", Price: d("4.56")},
	} {
		if err := ss.Create(st); err != nil {
			t.Fatalf("create stock: %v", err)
		}
	}
	return ss
}

func newTestUserService(t *testing.T) (*UserService, *store.UserStore) {
	t.Helper()
	us := store.NewUserStore()
	return NewUserService(us, newTestCatalog(t)), us
}

func TestRegister_Success(t *testing.T) {
	svc, us := newTestUserService(t)

	user, err := svc.Register(RegisterUserRequest{
		UserID:         7,
		InitialBalance: d("250.50"),
		InitialHoldings: []HoldingInput{
			{StockID: 2, Quantity: d("3")},
			{StockID: 1, Quantity: d("10")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("got id %d, want 7", user.ID)
	}
	if !us.Exists(7) {
		t.Fatal("user not stored")
	}

	view, err := svc.GetUser(7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !view.Balance.Equal(d("250.50")) {
		t.Errorf("balance = %s, want 250.50", view.Balance)
	}
	if len(view.Holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(view.Holdings))
	}
	if view.Holdings[0].StockID != 1 || view.Holdings[1].StockID != 2 {
		t.Errorf("holdings not in ascending stock order: %+v", view.Holdings)
	}
}

func TestRegister_ZeroBalanceNoHoldings(t *testing.T) {
	svc, _ := newTestUserService(t)

	if _, err := svc.Register(RegisterUserRequest{UserID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.GetUser(1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !view.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", view.Balance)
	}
	if len(view.Holdings) != 0 {
		t.Errorf("got %d holdings, want 0", len(view.Holdings))
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterUserRequest
		want string
	}{
		{
			name: "non-positive id",
			req:  RegisterUserRequest{UserID: 0},
			want: "user_id must be a positive integer",
		},
		{
			name: "negative balance",
			req:  RegisterUserRequest{UserID: 1, InitialBalance: d("-0.01")},
			want: "initial_balance must be >= 0",
		},
		{
			name: "balance with too many decimal places",
			req:  RegisterUserRequest{UserID: 1, InitialBalance: d("1e-40")},
			want: "initial_balance must have at most 18 decimal places",
		},
		{
			name: "holding with too many integer digits",
			req: RegisterUserRequest{
				UserID:          1,
				InitialHoldings: []HoldingInput{{StockID: 1, Quantity: d("1e25")}},
			},
			want: "holding quantity for stock_id 1 must have at most 20 integer digits",
		},
		{
			name: "unknown stock",
			req: RegisterUserRequest{
				UserID:          1,
				InitialHoldings: []HoldingInput{{StockID: 9, Quantity: d("1")}},
			},
			want: "holding references unknown stock_id 9",
		},
		{
			name: "zero quantity",
			req: RegisterUserRequest{
				UserID:          1,
				InitialHoldings: []HoldingInput{{StockID: 1, Quantity: decimal.Zero}},
			},
			want: "holding quantity must be > 0 for stock_id 1",
		},
		{
			name: "duplicate stock",
			req: RegisterUserRequest{
				UserID: 1,
				InitialHoldings: []HoldingInput{
					{StockID: 1, Quantity: d("1")},
					{StockID: 1, Quantity: d("2")},
				},
			},
			want: "duplicate stock_id in initial_holdings: 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, us := newTestUserService(t)

			_, err := svc.Register(tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != tt.want {
				t.Errorf("got message %q, want %q", ve.Message, tt.want)
			}
			if len(us.List()) != 0 {
				t.Error("rejected registration stored a user")
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestUserService(t)

	if _, err := svc.Register(RegisterUserRequest{UserID: 1, InitialBalance: d("10")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Register(RegisterUserRequest{UserID: 1, InitialBalance: d("99")})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	view, err := svc.GetUser(1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !view.Balance.Equal(d("10")) {
		t.Errorf("duplicate registration overwrote balance: %s", view.Balance)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetUser(42)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected error to match ErrNotFound, got %v", err)
	}
}

func TestGetUser_InvalidID(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetUser(-1)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStockService(t *testing.T) {
	svc := NewStockService(newTestCatalog(t))

	stock, err := svc.GetStock(2)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if stock.Name != "B" || !stock.Price.Equal(d("4.56")) {
		t.Errorf("got %+v, want B @ 4.56", stock)
	}

	if _, err := svc.GetStock(3); !errors.Is(err, domain.ErrStockNotFound) {
		t.Errorf("expected ErrStockNotFound, got %v", err)
	}

	var ve *domain.ValidationError
	if _, err := svc.GetStock(0); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for id 0, got %v", err)
	}

	list := svc.ListStocks()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("ListStocks = %v, want stocks 1 and 2 in order", list)
	}
}
