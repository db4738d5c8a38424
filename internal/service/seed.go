package service

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
)

// SeedData is the initial catalog and user set loaded at startup.
type SeedData struct {
	Stocks []SeedStock `json:"stocks"`
	Users  []SeedUser  `json:"users"`
}

// SeedStock is a catalog entry in the seed.
type SeedStock struct {
	StockID int64           `json:"stock_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

// SeedUser is a user with starting balance and holdings in the seed.
type SeedUser struct {
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Holdings []SeedHolding   `json:"holdings"`
}

// SeedHolding is a starting holding of a seed user.
type SeedHolding struct {
	StockID  int64           `json:"stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DefaultSeed returns five stocks A..E and user 1 with a balance of 10000
// and 100 units of every stock.
func DefaultSeed() SeedData {
	stocks := []SeedStock{
		{StockID: 1, Name: "A", Price: decimal.RequireFromString("1.23")},
		{StockID: 2, Name: "B", Price: decimal.RequireFromString("4.56")},
		{StockID: 3, Name: "C", Price: decimal.RequireFromString("0.90")},
		{StockID: 4, Name: "D", Price: decimal.RequireFromString("1.03")},
		{StockID: 5, Name: "E", Price: decimal.RequireFromString("3.23")},
	}

	holdings := make([]SeedHolding, len(stocks))
	for i, st := range stocks {
		holdings[i] = SeedHolding{StockID: st.StockID, Quantity: decimal.NewFromInt(100)}
	}

	return SeedData{
		Stocks: stocks,
		Users: []SeedUser{
			{UserID: 1, Balance: decimal.NewFromInt(10000), Holdings: holdings},
		},
	}
}

// LoadSeedFile reads seed data from a JSON file. Unknown fields are rejected.
func LoadSeedFile(path string) (SeedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var data SeedData
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return SeedData{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return data, nil
}

// Seeder populates the catalog and users exactly once per process.
type Seeder struct {
	stocks  *store.StockStore
	userSvc *UserService
	data    SeedData

	once sync.Once
	err  error
}

// NewSeeder creates a Seeder that will load data into the given stores.
func NewSeeder(stocks *store.StockStore, userSvc *UserService, data SeedData) *Seeder {
	return &Seeder{
		stocks:  stocks,
		userSvc: userSvc,
		data:    data,
	}
}

// SeedInitialState loads the seed data. Only the first call does any work;
// later calls return the first call's result.
func (s *Seeder) SeedInitialState() error {
	s.once.Do(func() {
		s.err = s.seed()
	})
	return s.err
}

func (s *Seeder) seed() error {
	for _, st := range s.data.Stocks {
		stock, err := domain.NewStock(domain.StockID(st.StockID), st.Name, st.Price)
		if err != nil {
			return fmt.Errorf("seed stock %d: %w", st.StockID, err)
		}
		if err := s.stocks.Create(stock); err != nil {
			return fmt.Errorf("seed stock %d: %w", st.StockID, err)
		}
	}

	for _, u := range s.data.Users {
		holdings := make([]HoldingInput, len(u.Holdings))
		for i, h := range u.Holdings {
			holdings[i] = HoldingInput{StockID: domain.StockID(h.StockID), Quantity: h.Quantity}
		}
		_, err := s.userSvc.Register(RegisterUserRequest{
			UserID:          domain.UserID(u.UserID),
			InitialBalance:  u.Balance,
			InitialHoldings: holdings,
		})
		if err != nil {
			return fmt.Errorf("seed user %d: %w", u.UserID, err)
		}
	}
	return nil
}
