package category

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory catalog used for local development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []Category
}

// NewMemoryStore creates a memory-backed catalog. With no arguments it is
// seeded with the default catalog.
func NewMemoryStore(categories ...Category) *MemoryStore {
	if len(categories) == 0 {
		categories = DefaultCatalog()
	}
	s := &MemoryStore{categories: make([]Category, len(categories))}
	copy(s.categories, categories)
	s.sortLocked()
	return s
}

// List returns a snapshot of the catalog ordered by priority.
func (s *MemoryStore) List(_ context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// Put inserts or replaces a category by value. Last writer wins.
func (s *MemoryStore) Put(cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.categories {
		if existing.Value == cat.Value {
			s.categories[i] = cat
			s.sortLocked()
			return
		}
	}
	s.categories = append(s.categories, cat)
	s.sortLocked()
}

func (s *MemoryStore) sortLocked() {
	sort.SliceStable(s.categories, func(i, j int) bool {
		return s.categories[i].Priority < s.categories[j].Priority
	})
}

// DefaultCatalog is the seed taxonomy for a retail bank statement: expense
// categories first, then income, then fees, in first-match priority order.
func DefaultCatalog() []Category {
	return []Category{
		{
			Value: "food_dining", Name: "Food & Dining", Group: GroupExpense, Priority: 10,
			Description: "Meals, groceries and food delivery",
			Keywords:    []string{"restaurant", "cafe", "eatery", "grocery", "supermarket", "food", "kitchen", "chicken", "pizza", "bakery"},
		},
		{
			Value: "transportation", Name: "Transportation", Group: GroupExpense, Priority: 20,
			Description: "Ride hailing, fuel, public transport and parking",
			Keywords:    []string{"uber", "bolt", "taxi", "fuel", "filling station", "petrol", "bus", "train", "flight", "parking"},
		},
		{
			Value: "utilities", Name: "Utilities & Bills", Group: GroupExpense, Priority: 30,
			Description: "Power, water, internet, TV and phone bills",
			Keywords:    []string{"electricity", "power", "water", "internet", "data", "airtime", "dstv", "gotv", "cable", "bill"},
		},
		{
			Value: "shopping", Name: "Shopping", Group: GroupExpense, Priority: 40,
			Description: "Retail and online purchases",
			Keywords:    []string{"store", "shop", "mall", "amazon", "jumia", "konga", "market", "boutique"},
		},
		{
			Value: "entertainment", Name: "Entertainment", Group: GroupExpense, Priority: 50,
			Description: "Streaming, cinema, games and events",
			Keywords:    []string{"netflix", "spotify", "cinema", "movie", "game", "event", "ticket", "club"},
		},
		{
			Value: "health", Name: "Health", Group: GroupExpense, Priority: 60,
			Description: "Pharmacies, hospitals and insurance",
			Keywords:    []string{"pharmacy", "hospital", "clinic", "doctor", "medical", "health", "insurance"},
		},
		{
			Value: "housing", Name: "Housing & Rent", Group: GroupExpense, Priority: 70,
			Description: "Rent, mortgage and home maintenance",
			Keywords:    []string{"rent", "landlord", "mortgage", "estate", "apartment"},
		},
		{
			Value: "education", Name: "Education", Group: GroupExpense, Priority: 80,
			Description: "Tuition, courses and learning materials",
			Keywords:    []string{"school", "tuition", "course", "university", "college", "books"},
		},
		{
			Value: "transfer_out", Name: "Outgoing Transfer", Group: GroupExpense, Priority: 90,
			Description: "Transfers to other people or accounts",
			Keywords:    []string{"transfer to", "trf to", "sent to", "nip transfer"},
		},
		{
			Value: "other_expense", Name: "Other Expense", Group: GroupExpense, Priority: 100,
			Description: "Debits that fit no other expense category",
			Keywords:    []string{},
		},

		{
			Value: "salary", Name: "Salary", Group: GroupIncome, Priority: 110,
			Description: "Employment income",
			Keywords:    []string{"salary", "payroll", "wages", "sal pmt"},
		},
		{
			Value: "business_income", Name: "Business Income", Group: GroupIncome, Priority: 120,
			Description: "Sales and client payments",
			Keywords:    []string{"invoice", "payment received", "sales", "pos settlement"},
		},
		{
			Value: "transfer_in", Name: "Incoming Transfer", Group: GroupIncome, Priority: 130,
			Description: "Transfers received from other people or accounts",
			Keywords:    []string{"transfer from", "trf from", "received from", "inward"},
		},
		{
			Value: "interest_income", Name: "Interest", Group: GroupIncome, Priority: 140,
			Description: "Interest credited by the bank",
			Keywords:    []string{"interest"},
		},

		{
			Value: "bank_charges", Name: "Bank Charges", Group: GroupFee, Priority: 150,
			Description: "Account maintenance, card, SMS and transfer charges",
			Keywords:    []string{"sms charge", "sms alert", "maintenance", "card fee", "stamp duty", "vat", "commission", "charge", "levy", "fee"},
		},
	}
}
