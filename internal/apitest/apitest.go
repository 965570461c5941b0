// Package apitest runs an in-memory TW Accounting API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// Password is the password of every seeded user.
const Password = "secret"

// Server is a fake API. Exported fields may be changed between requests
// while holding Lock/Unlock.
type Server struct {
	*httptest.Server

	sync.Mutex
	Users          []domain.User
	Accounts       []domain.Account
	Transactions   []domain.Transaction
	Entries        map[int][]domain.TransactionEntry
	Projects       []domain.Project
	Categories     []domain.Category
	Counterparties []domain.Counterparty
	Rates          domain.CryptoRates

	tokens map[string]int // token -> user id
	nextID int
	hits   map[string]int
}

// New starts a fake API seeded with one user (alice@example.com) and a small
// ledger. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tokens:  map[string]int{},
		hits:    map[string]int{},
		Entries: map[int][]domain.TransactionEntry{},
		nextID:  100,
	}
	s.seed()
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) seed() {
	now := time.Now().UTC()
	at := func(days int) domain.Timestamp { return domain.NewTimestamp(now.AddDate(0, 0, -days)) }
	s.Users = []domain.User{{ID: 1, Email: "alice@example.com", Name: "Alice", IsActive: true, CreatedAt: at(400)}}
	s.Accounts = []domain.Account{
		{ID: 1, Name: "Main bank", Type: domain.AccountBank, Currency: "USD", Balance: decimal.NewFromInt(100), IsActive: true, CreatedAt: at(300)},
		{ID: 2, Name: "Tron wallet", Type: domain.AccountCrypto, Currency: "USDT", Balance: decimal.NewFromInt(-30), IsActive: true, CreatedAt: at(200)},
	}
	s.Transactions = []domain.Transaction{
		{ID: 1, Description: "Invoice #12", Type: domain.TransactionIncome, Status: domain.StatusCompleted, Amount: decimal.NewFromInt(50), Date: at(0), CategoryID: intp(1), ProjectID: intp(1), CreatedAt: at(0)},
		{ID: 2, Description: "Hosting", Type: domain.TransactionExpense, Status: domain.StatusCompleted, Amount: decimal.NewFromInt(20), Date: at(40), CategoryID: intp(2), CreatedAt: at(40)},
	}
	s.Entries[1] = []domain.TransactionEntry{
		{ID: 1, AccountID: 1, AccountName: "Main bank", Amount: decimal.NewFromInt(50), Direction: domain.Debit},
		{ID: 2, AccountID: 3, AccountName: "Revenue", Amount: decimal.NewFromInt(50), Direction: domain.Credit},
	}
	s.Projects = []domain.Project{{ID: 1, Name: "Website", Status: domain.ProjectActive, IsActive: true, CreatedAt: at(100)}}
	s.Categories = []domain.Category{
		{ID: 1, Name: "Sales", Type: domain.CategoryIncome, IsActive: true, CreatedAt: at(100)},
		{ID: 2, Name: "Infrastructure", Type: domain.CategoryExpense, IsActive: true, CreatedAt: at(100)},
	}
	s.Counterparties = []domain.Counterparty{{ID: 1, Name: "ACME", Type: domain.CounterpartyCustomer, IsActive: true, CreatedAt: at(100)}}
	s.Rates = domain.CryptoRates{
		Rates:        domain.Rates{TRX: decimal.RequireFromString("0.0812345"), USDT: decimal.RequireFromString("1.0004")},
		BaseCurrency: "USD",
		UpdatedAt:    domain.NewTimestamp(now),
	}
}

func intp(i int) *int { return &i }

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.Lock()
	defer s.Unlock()
	return s.hits[path]
}

// IssueToken returns a valid token for the seeded user.
func (s *Server) IssueToken() string {
	s.Lock()
	defer s.Unlock()
	return s.issueLocked(1)
}

// RevokeAll invalidates every token so the next authenticated request gets 401.
func (s *Server) RevokeAll() {
	s.Lock()
	defer s.Unlock()
	s.tokens = map[string]int{}
}

func (s *Server) issueLocked(userID int) string {
	s.nextID++
	tok := "tok-" + strconv.Itoa(s.nextID)
	s.tokens[tok] = userID
	return tok
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)

	r.HandleFunc("/api/auth/login", s.login).Methods("POST")
	r.HandleFunc("/api/auth/register", s.register).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/auth/me", s.getMe).Methods("GET")
	api.HandleFunc("/auth/me", s.updateMe).Methods("PATCH")

	api.HandleFunc("/accounts/", s.listAccounts).Methods("GET")
	api.HandleFunc("/accounts/", s.createAccount).Methods("POST")
	api.HandleFunc("/accounts/{id:[0-9]+}", s.getAccount).Methods("GET")
	api.HandleFunc("/accounts/{id:[0-9]+}", s.deleteAccount).Methods("DELETE")

	api.HandleFunc("/transactions/", s.listTransactions).Methods("GET")
	api.HandleFunc("/transactions/accounts/{id:[0-9]+}/balance", s.accountBalance).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}", s.getTransaction).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}/entries", s.transactionEntries).Methods("GET")
	api.HandleFunc("/transactions/{kind:income|expense|transfer}", s.createTransaction).Methods("POST")

	api.HandleFunc("/projects/", list(s, func() []domain.Project { return s.Projects })).Methods("GET")
	api.HandleFunc("/categories/", list(s, func() []domain.Category { return s.Categories })).Methods("GET")
	api.HandleFunc("/counterparties/", list(s, func() []domain.Counterparty { return s.Counterparties })).Methods("GET")

	api.HandleFunc("/crypto/rates", s.rates).Methods("GET")
	api.HandleFunc("/crypto/supported-currencies", s.currencies).Methods("GET")
	api.HandleFunc("/crypto/wallet-validation/{address}", s.validateWallet).Methods("GET")
	api.HandleFunc("/crypto/validate-tron", s.validateTron).Methods("POST")
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		s.hits[r.URL.Path]++
		s.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.Lock()
		_, ok := s.tokens[tok]
		s.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (s *Server) userFor(r *http.Request) *domain.User {
	uid := s.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	for i := range s.Users {
		if s.Users[i].ID == uid {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	s.Lock()
	defer s.Unlock()
	for _, u := range s.Users {
		if u.Email == r.PostForm.Get("username") && r.PostForm.Get("password") == Password {
			writeJSON(w, http.StatusOK, domain.AuthToken{AccessToken: s.issueLocked(u.ID), TokenType: "bearer"})
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.Lock()
	defer s.Unlock()
	if slices.ContainsFunc(s.Users, func(u domain.User) bool { return u.Email == req.Email }) {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.nextID++
	u := domain.User{ID: s.nextID, Email: req.Email, Name: req.Name, IsActive: true, CreatedAt: domain.NewTimestamp(time.Now().UTC())}
	s.Users = append(s.Users, u)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	u := s.userFor(r)
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.Lock()
	defer s.Unlock()
	u := s.userFor(r)
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	writeJSON(w, http.StatusOK, u)
}

func list[T any](s *Server, get func() []T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.Lock()
		defer s.Unlock()
		items := get()
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	list(s, func() []domain.Account { return s.Accounts })(w, r)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	for _, a := range s.Accounts {
		if a.ID == pathID(r) {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Account not found")
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.AccountCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Type.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid account")
		return
	}
	s.Lock()
	defer s.Unlock()
	s.nextID++
	a := domain.Account{ID: s.nextID, Name: req.Name, Type: req.Type, Currency: req.Currency, Description: req.Description, IsActive: true, CreatedAt: domain.NewTimestamp(time.Now().UTC())}
	s.Accounts = append(s.Accounts, a)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	n := len(s.Accounts)
	s.Accounts = slices.DeleteFunc(s.Accounts, func(a domain.Account) bool { return a.ID == pathID(r) })
	if len(s.Accounts) == n {
		writeDetail(w, http.StatusNotFound, "Account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) accountBalance(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	for _, a := range s.Accounts {
		if a.ID == pathID(r) {
			writeJSON(w, http.StatusOK, domain.AccountBalance{AccountID: a.ID, Balance: a.Balance})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Account not found")
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.Lock()
	defer s.Unlock()
	out := []domain.Transaction{}
	for _, tx := range s.Transactions {
		if t := q.Get("type"); t != "" && string(tx.Type) != t {
			continue
		}
		if p := q.Get("project_id"); p != "" && (tx.ProjectID == nil || strconv.Itoa(*tx.ProjectID) != p) {
			continue
		}
		if c := q.Get("category_id"); c != "" && (tx.CategoryID == nil || strconv.Itoa(*tx.CategoryID) != c) {
			continue
		}
		out = append(out, tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	for _, tx := range s.Transactions {
		if tx.ID == pathID(r) {
			writeJSON(w, http.StatusOK, tx)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Transaction not found")
}

func (s *Server) transactionEntries(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	entries := s.Entries[pathID(r)]
	if entries == nil {
		entries = []domain.TransactionEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Amount.IsPositive() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid transaction")
		return
	}
	s.Lock()
	defer s.Unlock()
	s.nextID++
	now := domain.NewTimestamp(time.Now().UTC())
	tx := domain.Transaction{
		ID:          s.nextID,
		Description: req.Description,
		Type:        domain.TransactionType(mux.Vars(r)["kind"]),
		Status:      domain.StatusCompleted,
		Amount:      req.Amount,
		Date:        now,
		ProjectID:   req.ProjectID,
		CategoryID:  req.CategoryID,
		CreatedAt:   now,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	s.Transactions = append([]domain.Transaction{tx}, s.Transactions...)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) rates(w http.ResponseWriter, _ *http.Request) {
	s.Lock()
	defer s.Unlock()
	writeJSON(w, http.StatusOK, s.Rates)
}

func (s *Server) currencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"currencies": []domain.SupportedCurrency{
		{Code: "TRX", Name: "TRON", Network: "tron", Decimals: 6, Type: "native"},
		{Code: "USDT", Name: "Tether USD", Network: "tron", Decimals: 6, Type: "trc20", ContractAddress: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"},
	}})
}

func (s *Server) validateWallet(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	network := r.URL.Query().Get("network")
	if network != domain.NetworkTron {
		writeJSON(w, http.StatusOK, domain.WalletValidation{Valid: false, Error: fmt.Sprintf("Unsupported network: %s", network)})
		return
	}
	if len(addr) != 34 || !strings.HasPrefix(addr, "T") {
		writeJSON(w, http.StatusOK, domain.WalletValidation{Valid: false, Address: addr, Network: network, Error: "Invalid TRON address format"})
		return
	}
	writeJSON(w, http.StatusOK, domain.WalletValidation{Valid: true, Address: addr, Network: network, Format: "base58"})
}

func (s *Server) validateTron(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.TxHash) != 64 {
		writeJSON(w, http.StatusOK, domain.TronValidation{Valid: false, Error: "Transaction not found"})
		return
	}
	writeJSON(w, http.StatusOK, domain.TronValidation{Valid: true, TransactionInfo: &domain.TronTransactionInfo{Hash: body.TxHash, Success: true}})
}
