package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/JMan003/banking-system-project/internal/test"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/JMan003/banking-system-project/pkg/tokenpkg"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if err := web.RegisterValidators(); err != nil {
		fmt.Fprintf(os.Stderr, "web.RegisterValidators returned error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return "is decimal " + m.want.String() }

func decEq(s string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(s)}
}

func newServer(service Service, sessions Sessions, tokenMaker tokenpkg.Maker) *gin.Engine {
	h := NewHandler(service, sessions)

	server := gin.New()
	auth := server.Group("/", middleware.AuthMiddleware(tokenMaker, nil))

	customer := auth.Group("/", middleware.RequireRole(tokenpkg.RoleCustomer))
	customer.GET("/accounts/me", h.Me)
	customer.POST("/accounts/me/deposit", h.Deposit)
	customer.POST("/accounts/me/withdraw", h.Withdraw)
	customer.POST("/transfers", h.Transfer)
	customer.GET("/accounts/me/transactions", h.History)
	customer.PUT("/accounts/me/pin", h.ChangePIN)

	staff := auth.Group("/", middleware.RequireRole(tokenpkg.RoleEmployee, tokenpkg.RoleManager, tokenpkg.RoleAdmin))
	staff.POST("/customers", h.CreateCustomer)
	staff.PUT("/customers/:id/owner", h.UpdateOwner)
	staff.PUT("/customers/:id/status", h.SetStatus)
	staff.GET("/customers/:id/transactions", h.CustomerHistory)

	return server
}

type testCase struct {
	name           string
	method         string
	path           string
	body           any
	subject        *tokenpkg.Subject
	buildStubs     func(s *MockService, ss *MockSessions)
	wantStatusCode int
	wantError      string
	checkData      func(t *testing.T, raw json.RawMessage)
}

func runCases(t *testing.T, testCases []testCase) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker returned error: %v", err)
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			sessions := NewMockSessions(ctrl)

			if tc.buildStubs != nil {
				tc.buildStubs(service, sessions)
			}

			server := newServer(service, sessions, tokenMaker)

			var body []byte
			if tc.body != nil {
				b, err := json.Marshal(tc.body)
				if err != nil {
					t.Fatalf("Encoding request body error: %v", err)
				}

				body = b
			}

			req, err := http.NewRequest(tc.method, tc.path, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if tc.subject != nil {
				if err := middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, *tc.subject, time.Minute); err != nil {
					t.Fatalf("middleware.AddAuthorization returned error: %v", err)
				}
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if recorder.Code == http.StatusNoContent {
				return
			}

			var res struct {
				Data  json.RawMessage `json:"data"`
				Error string          `json:"error"`
			}
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
			}

			if tc.checkData != nil {
				tc.checkData(t, res.Data)
			}
		})
	}
}

func checkAccount(want domain.Account) func(t *testing.T, raw json.RawMessage) {
	return func(t *testing.T, raw json.RawMessage) {
		var got accountData
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("Decoding account error: %v", err)
		}

		if got.Account.ID != want.ID || got.Account.Owner != want.Owner ||
			!got.Account.Balance.Equal(want.Balance) || got.Account.Active != want.Active {
			t.Errorf("account = %+v, want %+v", got.Account, want)
		}
	}
}

func TestCustomerOperations(t *testing.T) {
	account := test.RandomAccount()
	other := test.RandomAccount()
	customer := &tokenpkg.Subject{Role: tokenpkg.RoleCustomer, IdentityID: account.ID}
	employee := &tokenpkg.Subject{Role: tokenpkg.RoleEmployee, IdentityID: randompkg.ID()}
	amountMsg := "Amount must be a positive amount with at most two decimal places"

	runCases(t, []testCase{
		{
			name:    "MeOK",
			method:  http.MethodGet,
			path:    "/accounts/me",
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Balance(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(account),
		},
		{
			name:           "MeNoAuthorization",
			method:         http.MethodGet,
			path:           "/accounts/me",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:           "MeAsEmployee",
			method:         http.MethodGet,
			path:           "/accounts/me",
			subject:        employee,
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrForbidden.Error(),
		},
		{
			name:    "DepositOK",
			method:  http.MethodPost,
			path:    "/accounts/me/deposit",
			body:    gin.H{"amount": "250.00"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Eq(account.ID), decEq("250")).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(account),
		},
		{
			name:           "DepositTooPrecise",
			method:         http.MethodPost,
			path:           "/accounts/me/deposit",
			body:           gin.H{"amount": "1.001"},
			subject:        customer,
			wantStatusCode: http.StatusBadRequest,
			wantError:      amountMsg,
		},
		{
			name:           "DepositNegative",
			method:         http.MethodPost,
			path:           "/accounts/me/deposit",
			body:           gin.H{"amount": "-10"},
			subject:        customer,
			wantStatusCode: http.StatusBadRequest,
			wantError:      amountMsg,
		},
		{
			name:    "DepositInactive",
			method:  http.MethodPost,
			path:    "/accounts/me/deposit",
			body:    gin.H{"amount": "5"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Eq(account.ID), decEq("5")).
					Times(1).Return(domain.Account{}, domain.ErrInactiveAccount)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrInactiveAccount.Error(),
		},
		{
			name:    "WithdrawInsufficientFunds",
			method:  http.MethodPost,
			path:    "/accounts/me/withdraw",
			body:    gin.H{"amount": "999999"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Eq(account.ID), decEq("999999")).
					Times(1).Return(domain.Account{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name:    "WithdrawLockFailure",
			method:  http.MethodPost,
			path:    "/accounts/me/withdraw",
			body:    gin.H{"amount": "1"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).Return(domain.Account{}, errorspkg.ErrLock)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      errorspkg.ErrLock.Error(),
		},
		{
			name:    "TransferOK",
			method:  http.MethodPost,
			path:    "/transfers",
			body:    gin.H{"to_account_id": other.ID, "amount": "100.50"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(other.ID), decEq("100.50")).
					Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(account),
		},
		{
			name:           "TransferMissingDestination",
			method:         http.MethodPost,
			path:           "/transfers",
			body:           gin.H{"amount": "1"},
			subject:        customer,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ToAccountID field is required",
		},
		{
			name:    "TransferDestinationNotFound",
			method:  http.MethodPost,
			path:    "/transfers",
			body:    gin.H{"to_account_id": other.ID, "amount": "1"},
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(other.ID), decEq("1")).
					Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:    "HistoryOK",
			method:  http.MethodGet,
			path:    "/accounts/me/transactions?limit=3",
			subject: customer,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().History(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(3)).Times(1).Return([]domain.Entry{
					{AccountID: account.ID, Description: "DEPOSIT +5.00", Balance: decimal.RequireFromString("5")},
					{AccountID: account.ID, Description: "WITHDRAWAL -1.00", Balance: decimal.RequireFromString("4")},
				}, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(t *testing.T, raw json.RawMessage) {
				var got transactionsData
				if err := json.Unmarshal(raw, &got); err != nil {
					t.Fatalf("Decoding transactions error: %v", err)
				}

				if len(got.Transactions) != 2 || got.Transactions[1].Description != "WITHDRAWAL -1.00" {
					t.Errorf("transactions = %+v", got.Transactions)
				}
			},
		},
		{
			name:           "HistoryBadLimit",
			method:         http.MethodGet,
			path:           "/accounts/me/transactions?limit=1000",
			subject:        customer,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Limit must be at most 100",
		},
		{
			name:    "ChangePINEndsSession",
			method:  http.MethodPut,
			path:    "/accounts/me/pin",
			body:    gin.H{"pin": "9876"},
			subject: customer,
			buildStubs: func(s *MockService, ss *MockSessions) {
				gomock.InOrder(
					s.EXPECT().ChangePIN(gomock.Any(), gomock.Eq(account.ID), gomock.Eq("9876")).Times(1).Return(nil),
					ss.EXPECT().Logout(gomock.Any(), gomock.Any()).Times(1).Return(nil),
				)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:    "ChangePINFailureKeepsSession",
			method:  http.MethodPut,
			path:    "/accounts/me/pin",
			body:    gin.H{"pin": "9876"},
			subject: customer,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().ChangePIN(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(errorspkg.ErrIO)
				ss.EXPECT().Logout(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	})
}

func TestStaffOperations(t *testing.T) {
	account := test.RandomAccount()
	employee := &tokenpkg.Subject{Role: tokenpkg.RoleEmployee, IdentityID: randompkg.ID()}
	manager := &tokenpkg.Subject{Role: tokenpkg.RoleManager, IdentityID: randompkg.ID()}
	customer := &tokenpkg.Subject{Role: tokenpkg.RoleCustomer, IdentityID: account.ID}
	path := func(suffix string) string { return fmt.Sprintf("/customers/%d%s", account.ID, suffix) }

	inactive := account
	inactive.Active = false
	customerLock := sessionlock.Identity{Kind: domain.KindCustomer, ID: account.ID}

	runCases(t, []testCase{
		{
			name:   "CreateCustomerOK",
			method: http.MethodPost,
			path:   "/customers",
			body: gin.H{
				"id": account.ID, "owner": account.Owner, "pin": "1234", "opening_balance": account.Balance.String(),
			},
			subject: employee,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(account.Owner), gomock.Eq("1234"), decEq(account.Balance.String())).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
			checkData:      checkAccount(account),
		},
		{
			name:    "CreateCustomerNoOpeningBalance",
			method:  http.MethodPost,
			path:    "/customers",
			body:    gin.H{"id": account.ID, "owner": account.Owner, "pin": "1234"},
			subject: employee,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(account.Owner), gomock.Eq("1234"), decEq("0")).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:    "CreateCustomerDuplicate",
			method:  http.MethodPost,
			path:    "/customers",
			body:    gin.H{"id": account.ID, "owner": account.Owner, "pin": "1234"},
			subject: employee,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().CreateCustomer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrAccountAlreadyExists.Error(),
		},
		{
			name:           "CreateCustomerShortPIN",
			method:         http.MethodPost,
			path:           "/customers",
			body:           gin.H{"id": account.ID, "owner": account.Owner, "pin": "12"},
			subject:        employee,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "PIN must be at least 4",
		},
		{
			name:           "CreateCustomerAsCustomer",
			method:         http.MethodPost,
			path:           "/customers",
			body:           gin.H{"id": account.ID, "owner": account.Owner, "pin": "1234"},
			subject:        customer,
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrForbidden.Error(),
		},
		{
			name:    "UpdateOwnerOK",
			method:  http.MethodPut,
			path:    path("/owner"),
			body:    gin.H{"owner": "New Owner"},
			subject: employee,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().UpdateOwner(gomock.Any(), gomock.Eq(account.ID), gomock.Eq("New Owner")).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(account),
		},
		{
			name:           "UpdateOwnerBadID",
			method:         http.MethodPut,
			path:           "/customers/0/owner",
			body:           gin.H{"owner": "New Owner"},
			subject:        employee,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID field is required",
		},
		{
			name:    "DeactivateOK",
			method:  http.MethodPut,
			path:    path("/status"),
			body:    gin.H{"active": false},
			subject: manager,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().SetActive(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(false)).Times(1).Return(inactive, nil)
				ss.EXPECT().ForceRelease(gomock.Any(), gomock.Eq(customerLock)).Times(1).Return(nil)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(inactive),
		},
		{
			name:    "ActivateKeepsSessions",
			method:  http.MethodPut,
			path:    path("/status"),
			body:    gin.H{"active": true},
			subject: manager,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().SetActive(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(true)).Times(1).Return(account, nil)
				ss.EXPECT().ForceRelease(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusOK,
			checkData:      checkAccount(account),
		},
		{
			name:           "StatusMissing",
			method:         http.MethodPut,
			path:           path("/status"),
			body:           gin.H{},
			subject:        manager,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Active field is required",
		},
		{
			name:    "CustomerHistoryNotFound",
			method:  http.MethodGet,
			path:    path("/transactions"),
			subject: employee,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().History(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(0)).
					Times(1).Return(nil, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
	})
}
