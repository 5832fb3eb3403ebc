package staffdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/JMan003/banking-system-project/pkg/tokenpkg"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newServer(service Service, sessions Sessions, tokenMaker tokenpkg.Maker) *gin.Engine {
	h := NewHandler(service, sessions)

	server := gin.New()
	auth := server.Group("/", middleware.AuthMiddleware(tokenMaker, nil))

	admin := auth.Group("/", middleware.RequireRole(tokenpkg.RoleAdmin))
	admin.POST("/staff", h.Create)
	admin.PUT("/staff/:id/role", h.UpdateRole)
	admin.PUT("/staff/:id/name", h.UpdateName)
	admin.PUT("/admin/password", h.ChangeAdminPassword)

	auth.PUT("/staff/me/password", middleware.RequireRole(tokenpkg.RoleEmployee, tokenpkg.RoleManager), h.ChangePassword)

	return server
}

func TestStaffHandlers(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	member := domain.Staff{
		ID:        randompkg.ID(),
		FirstName: randompkg.String(6),
		LastName:  randompkg.String(8),
		Password:  "hashed",
		Role:      domain.RoleEmployee,
	}
	promoted := member
	promoted.Role = domain.RoleManager

	admin := &tokenpkg.Subject{Role: tokenpkg.RoleAdmin}
	employee := &tokenpkg.Subject{Role: tokenpkg.RoleEmployee, IdentityID: member.ID}
	staffPath := func(suffix string) string { return fmt.Sprintf("/staff/%d%s", member.ID, suffix) }
	memberLock := sessionlock.Identity{Kind: domain.KindStaff, ID: member.ID}

	testCases := []struct {
		name           string
		method         string
		path           string
		body           any
		subject        *tokenpkg.Subject
		buildStubs     func(s *MockService, ss *MockSessions)
		wantStatusCode int
		wantError      string
		wantStaff      *domain.StaffResponse
	}{
		{
			name:   "CreateOK",
			method: http.MethodPost,
			path:   "/staff",
			body: gin.H{
				"id": member.ID, "first_name": member.FirstName, "last_name": member.LastName,
				"password": "secret1", "role": "employee",
			},
			subject: admin,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().CreateStaff(gomock.Any(), gomock.Eq(domain.CreateStaffParams{
					ID:        member.ID,
					FirstName: member.FirstName,
					LastName:  member.LastName,
					Password:  "secret1",
					Role:      domain.RoleEmployee,
				})).Times(1).Return(member, nil)
			},
			wantStatusCode: http.StatusCreated,
			wantStaff:      &domain.StaffResponse{ID: member.ID, FirstName: member.FirstName, LastName: member.LastName, Role: "employee"},
		},
		{
			name:   "CreateDuplicate",
			method: http.MethodPost,
			path:   "/staff",
			body: gin.H{
				"id": member.ID, "first_name": member.FirstName, "last_name": member.LastName,
				"password": "secret1", "role": "manager",
			},
			subject: admin,
			buildStubs: func(s *MockService, _ *MockSessions) {
				s.EXPECT().CreateStaff(gomock.Any(), gomock.Any()).Times(1).Return(domain.Staff{}, domain.ErrStaffAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrStaffAlreadyExists.Error(),
		},
		{
			name:   "CreateAsEmployee",
			method: http.MethodPost,
			path:   "/staff",
			body: gin.H{
				"id": member.ID, "first_name": member.FirstName, "last_name": member.LastName,
				"password": "secret1", "role": "manager",
			},
			subject:        employee,
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrForbidden.Error(),
		},
		{
			name:           "CreateShortPassword",
			method:         http.MethodPost,
			path:           "/staff",
			body:           gin.H{"id": member.ID, "first_name": "a", "last_name": "b", "password": "x", "role": "manager"},
			subject:        admin,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Password must be at least 6",
		},
		{
			name:    "UpdateRoleOK",
			method:  http.MethodPut,
			path:    staffPath("/role"),
			body:    gin.H{"role": "manager"},
			subject: admin,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().UpdateRole(gomock.Any(), gomock.Eq(member.ID), gomock.Eq(domain.RoleManager)).Times(1).Return(promoted, nil)
				ss.EXPECT().ForceRelease(gomock.Any(), gomock.Eq(memberLock)).Times(1).Return(nil)
			},
			wantStatusCode: http.StatusOK,
			wantStaff:      &domain.StaffResponse{ID: member.ID, FirstName: member.FirstName, LastName: member.LastName, Role: "manager"},
		},
		{
			name:    "UpdateRoleReleaseFails",
			method:  http.MethodPut,
			path:    staffPath("/role"),
			body:    gin.H{"role": "manager"},
			subject: admin,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().UpdateRole(gomock.Any(), gomock.Eq(member.ID), gomock.Eq(domain.RoleManager)).Times(1).Return(promoted, nil)
				ss.EXPECT().ForceRelease(gomock.Any(), gomock.Eq(memberLock)).Times(1).Return(errors.New("redis down"))
			},
			wantStatusCode: http.StatusOK,
			wantStaff:      &domain.StaffResponse{ID: member.ID, FirstName: member.FirstName, LastName: member.LastName, Role: "manager"},
		},
		{
			name:    "UpdateRoleNotFound",
			method:  http.MethodPut,
			path:    staffPath("/role"),
			body:    gin.H{"role": "manager"},
			subject: admin,
			buildStubs: func(s *MockService, ss *MockSessions) {
				s.EXPECT().UpdateRole(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(domain.Staff{}, domain.ErrStaffNotFound)
				ss.EXPECT().ForceRelease(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrStaffNotFound.Error(),
		},
		{
			name:    "UpdateNameOK",
			method:  http.MethodPut,
			path:    staffPath("/name"),
			body:    gin.H{"first_name": "Ada", "last_name": "Lovelace"},
			subject: admin,
			buildStubs: func(s *MockService, _ *MockSessions) {
				renamed := member
				renamed.FirstName, renamed.LastName = "Ada", "Lovelace"
				s.EXPECT().UpdateName(gomock.Any(), gomock.Eq(member.ID), gomock.Eq("Ada"), gomock.Eq("Lovelace")).Times(1).Return(renamed, nil)
			},
			wantStatusCode: http.StatusOK,
			wantStaff:      &domain.StaffResponse{ID: member.ID, FirstName: "Ada", LastName: "Lovelace", Role: "employee"},
		},
		{
			name:    "ChangePasswordEndsSession",
			method:  http.MethodPut,
			path:    "/staff/me/password",
			body:    gin.H{"password": "newsecret"},
			subject: employee,
			buildStubs: func(s *MockService, ss *MockSessions) {
				gomock.InOrder(
					s.EXPECT().ChangePassword(gomock.Any(), gomock.Eq(member.ID), gomock.Eq("newsecret")).Times(1).Return(nil),
					ss.EXPECT().Logout(gomock.Any(), gomock.Any()).Times(1).Return(nil),
				)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:    "ChangeAdminPasswordEndsSession",
			method:  http.MethodPut,
			path:    "/admin/password",
			body:    gin.H{"password": "newroot"},
			subject: admin,
			buildStubs: func(s *MockService, ss *MockSessions) {
				gomock.InOrder(
					s.EXPECT().ChangeAdminPassword(gomock.Any(), gomock.Eq("newroot")).Times(1).Return(nil),
					ss.EXPECT().Logout(gomock.Any(), gomock.Any()).Times(1).Return(nil),
				)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:    "ChangeAdminPasswordEmpty",
			method:  http.MethodPut,
			path:    "/admin/password",
			body:    gin.H{},
			subject: admin,
			buildStubs: func(_ *MockService, ss *MockSessions) {
				ss.EXPECT().Logout(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Password field is required",
		},
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

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(tc.method, tc.path, bytes.NewReader(body))
			require.NoError(t, err)
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, *tc.subject, time.Minute))

			recorder := httptest.NewRecorder()
			newServer(service, sessions, tokenMaker).ServeHTTP(recorder, req)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if recorder.Code == http.StatusNoContent {
				return
			}

			var res struct {
				Data  staffData `json:"data"`
				Error string    `json:"error"`
			}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			require.Equal(t, tc.wantError, res.Error)

			if tc.wantStaff != nil {
				if diff := cmp.Diff(*tc.wantStaff, res.Data.Staff); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
