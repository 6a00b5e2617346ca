package handlers

import (
	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/authz"
	"membership-backend/internal/cache"
	"membership-backend/internal/storage"
)

type Handler struct {
	store    *storage.Storage
	cache    cache.Client
	audit    *audit.Publisher
	resolver *authz.Resolver
}

func New(store *storage.Storage, cacheClient cache.Client, publisher *audit.Publisher) *Handler {
	return &Handler{
		store:    store,
		cache:    cacheClient,
		audit:    publisher,
		resolver: authz.NewResolver(store),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/v1/auth/login", h.Login)

	authMW := auth.NewMiddleware(h.store, h.cache)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Handler)

		r.Post("/v1/auth/logout", h.Logout)
		r.Get("/v1/auth/me", h.Me)
		r.Post("/v1/auth/change-password", h.ChangePassword)

		// Admin-only resources.
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRole(h.store, authz.RoleAdmin))

			r.Route("/v1/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/v1/roles", func(r chi.Router) {
				r.Get("/", h.ListRoles)
				r.Post("/", h.CreateRole)
				r.Get("/{id}", h.GetRole)
				r.Put("/{id}", h.UpdateRole)
				r.Delete("/{id}", h.DeleteRole)
			})

			r.Route("/v1/permissions", func(r chi.Router) {
				r.Get("/", h.ListPermissions)
				r.Post("/", h.CreatePermission)
				r.Get("/{id}", h.GetPermission)
				r.Put("/{id}", h.UpdatePermission)
				r.Delete("/{id}", h.DeletePermission)
			})

			r.Route("/v1/bank-accounts", func(r chi.Router) {
				r.Get("/", h.ListBankAccounts)
				r.Post("/", h.CreateBankAccount)
				r.Get("/{id}", h.GetBankAccount)
				r.Get("/{id}/summary", h.BankAccountSummary)
				r.Put("/{id}", h.UpdateBankAccount)
				r.Delete("/{id}", h.DeleteBankAccount)
			})

			r.Route("/v1/account-types", func(r chi.Router) {
				r.Get("/", h.ListAccountTypes)
				r.Post("/", h.CreateAccountType)
				r.Get("/{id}", h.GetAccountType)
				r.Put("/{id}", h.UpdateAccountType)
				r.Delete("/{id}", h.DeleteAccountType)
			})
		})

		// Admin or staff resources.
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRole(h.store, authz.RoleAdmin, authz.RoleStaff))

			r.Route("/v1/members", func(r chi.Router) {
				r.Get("/", h.ListMembers)
				r.Post("/", h.CreateMember)
				r.Get("/{id}", h.GetMember)
				r.Put("/{id}", h.UpdateMember)
				r.Delete("/{id}", h.DeleteMember)
			})

			r.Route("/v1/accounts", func(r chi.Router) {
				r.Get("/", h.ListAccounts)
				r.Post("/", h.CreateAccount)
				r.Get("/{id}", h.GetAccount)
				r.Put("/{id}", h.UpdateAccount)
				r.Delete("/{id}", h.DeleteAccount)
			})
		})
	})
}

func (h *Handler) recordAudit(actor auth.Principal, action, resource, resourceID string) {
	h.audit.Record(audit.Event{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	})
}
