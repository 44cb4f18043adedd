// internal/handlers/routes.go
package handlers

import "net/http"

// APIPrefix is the path prefix of every versioned endpoint.
const APIPrefix = "/api/v1"

// Routes bundles the handlers served by the API. Health may be nil.
type Routes struct {
	Health    *HealthHandler
	Inventory *InventoryHandler
	Requests  *RequestHandler
	Export    *ExportHandler
	Dashboard *DashboardHandler
}

// Register mounts every route on mux using method-specific patterns.
func (rt Routes) Register(mux *http.ServeMux) {
	apiV1 := APIPrefix

	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", rt.Health.Health)
	}

	// Inventory
	mux.HandleFunc("GET "+apiV1+"/inventory", rt.Inventory.ListInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/export", rt.Export.ExportAvailability)
	mux.HandleFunc("GET "+apiV1+"/inventory/{item}", rt.Inventory.GetItem)
	mux.HandleFunc("POST "+apiV1+"/inventory", rt.Inventory.CreateItem)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{item}", rt.Inventory.UpsertItem)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{item}", rt.Inventory.DeleteItem)

	// Requests
	mux.HandleFunc("POST "+apiV1+"/requests", rt.Requests.CreateRequest)
	mux.HandleFunc("GET "+apiV1+"/requests", rt.Requests.ListRequests)
	mux.HandleFunc("GET "+apiV1+"/requests/{id}", rt.Requests.GetRequest)
	mux.HandleFunc("POST "+apiV1+"/requests/{id}/approve", rt.Requests.ApproveRequest)
	mux.HandleFunc("PATCH "+apiV1+"/requests/{id}/return", rt.Requests.ReturnItems)
	mux.HandleFunc("PATCH "+apiV1+"/requests/{id}/return/remaining", rt.Requests.ReturnRemaining)
	mux.HandleFunc("PATCH "+apiV1+"/requests/{id}/return/confirm", rt.Requests.ConfirmReturn)
	mux.HandleFunc("POST "+apiV1+"/requests/{id}/cancel", rt.Requests.CancelRequest)
	mux.HandleFunc("POST "+apiV1+"/requests/{id}/messages", rt.Requests.PostMessage)

	// Dashboard
	mux.HandleFunc("GET "+apiV1+"/dashboard", rt.Dashboard.GetDashboard)
}
