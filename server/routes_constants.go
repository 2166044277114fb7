package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Procedure Routes - Auth
	RouteAuthenticate    = "/api/authenticate"
	RouteValidateSession = "/api/validateSession"
	RouteLogoutClient    = "/api/logoutClient"

	// Procedure Routes - Dashboard
	RouteGetDashboardMetrics = "/api/getDashboardMetrics"
	RouteUpsertMetric        = "/api/upsertMetric"
	RouteSeedDemoData        = "/api/seedDemoData"

	// Procedure Routes - Google
	RouteGenerateGoogleAuthURL = "/api/generateGoogleAuthUrl"
	RouteStoreGoogleTokens     = "/api/storeGoogleTokens"
	RouteUpdateGoogleTokens    = "/api/updateGoogleTokens"
	RouteDisconnectGoogle      = "/api/disconnectGoogle"
	RouteFetchGoogleData       = "/api/fetchGoogleData"

	// OAuth redirect target registered with Google
	RouteGoogleCallback = "/google/callback"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
