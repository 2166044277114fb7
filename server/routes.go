package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthenticate, ChainMiddleware(s.Authenticate(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteValidateSession, ChainMiddleware(s.ValidateSession(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogoutClient, ChainMiddleware(s.LogoutClient(), s.APIMiddleware()...))

	// DASHBOARD
	s.RegisterRouteHandler("POST "+RouteGetDashboardMetrics, ChainMiddleware(s.GetDashboardMetrics(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteUpsertMetric, ChainMiddleware(s.UpsertMetric(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSeedDemoData, ChainMiddleware(s.SeedDemoData(), s.APIMiddleware()...))

	// GOOGLE
	s.RegisterRouteHandler("POST "+RouteGenerateGoogleAuthURL, ChainMiddleware(s.GenerateGoogleAuthURL(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteStoreGoogleTokens, ChainMiddleware(s.StoreGoogleTokens(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteUpdateGoogleTokens, ChainMiddleware(s.UpdateGoogleTokens(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteDisconnectGoogle, ChainMiddleware(s.DisconnectGoogle(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFetchGoogleData, ChainMiddleware(s.FetchGoogleData(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteGoogleCallback, s.GoogleCallbackHandler())

	// OPERATIONS
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.telemetry.Handler())
}
