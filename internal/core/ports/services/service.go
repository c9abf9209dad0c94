package services

// ServiceContainer holds instances of all the application services.
// Handlers receive it from main.
type ServiceContainer struct {
	Credentials CredentialVerifierSvc
	Sessions    SessionSvcFacade
	User        UserSvcFacade
	RateCache   RateCacheSvc
	Rates       RateSvcFacade
}
