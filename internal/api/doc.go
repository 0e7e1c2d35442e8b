// Package api provides the Driftline site REST API.
//
//	@title						Driftline Site API
//	@version					1.0
//	@description				Marketing site backend: accounts, profiles, and the HubSpot CRM integration
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api
