package handler

import (
	"console-service/internal/tenantauth"
	"console-service/pkg/openai"
)

// Package-level collaborators, wired once at startup.
var (
	authEngine   *tenantauth.Engine
	appGateway   *tenantauth.Gateway
	openaiClient *openai.Client
)

// Initialize wires the handler package's collaborators.
func Initialize(engine *tenantauth.Engine, gateway *tenantauth.Gateway, client *openai.Client) {
	authEngine = engine
	appGateway = gateway
	openaiClient = client
}
