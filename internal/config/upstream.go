package config

// Upstream provider selection. One adapter is active per deployment:
// "gateway" (OpenAI-compatible AI gateway) or "gemini" (direct Google
// generative-language API).

func GetUpstreamProvider() string {
	return GetEnvOrDefault("UPSTREAM_PROVIDER", "gateway")
}

func GetGatewayURL() string {
	return GetEnvOrDefault("GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions")
}

func GetGatewayKey() string {
	return GetEnvOrDefault("GATEWAY_API_KEY", "")
}

func GetGatewayModel() string {
	return GetEnvOrDefault("GATEWAY_MODEL", "google/gemini-2.5-flash")
}

func GetGeminiURL() string {
	return GetEnvOrDefault("GEMINI_URL", "https://generativelanguage.googleapis.com")
}

func GetGeminiKey() string {
	return GetEnvOrDefault("GEMINI_API_KEY", "")
}

func GetGeminiModel() string {
	return GetEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
}
