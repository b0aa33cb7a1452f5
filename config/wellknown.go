package config

import (
	"os"
	"strconv"
)

// applyWellKnownEnv applies the unprefixed environment variables the
// deployment has always used (.env files written for the original
// stack keep working unchanged). These run after the prefixed pass
// and win over YAML values.
func applyWellKnownEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}

	setString("MONGODB_URI", &cfg.Mongo.URI)

	setString("QDRANT_URL", &cfg.Qdrant.URL)
	setString("QDRANT_API_KEY", &cfg.Qdrant.APIKey)
	setString("QDRANT_HOST", &cfg.Qdrant.Host)
	setInt("QDRANT_PORT", &cfg.Qdrant.Port)

	setString("OPENAI_API_KEY", &cfg.LLM.OpenAIAPIKey)
	setString("MISTRAL_API_KEY", &cfg.LLM.MistralAPIKey)

	setString("FACEBOOK_PAGE_ID", &cfg.Social.Facebook.PageID)
	setString("FACEBOOK_ACCESS_TOKEN", &cfg.Social.Facebook.AccessToken)
	setString("FACEBOOK_PAGE_ACCESS_TOKEN", &cfg.Social.Facebook.PageAccessToken)

	setString("TWITTER_API_KEY", &cfg.Social.Twitter.APIKey)
	setString("TWITTER_API_SECRET", &cfg.Social.Twitter.APISecret)
	setString("TWITTER_ACCESS_TOKEN", &cfg.Social.Twitter.AccessToken)
	setString("TWITTER_ACCESS_TOKEN_SECRET", &cfg.Social.Twitter.AccessTokenSecret)
	setString("TWITTER_BEARER_TOKEN", &cfg.Social.Twitter.BearerToken)

	setString("LINKEDIN_CLIENT_ID", &cfg.Social.LinkedIn.ClientID)
	setString("LINKEDIN_ACCESS_TOKEN", &cfg.Social.LinkedIn.AccessToken)
	setString("LINKEDIN_PERSON_URN", &cfg.Social.LinkedIn.PersonURN)

	setString("INSTAGRAM_ACCESS_TOKEN", &cfg.Social.Instagram.AccessToken)

	setString("FLASK_SECRET_KEY", &cfg.Server.SecretKey)
	setInt("FLASK_PORT", &cfg.Server.HTTPPort)

	setString("MCP_HOST", &cfg.MCP.Host)
	setInt("MCP_PORT", &cfg.MCP.Port)

	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
}
