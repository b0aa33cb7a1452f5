// Package config loads and validates the service configuration.
//
// Precedence: built-in defaults, then the YAML file, then
// SOCIALMEDIA_-prefixed environment variables, then the well-known
// unprefixed variables (MONGODB_URI, OPENAI_API_KEY, FACEBOOK_PAGE_ID,
// and the rest of the deployment's .env surface).
package config
