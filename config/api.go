// =============================================================================
// Runtime configuration admin API
// =============================================================================
// HTTP handlers for inspecting and changing the live configuration:
// read the sanitized config, update registered fields, trigger a file
// reload, and audit the change history. Responses use the shared API
// envelope so the admin surface looks like the rest of the service.
// =============================================================================
package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Arshmittal/Ai-social-media/api"
	"github.com/Arshmittal/Ai-social-media/types"
)

// apiResponse aliases the shared envelope.
type apiResponse = api.Response

// apiError aliases the shared error payload.
type apiError = api.ErrorInfo

// ConfigAPIHandler serves the configuration admin endpoints.
type ConfigAPIHandler struct {
	manager       *HotReloadManager
	allowedOrigin string
}

// configData is the Data payload of configuration API responses.
type configData struct {
	Message         string            `json:"message,omitempty"`
	Config          map[string]any    `json:"config,omitempty"`
	Fields          []FieldInfo       `json:"fields,omitempty"`
	Changes         []ConfigChange    `json:"changes,omitempty"`
	RequiresRestart []string          `json:"requires_restart,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	Version         int               `json:"version,omitempty"`
}

// FieldInfo describes one runtime-updatable field for API consumers.
type FieldInfo struct {
	Path            string `json:"path"`
	Description     string `json:"description"`
	RequiresRestart bool   `json:"requires_restart"`
	Sensitive       bool   `json:"sensitive"`
	CurrentValue    any    `json:"current_value,omitempty"`
}

// ConfigUpdateRequest maps field paths to their new values.
type ConfigUpdateRequest struct {
	Updates map[string]any `json:"updates"`
}

// NewConfigAPIHandler creates the admin API handler. allowedOrigin
// optionally sets the CORS origin; unset means no CORS headers.
func NewConfigAPIHandler(manager *HotReloadManager, allowedOrigin ...string) *ConfigAPIHandler {
	origin := ""
	if len(allowedOrigin) > 0 {
		origin = allowedOrigin[0]
	}
	return &ConfigAPIHandler{
		manager:       manager,
		allowedOrigin: origin,
	}
}

// HandleConfig serves GET (read) and PUT (update) on the live config.
func (h *ConfigAPIHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if h.handleCORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.getConfig(w, r)
	case http.MethodPut:
		h.updateConfig(w, r)
	default:
		h.methodNotAllowed(w, r)
	}
}

// HandleReload serves POST to re-read the config file from disk.
func (h *ConfigAPIHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if h.handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r)
		return
	}
	h.reloadConfig(w, r)
}

// HandleFields serves GET listing the runtime-updatable fields.
func (h *ConfigAPIHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	if h.handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r)
		return
	}
	h.listFields(w, r)
}

// HandleChanges serves GET over the change audit log.
func (h *ConfigAPIHandler) HandleChanges(w http.ResponseWriter, r *http.Request) {
	if h.handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r)
		return
	}
	h.listChanges(w, r)
}

func (h *ConfigAPIHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	sanitized, err := h.manager.SanitizedConfig()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, types.ErrInternal,
			"failed to read configuration")
		return
	}

	h.writeSuccess(w, r, http.StatusOK, configData{
		Config:  sanitized,
		Version: h.manager.GetCurrentVersion(),
	})
}

func (h *ConfigAPIHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, types.ErrInvalidRequest,
			"invalid JSON body")
		return
	}
	if len(req.Updates) == 0 {
		h.writeError(w, r, http.StatusBadRequest, types.ErrInvalidRequest,
			"updates must not be empty")
		return
	}

	// Apply in path order so results are deterministic.
	paths := make([]string, 0, len(req.Updates))
	for path := range req.Updates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	fieldErrors := make(map[string]string)
	var requiresRestart []string
	applied := 0

	for _, path := range paths {
		if err := h.manager.UpdateField(path, req.Updates[path]); err != nil {
			fieldErrors[path] = err.Error()
			continue
		}
		applied++
		if fieldRequiresRestart(path) {
			requiresRestart = append(requiresRestart, path)
		}
	}

	data := configData{
		RequiresRestart: requiresRestart,
		Version:         h.manager.GetCurrentVersion(),
	}
	if len(fieldErrors) > 0 {
		data.Errors = fieldErrors
	}

	switch {
	case applied == 0:
		data.Message = "no updates applied"
		h.writeSuccessStatus(w, r, http.StatusBadRequest, data)
	case len(requiresRestart) > 0:
		data.Message = "updates applied; some take full effect after restart"
		h.writeSuccess(w, r, http.StatusOK, data)
	default:
		data.Message = "updates applied"
		h.writeSuccess(w, r, http.StatusOK, data)
	}
}

func (h *ConfigAPIHandler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ReloadFromFile(); err != nil {
		h.writeError(w, r, http.StatusInternalServerError, types.ErrInternal,
			"config reload failed: "+err.Error())
		return
	}

	h.writeSuccess(w, r, http.StatusOK, configData{
		Message: "configuration reloaded",
		Version: h.manager.GetCurrentVersion(),
	})
}

func (h *ConfigAPIHandler) listFields(w http.ResponseWriter, r *http.Request) {
	cfg := h.manager.GetConfig()

	registered := h.manager.GetHotReloadableFields()
	fields := make([]FieldInfo, 0, len(registered))
	for _, f := range registered {
		info := FieldInfo{
			Path:            f.Path,
			Description:     f.Description,
			RequiresRestart: f.RequiresRestart,
			Sensitive:       f.Sensitive,
		}
		if !f.Sensitive {
			if value, err := getNestedField(cfg, f.Path); err == nil {
				info.CurrentValue = value
			}
		}
		fields = append(fields, info)
	}

	h.writeSuccess(w, r, http.StatusOK, configData{Fields: fields})
}

func (h *ConfigAPIHandler) listChanges(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, r, http.StatusBadRequest, types.ErrInvalidRequest,
				"limit must be a positive integer")
			return
		}
		limit = n
	}

	h.writeSuccess(w, r, http.StatusOK, configData{
		Changes: h.manager.GetChangeLog(limit),
	})
}

// handleCORS applies the configured origin and answers preflights.
// Returns true when the request was fully handled.
func (h *ConfigAPIHandler) handleCORS(w http.ResponseWriter, r *http.Request) bool {
	if h.allowedOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		w.Header().Set("Access-Control-Max-Age", "86400")
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func (h *ConfigAPIHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusMethodNotAllowed, types.ErrInvalidRequest,
		fmt.Sprintf("method %s not allowed", r.Method))
}

func (h *ConfigAPIHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data configData) {
	h.writeJSON(w, status, apiResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: requestID(r),
	})
}

// writeSuccessStatus writes a failed-but-structured result: the body
// keeps the configData shape so callers can read per-field errors.
func (h *ConfigAPIHandler) writeSuccessStatus(w http.ResponseWriter, r *http.Request, status int, data configData) {
	h.writeJSON(w, status, apiResponse{
		Success:   false,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: requestID(r),
	})
}

func (h *ConfigAPIHandler) writeError(w http.ResponseWriter, r *http.Request, status int, code types.ErrorCode, message string) {
	h.writeJSON(w, status, apiResponse{
		Success: false,
		Error: &apiError{
			Code:    string(code),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
		RequestID: requestID(r),
	})
}

// writeJSON marshals before writing headers so a marshal failure can
// still produce a clean 500.
func (h *ConfigAPIHandler) writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, `{"success":false}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(body)
}

func requestID(r *http.Request) string {
	id, _ := types.RequestID(r.Context())
	return id
}

// ConfigAPIMiddleware guards the admin endpoints with an API key.
type ConfigAPIMiddleware struct {
	apiKey string
}

// NewConfigAPIMiddleware creates the middleware. An empty key disables
// the check.
func NewConfigAPIMiddleware(apiKey string) *ConfigAPIMiddleware {
	return &ConfigAPIMiddleware{apiKey: apiKey}
}

// RequireAuth rejects requests whose X-API-Key header does not match.
// Preflight requests pass through so CORS keeps working.
func (m *ConfigAPIMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || m.apiKey == "" {
			next(w, r)
			return
		}
		if r.Header.Get("X-API-Key") != m.apiKey {
			body, _ := json.Marshal(apiResponse{
				Success: false,
				Error: &apiError{
					Code:    string(types.ErrUnauthorized),
					Message: "invalid or missing API key",
				},
				Timestamp: time.Now().UTC(),
				RequestID: requestID(r),
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write(body)
			return
		}
		next(w, r)
	}
}
