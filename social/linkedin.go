package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
	"github.com/Arshmittal/Ai-social-media/types"
)

const linkedInBaseURL = "https://api.linkedin.com"

// urnPrefixes are the author URN forms the v2 API accepts, legacy and
// current.
var urnPrefixes = []string{
	"urn:li:person:",
	"urn:li:member:",
	"urn:li:organization:",
	"urn:li:company:",
}

// NormalizeURN validates and fixes a LinkedIn author URN: the
// "organisation" spelling is corrected to "company", and a bare ID is
// assumed to be a person ID. An empty URN is an error.
func NormalizeURN(urn string) (string, error) {
	urn = strings.TrimSpace(urn)
	if urn == "" {
		return "", types.NewError(types.ErrInvalidRequest, "linkedin URN cannot be empty").
			WithPlatform("linkedin")
	}

	for _, prefix := range urnPrefixes {
		if strings.HasPrefix(urn, prefix) {
			return urn, nil
		}
	}
	if strings.Contains(urn, "urn:li:organisation:") {
		return strings.ReplaceAll(urn, "urn:li:organisation:", "urn:li:company:"), nil
	}
	if !strings.HasPrefix(urn, "urn:li:") {
		return "urn:li:person:" + urn, nil
	}
	return urn, nil
}

// LinkedIn publishes UGC posts on behalf of a person or organization.
type LinkedIn struct {
	clientID  string
	token     string
	authorURN string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewLinkedIn builds the LinkedIn publisher.
func NewLinkedIn(cfg config.LinkedInConfig, timeout time.Duration, logger *zap.Logger) *LinkedIn {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkedIn{
		clientID:  cfg.ClientID,
		token:     cfg.AccessToken,
		authorURN: cfg.PersonURN,
		baseURL:   linkedInBaseURL,
		client:    tlsutil.SecureHTTPClient(timeout),
		logger:    logger,
	}
}

func (l *LinkedIn) Name() string { return "linkedin" }

type ugcText struct {
	Text string `json:"text"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText `json:"shareCommentary"`
	ShareMediaCategory string  `json:"shareMediaCategory"`
}

type ugcPost struct {
	Author          string                     `json:"author"`
	LifecycleState  string                     `json:"lifecycleState"`
	SpecificContent map[string]ugcShareContent `json:"specificContent"`
	Visibility      map[string]string          `json:"visibility"`
}

// Post publishes a UGC post. 201 is the only success status.
func (l *LinkedIn) Post(ctx context.Context, req *PostRequest) (*PostResult, error) {
	if l.token == "" {
		return nil, types.NewError(types.ErrInvalidRequest,
			"linkedin token not configured (LINKEDIN_ACCESS_TOKEN)").
			WithPlatform("linkedin")
	}
	author, err := NormalizeURN(l.authorURN)
	if err != nil {
		return nil, err
	}

	payload := ugcPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]ugcShareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    ugcText{Text: req.Content},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	l.setHeaders(httpReq)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, transportError("linkedin", err)
	}
	defer resp.Body.Close()

	raw := readBody(resp.Body)

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity {
		l.logRejection(resp.StatusCode, raw, req.Content)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError("linkedin", resp.StatusCode, raw)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, apiError("linkedin", resp.StatusCode, err.Error())
	}

	l.logger.Info("posted to linkedin",
		zap.String("post_id", result.ID),
		zap.String("author", author),
		zap.Int("chars", len(req.Content)))

	return &PostResult{
		Platform: "linkedin",
		PostID:   result.ID,
		PostedAt: time.Now().UTC(),
	}, nil
}

// logRejection parses the service error and logs a targeted hint for
// the usual failure modes: bad author URN, missing scope, over-long
// content.
func (l *LinkedIn) logRejection(status int, raw, posted string) {
	var svcErr struct {
		Message          string `json:"message"`
		ServiceErrorCode int    `json:"serviceErrorCode"`
	}
	if json.Unmarshal([]byte(raw), &svcErr) != nil {
		l.logger.Error("linkedin rejection with unparseable body",
			zap.Int("status", status), zap.String("body", raw))
		return
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.Int("service_error_code", svcErr.ServiceErrorCode),
		zap.String("error_message", svcErr.Message),
	}

	msgLower := strings.ToLower(svcErr.Message)
	switch {
	case strings.Contains(msgLower, "author") ||
		strings.Contains(svcErr.Message, "urn:li:person") ||
		strings.Contains(svcErr.Message, "urn:li:member"):
		fields = append(fields, zap.String("hint",
			"check LINKEDIN_PERSON_URN format: urn:li:person:<id>, urn:li:member:<id>, or urn:li:company:<id>"))
	case strings.Contains(msgLower, "access_denied"):
		fields = append(fields, zap.String("hint",
			"the app needs the w_member_social or w_organization_social permission"))
	case utf8.RuneCountInString(posted) > linkedInPracticalLimit:
		fields = append(fields, zap.String("hint",
			"content exceeds 1300 characters, consider shortening"))
	}
	l.logger.Error("linkedin post rejected", fields...)
}

// TestConnection validates the URN and probes the profile endpoint
// matching the URN type.
func (l *LinkedIn) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	if l.token == "" {
		return &ConnectionStatus{Message: "linkedin token not configured"}, nil
	}
	urn, err := NormalizeURN(l.authorURN)
	if err != nil {
		return &ConnectionStatus{Message: "invalid linkedin URN: " + err.Error()}, nil
	}

	var endpoint string
	switch {
	case strings.HasPrefix(urn, "urn:li:person:") || strings.HasPrefix(urn, "urn:li:member:"):
		endpoint = l.baseURL + "/v2/me"
	case strings.HasPrefix(urn, "urn:li:company:") || strings.HasPrefix(urn, "urn:li:organization:"):
		id := urn[strings.LastIndex(urn, ":")+1:]
		endpoint = l.baseURL + "/v2/organizations/" + id
	default:
		return &ConnectionStatus{Message: "invalid URN format: " + urn}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	l.setHeaders(httpReq)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return &ConnectionStatus{Message: "linkedin unreachable: " + err.Error()}, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &ConnectionStatus{Message: "linkedin token is invalid or expired"}, nil
	case resp.StatusCode == http.StatusForbidden:
		return &ConnectionStatus{Message: "linkedin access denied (403): " + readBody(resp.Body)}, nil
	case resp.StatusCode != http.StatusOK:
		return &ConnectionStatus{
			Message: fmt.Sprintf("linkedin api error %d: %s", resp.StatusCode, readBody(resp.Body)),
		}, nil
	}

	return &ConnectionStatus{
		OK:      true,
		Message: "linkedin connection validated",
		Details: map[string]any{"urn": urn},
	}, nil
}

// Analytics is a stub: post statistics need the marketing API
// permissions this service does not request.
func (l *LinkedIn) Analytics(_ context.Context, _ string) (map[string]any, error) {
	return map[string]any{
		"platform":     "linkedin",
		"note":         "LinkedIn analytics require additional API permissions",
		"retrieved_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (l *LinkedIn) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
}
