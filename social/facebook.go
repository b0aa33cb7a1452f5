package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
	"github.com/Arshmittal/Ai-social-media/types"
)

const (
	graphBaseURL = "https://graph.facebook.com"
	graphVersion = "v18.0"

	facebookInsightMetrics = "post_impressions,post_clicks,post_reactions_by_type_total"
)

// Facebook publishes to a page feed via the Graph API.
type Facebook struct {
	pageID    string
	token     string
	pageToken string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewFacebook builds the Facebook publisher. The page access token is
// preferred over the user token when both are configured.
func NewFacebook(cfg config.FacebookConfig, timeout time.Duration, logger *zap.Logger) *Facebook {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facebook{
		pageID:    cfg.PageID,
		token:     cfg.AccessToken,
		pageToken: cfg.PageAccessToken,
		baseURL:   graphBaseURL,
		client:    tlsutil.SecureHTTPClient(timeout),
		logger:    logger,
	}
}

func (f *Facebook) Name() string { return "facebook" }

func (f *Facebook) postingToken() string {
	if f.pageToken != "" {
		return f.pageToken
	}
	return f.token
}

// graphError is the Graph API error envelope.
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Post publishes to the page feed.
func (f *Facebook) Post(ctx context.Context, req *PostRequest) (*PostResult, error) {
	token := f.postingToken()
	if token == "" {
		return nil, types.NewError(types.ErrInvalidRequest,
			"facebook token not configured (set FACEBOOK_ACCESS_TOKEN or FACEBOOK_PAGE_ACCESS_TOKEN)").
			WithPlatform("facebook")
	}
	if f.pageID == "" {
		return nil, types.NewError(types.ErrInvalidRequest,
			"facebook page ID not configured (FACEBOOK_PAGE_ID)").
			WithPlatform("facebook")
	}

	form := url.Values{
		"message":      {req.Content},
		"access_token": {token},
	}

	endpoint := f.baseURL + "/" + graphVersion + "/" + f.pageID + "/feed"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, transportError("facebook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		var ge graphError
		if json.Unmarshal([]byte(body), &ge) == nil && ge.Error.Message != "" {
			f.logger.Error("facebook post rejected",
				zap.Int("status", resp.StatusCode),
				zap.Int("error_code", ge.Error.Code),
				zap.String("error_message", ge.Error.Message))
			return nil, apiError("facebook", resp.StatusCode, ge.Error.Message).
				WithDetail("error_code", ge.Error.Code)
		}
		return nil, apiError("facebook", resp.StatusCode, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apiError("facebook", resp.StatusCode, err.Error())
	}

	f.logger.Info("posted to facebook",
		zap.String("post_id", result.ID),
		zap.Int("chars", len(req.Content)))

	return &PostResult{
		Platform: "facebook",
		PostID:   result.ID,
		PostedAt: time.Now().UTC(),
	}, nil
}

// TestConnection runs the three-step check: token validity, page
// access, and granted permissions. The permissions call is
// best-effort; its failure does not fail the check.
func (f *Facebook) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	token := f.postingToken()
	if token == "" {
		return &ConnectionStatus{Message: "facebook token not configured"}, nil
	}
	if f.pageID == "" {
		return &ConnectionStatus{Message: "facebook page ID not configured"}, nil
	}

	details := make(map[string]any)

	var me struct {
		Name string `json:"name"`
	}
	if status, body, err := f.get(ctx, "/me", token, &me); err != nil {
		return &ConnectionStatus{Message: "facebook unreachable: " + err.Error()}, nil
	} else if status != http.StatusOK {
		return &ConnectionStatus{Message: "invalid token: " + body}, nil
	}
	details["account"] = me.Name
	f.logger.Info("facebook token valid", zap.String("account", me.Name))

	var page struct {
		Name string `json:"name"`
	}
	if status, body, err := f.get(ctx, "/"+f.pageID, token, &page); err != nil {
		return &ConnectionStatus{Message: "facebook unreachable: " + err.Error()}, nil
	} else if status != http.StatusOK {
		return &ConnectionStatus{Message: "cannot access page: " + body}, nil
	}
	details["page"] = page.Name

	var perms struct {
		Data []struct {
			Permission string `json:"permission"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	if status, _, err := f.get(ctx, "/"+f.pageID+"/permissions", token, &perms); err == nil && status == http.StatusOK {
		granted := make([]string, 0, len(perms.Data))
		for _, p := range perms.Data {
			granted = append(granted, p.Permission)
		}
		details["permissions"] = granted
	}

	return &ConnectionStatus{
		OK:      true,
		Message: "facebook connection validated",
		Details: details,
	}, nil
}

// Analytics fetches post insights. The user token is used here: page
// tokens are not valid for the insights edge.
func (f *Facebook) Analytics(ctx context.Context, postID string) (map[string]any, error) {
	endpoint := f.baseURL + "/" + graphVersion + "/" + postID + "/insights?" + url.Values{
		"metric":       {facebookInsightMetrics},
		"access_token": {f.token},
	}.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, transportError("facebook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("facebook", resp.StatusCode, readBody(resp.Body))
	}

	var insights struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&insights); err != nil {
		return nil, apiError("facebook", resp.StatusCode, err.Error())
	}

	return map[string]any{
		"platform":     "facebook",
		"insights":     insights.Data,
		"retrieved_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// get issues an unversioned Graph API GET and decodes 200 responses
// into out. The body is returned raw for non-200 statuses.
func (f *Facebook) get(ctx context.Context, path, token string, out any) (int, string, error) {
	endpoint := f.baseURL + path + "?" + url.Values{"access_token": {token}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, readBody(resp.Body), nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, "", nil
}
