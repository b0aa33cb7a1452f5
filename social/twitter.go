package social

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
	"github.com/Arshmittal/Ai-social-media/types"
)

const (
	twitterBaseURL = "https://api.twitter.com"

	// tweetStatusURL resolves any tweet ID without knowing the handle.
	tweetStatusURL = "https://twitter.com/i/web/status/"

	// threadSeparator splits thread content into parts.
	threadSeparator = "\n---\n"
)

// Twitter publishes tweets and threads via the v2 API.
type Twitter struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewTwitter builds the Twitter publisher. The bearer token is
// preferred; an OAuth2 user access token works the same way.
func NewTwitter(cfg config.TwitterConfig, timeout time.Duration, logger *zap.Logger) *Twitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	token := cfg.BearerToken
	if token == "" {
		token = cfg.AccessToken
	}
	return &Twitter{
		token:   token,
		baseURL: twitterBaseURL,
		client:  tlsutil.SecureHTTPClient(timeout),
		logger:  logger,
	}
}

func (t *Twitter) Name() string { return "twitter" }

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

// Post publishes a single tweet, or a reply-chained thread when the
// content type is "thread".
func (t *Twitter) Post(ctx context.Context, req *PostRequest) (*PostResult, error) {
	if t.token == "" {
		return nil, types.NewError(types.ErrInvalidRequest,
			"twitter token not configured (TWITTER_BEARER_TOKEN or TWITTER_ACCESS_TOKEN)").
			WithPlatform("twitter")
	}

	if req.ContentType == "thread" {
		return t.postThread(ctx, req.Content)
	}

	id, err := t.createTweet(ctx, req.Content, "")
	if err != nil {
		return nil, err
	}

	t.logger.Info("posted to twitter", zap.String("tweet_id", id))
	return &PostResult{
		Platform: "twitter",
		PostID:   id,
		URL:      tweetStatusURL + id,
		PostedAt: time.Now().UTC(),
	}, nil
}

// postThread splits the content on separator lines, formats each part
// with its (i/n) position, word-chunks parts that still exceed the
// tweet limit, and chains everything with reply IDs.
func (t *Twitter) postThread(ctx context.Context, text string) (*PostResult, error) {
	maxLen := content.SpecFor("twitter").MaxLength

	// Empty parts are dropped before numbering so (i/n) counts only
	// what actually gets posted.
	var parts []string
	for _, part := range strings.Split(text, threadSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	var chunks []string
	for i, part := range parts {
		formatted := FormatTweet(part, i+1, len(parts))
		if formatted == "" {
			continue
		}
		if utf8.RuneCountInString(formatted) > maxLen {
			chunks = append(chunks, splitTweetText(formatted, maxLen)...)
		} else {
			chunks = append(chunks, formatted)
		}
	}
	if len(chunks) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "thread has no postable content").
			WithPlatform("twitter")
	}

	ids := make([]string, 0, len(chunks))
	replyTo := ""
	for _, chunk := range chunks {
		id, err := t.createTweet(ctx, chunk, replyTo)
		if err != nil {
			if len(ids) > 0 {
				return nil, types.AsError(err).WithDetail("posted_ids", ids)
			}
			return nil, err
		}
		ids = append(ids, id)
		replyTo = id
	}

	t.logger.Info("posted twitter thread",
		zap.Int("tweets", len(ids)),
		zap.String("first_id", ids[0]))

	return &PostResult{
		Platform:     "twitter",
		PostID:       ids[0],
		PostIDs:      ids,
		URL:          tweetStatusURL + ids[0],
		ThreadLength: len(ids),
		PostedAt:     time.Now().UTC(),
	}, nil
}

func (t *Twitter) createTweet(ctx context.Context, text, replyTo string) (string, error) {
	payload := tweetRequest{Text: text}
	if replyTo != "" {
		payload.Reply = &tweetReply{InReplyToTweetID: replyTo}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	t.setHeaders(httpReq)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", transportError("twitter", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", apiError("twitter", resp.StatusCode, readBody(resp.Body))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apiError("twitter", resp.StatusCode, err.Error())
	}
	if result.Data.ID == "" {
		return "", apiError("twitter", resp.StatusCode, "response carried no tweet id")
	}
	return result.Data.ID, nil
}

// TestConnection probes the authenticated-user endpoint.
func (t *Twitter) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	if t.token == "" {
		return &ConnectionStatus{Message: "twitter token not configured"}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/2/users/me", nil)
	if err != nil {
		return nil, err
	}
	t.setHeaders(httpReq)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return &ConnectionStatus{Message: "twitter unreachable: " + err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &ConnectionStatus{Message: "twitter token is invalid or expired"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return &ConnectionStatus{
			Message: "twitter api error " + resp.Status + ": " + readBody(resp.Body),
		}, nil
	}

	var me struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return &ConnectionStatus{Message: "twitter response unreadable: " + err.Error()}, nil
	}

	return &ConnectionStatus{
		OK:      true,
		Message: "twitter connection validated",
		Details: map[string]any{"user_id": me.Data.ID, "username": me.Data.Username},
	}, nil
}

// Analytics fetches the tweet's public metrics.
func (t *Twitter) Analytics(ctx context.Context, postID string) (map[string]any, error) {
	endpoint := t.baseURL + "/2/tweets/" + postID + "?tweet.fields=public_metrics,created_at"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	t.setHeaders(httpReq)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, transportError("twitter", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("twitter", resp.StatusCode, readBody(resp.Body))
	}

	var tweet struct {
		Data struct {
			ID            string `json:"id"`
			CreatedAt     string `json:"created_at"`
			PublicMetrics struct {
				RetweetCount int `json:"retweet_count"`
				ReplyCount   int `json:"reply_count"`
				LikeCount    int `json:"like_count"`
				QuoteCount   int `json:"quote_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tweet); err != nil {
		return nil, apiError("twitter", resp.StatusCode, err.Error())
	}
	if tweet.Data.ID == "" {
		return nil, types.Errorf(types.ErrNotFound, "tweet %s not found", postID).
			WithPlatform("twitter")
	}

	return map[string]any{
		"platform":      "twitter",
		"retweet_count": tweet.Data.PublicMetrics.RetweetCount,
		"like_count":    tweet.Data.PublicMetrics.LikeCount,
		"reply_count":   tweet.Data.PublicMetrics.ReplyCount,
		"quote_count":   tweet.Data.PublicMetrics.QuoteCount,
		"created_at":    tweet.Data.CreatedAt,
	}, nil
}

func (t *Twitter) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")
}
