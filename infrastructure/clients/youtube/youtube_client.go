package youtube

import (
	"context"
	"fmt"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/logger"
	"watch-tracker/infrastructure/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client resolves video metadata through the YouTube Data API
type Client struct {
	service *youtube.Service
	oauth   bool
}

// Config represents YouTube API configuration
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint"`
}

// NewYouTubeClient creates a new YouTube API client. An API key is enough for
// metadata lookups; an access/refresh token pair switches to OAuth.
func NewYouTubeClient(ctx context.Context, config *Config) (*Client, error) {
	var opts []option.ClientOption
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	if (config.AccessToken == "" || config.RefreshToken == "") && config.APIKey != "" {
		service, err := youtube.NewService(ctx, append(opts, option.WithAPIKey(config.APIKey))...)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
		}
		return &Client{service: service}, nil
	}

	if config.AccessToken == "" || config.RefreshToken == "" {
		return nil, fmt.Errorf("youtube client requires an API key or an access/refresh token pair")
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}

	httpClient := oauth2Config.Client(ctx, token)
	service, err := youtube.NewService(ctx, append(opts, option.WithHTTPClient(httpClient))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service, oauth: true}, nil
}

// Recognize reports whether rawURL is a YouTube video link.
func (c *Client) Recognize(rawURL string) bool {
	return IsYouTubeURL(rawURL)
}

// Resolve fetches title, thumbnail and duration of the video referenced by rawURL.
func (c *Client) Resolve(ctx context.Context, rawURL string) (*model.ResolvedVideo, error) {
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return nil, &model.ResolutionError{Message: model.ErrInvalidURL.Error(), Err: model.ErrInvalidURL}
	}

	response, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		logger.GetLogger().WithField("videoId", videoID).WithField("error", err).Warn("YouTube lookup failed")
		return nil, &model.ResolutionError{Message: "failed to fetch video details", Err: err}
	}
	if len(response.Items) == 0 {
		return nil, &model.ResolutionError{Message: model.ErrVideoNotFound.Error(), Err: model.ErrVideoNotFound}
	}

	return convertToResolvedVideo(response.Items[0])
}

// convertToResolvedVideo converts a YouTube API video to our model
func convertToResolvedVideo(video *youtube.Video) (*model.ResolvedVideo, error) {
	if video.Snippet == nil || video.ContentDetails == nil {
		return nil, &model.ResolutionError{Message: "malformed response from YouTube"}
	}
	seconds, ok := utils.MatchYouTubeDuration(video.ContentDetails.Duration)
	if !ok {
		return nil, &model.ResolutionError{
			Message: "could not parse the video duration",
			Err:     fmt.Errorf("unexpected duration %q", video.ContentDetails.Duration),
		}
	}

	return &model.ResolvedVideo{
		VideoID:         video.Id,
		Title:           video.Snippet.Title,
		ThumbnailURL:    pickThumbnail(video.Snippet.Thumbnails),
		DurationSeconds: seconds,
	}, nil
}

// pickThumbnail prefers the medium size, then high, then default.
func pickThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{thumbnails.Medium, thumbnails.High, thumbnails.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// Mode names the credential mode the client was built with.
func (c *Client) Mode() string {
	if c.oauth {
		return "oauth"
	}
	return "api-key"
}
