// Package scryfall скачивает bulk-выгрузку Scryfall "default cards".
package scryfall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultBulkDataURL = "https://api.scryfall.com/bulk-data/default-cards"
	defaultUserAgent   = "commander-ledger/1.0"
	metadataTimeout    = 30 * time.Second
	metadataMaxBytes   = 1 << 20
	decodeBufferSize   = 64 * 1024
)

var (
	ErrTransient  = errors.New("scryfall transient failure")
	ErrBadPayload = errors.New("scryfall returned an unexpected payload")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	// HTTPClient заменяет оба клиента: для метаданных и для выгрузки.
	HTTPClient  *http.Client
	BulkDataURL string
	UserAgent   string
	// DownloadTimeout ограничивает всю загрузку выгрузки (сотни мегабайт).
	DownloadTimeout time.Duration
	MaxAttempts     uint
	MaxBytes        int64
	BackOff         backoff.BackOff
	Logger          *slog.Logger
}

type Client struct {
	metaClient  *http.Client
	bulkClient  *http.Client
	bulkDataURL string
	userAgent   string
	maxAttempts uint
	maxBytes    int64
	newBackOff  func() backoff.BackOff
	logger      *slog.Logger
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metaClient, bulkClient := cfg.HTTPClient, cfg.HTTPClient
	if metaClient == nil {
		metaClient = &http.Client{Timeout: metadataTimeout}
	}
	if bulkClient == nil {
		timeout := cfg.DownloadTimeout
		if timeout <= 0 {
			timeout = 20 * time.Minute
		}
		bulkClient = &http.Client{Timeout: timeout}
	}

	bulkDataURL := strings.TrimSpace(cfg.BulkDataURL)
	if bulkDataURL == "" {
		bulkDataURL = DefaultBulkDataURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	newBackOff := func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	if cfg.BackOff != nil {
		newBackOff = func() backoff.BackOff { return cfg.BackOff }
	}

	return &Client{
		metaClient:  metaClient,
		bulkClient:  bulkClient,
		bulkDataURL: bulkDataURL,
		userAgent:   userAgent,
		maxAttempts: attempts,
		maxBytes:    cfg.MaxBytes,
		newBackOff:  newBackOff,
		logger:      logger,
	}
}

// ResolveDownloadURI узнаёт у bulk-data адрес текущей выгрузки.
func (c *Client) ResolveDownloadURI(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.metaClient, c.bulkDataURL)
	if err != nil {
		return "", fmt.Errorf("fetch bulk data metadata: %w", err)
	}
	defer resp.Body.Close()

	var meta BulkData
	if err := json.NewDecoder(io.LimitReader(resp.Body, metadataMaxBytes)).Decode(&meta); err != nil {
		return "", fmt.Errorf("%w: decode bulk data metadata: %v", ErrBadPayload, err)
	}
	if strings.TrimSpace(meta.DownloadURI) == "" {
		return "", fmt.Errorf("%w: bulk data metadata has no download_uri", ErrBadPayload)
	}
	return meta.DownloadURI, nil
}

// FetchDefaultCards скачивает выгрузку и передаёт каждую карту в visit в порядке файла.
// Массив разбирается по одному элементу, целиком в памяти он не держится.
// Ошибка из visit прерывает загрузку и возвращается как есть.
func (c *Client) FetchDefaultCards(ctx context.Context, visit func(Card) error) error {
	downloadURI, err := c.ResolveDownloadURI(ctx)
	if err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "downloading scryfall bulk data", slog.String("uri", downloadURI))

	resp, err := c.get(ctx, c.bulkClient, downloadURI)
	if err != nil {
		return fmt.Errorf("fetch bulk data: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes)
	}

	iter := jsoniter.Parse(json, body, decodeBufferSize)
	cards := 0
	for iter.ReadArray() {
		var card Card
		iter.ReadVal(&card)
		if iter.Error != nil {
			break
		}
		if err := visit(card); err != nil {
			return err
		}
		cards++
	}
	if iter.Error != nil {
		return fmt.Errorf("%w: decode card %d: %v", ErrBadPayload, cards, iter.Error)
	}

	c.logger.InfoContext(ctx, "scryfall bulk data decoded", slog.Int("cards", cards))
	return nil
}

// get выполняет GET с повторами при временных сбоях (сеть, 429, 5xx).
// При успехе тело ответа закрывает вызывающий.
func (c *Client) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	return backoff.Retry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			c.logger.WarnContext(ctx, "scryfall request failed", slog.String("url", url), slog.Any("error", err))
			return nil, fmt.Errorf("%w: send request: %v", ErrTransient, err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		statusErr := fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		if isRetryableStatus(resp.StatusCode) {
			c.logger.WarnContext(ctx, "scryfall transient status", slog.String("url", url), slog.Int("status", resp.StatusCode))
			return nil, fmt.Errorf("%w: %v", ErrTransient, statusErr)
		}
		return nil, backoff.Permanent(statusErr)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxAttempts),
	)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
