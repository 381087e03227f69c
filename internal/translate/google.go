package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"quizbuddy/internal/tracing"
)

// GoogleClient calls the Cloud Translation v2 REST API.
type GoogleClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewGoogleClient creates a client with the given timeout.
func NewGoogleClient(baseURL, apiKey string, timeout time.Duration) *GoogleClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Translate sends text without a source language so the service detects it.
func (c *GoogleClient) Translate(ctx context.Context, text, targetCode string) (out string, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "translate.Google")
	span.SetAttributes(attribute.String("translate.target", targetCode), attribute.Int("translate.chars", len(text)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(map[string]string{
		"q":      text,
		"target": targetCode,
		"format": "text",
	})
	if err != nil {
		return "", err
	}

	endpoint := c.BaseURL + "/language/translate/v2?key=" + url.QueryEscape(c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("translate error %s: %s", resp.Status, string(raw))
	}

	var decoded struct {
		Data struct {
			Translations []struct {
				TranslatedText         string `json:"translatedText"`
				DetectedSourceLanguage string `json:"detectedSourceLanguage"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Data.Translations) == 0 {
		return "", fmt.Errorf("translate returned no translations")
	}
	return html.UnescapeString(decoded.Data.Translations[0].TranslatedText), nil
}
