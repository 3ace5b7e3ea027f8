package service

import (
	"context"
	"fmt"
	"time"

	"kiosk-data/internal/parser"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ConverterRequest 转换服务请求（link 为可公开访问的文件地址）
type ConverterRequest struct {
	Link string `json:"link"`
}

// ConverterResponse 转换服务响应
type ConverterResponse struct {
	Headers      []string             `json:"headers"`
	FilteredRows []parser.FilteredRow `json:"filteredRows"`
	Error        string               `json:"error,omitempty"`
}

// ConverterClient 试算表转换服务客户端
//
// Pulse-oximeter exports are spreadsheets needing specialized decoding, so
// they are posted to an external extraction service instead of being parsed
// locally. The service is treated as opaque and possibly slow.
type ConverterClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewConverterClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ConverterClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout). // spreadsheet extraction can take a while
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ConverterClient{
		httpClient: client,
		logger:     logger,
	}
}

// FilterSpreadsheet posts the file link to the conversion service and
// returns the extracted rows with the sheet's header row.
func (c *ConverterClient) FilterSpreadsheet(ctx context.Context, link string) (*ConverterResponse, error) {
	if link == "" {
		return nil, ErrMissingLink
	}

	c.logger.Info("Calling spreadsheet conversion service",
		zap.String("link", link),
	)

	var response ConverterResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(ConverterRequest{Link: link}).
		SetResult(&response).
		Post("/download")

	if err != nil {
		return nil, fmt.Errorf("failed to call conversion service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("conversion service returned status %d: %s", resp.StatusCode(), response.Error)
	}

	c.logger.Info("Conversion service returned rows",
		zap.Int("row_count", len(response.FilteredRows)),
	)
	return &response, nil
}
