package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hermes/internal/domain/marketdata"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const baseURL = "https://api.binance.com"

// klinesLimit is the Binance maximum per klines request
const klinesLimit = 1000

// Client fetches spot OHLCV candles from the Binance public REST API
type Client struct {
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Binance market data client
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Get().With("component", "binance"),
	}
}

// GetDailyKlines fetches up to limit daily candles for a symbol ending now.
// Candles are returned in chronological ascending order, as Binance serves
// them.
func (c *Client) GetDailyKlines(ctx context.Context, symbol string, limit int) ([]marketdata.Candle, error) {
	return c.GetDailyKlinesSince(ctx, symbol, time.Time{}, limit)
}

// GetDailyKlinesSince fetches daily candles opened at or after the given time.
// A zero time means "as far back as the limit allows".
func (c *Client) GetDailyKlinesSince(ctx context.Context, symbol string, since time.Time, limit int) ([]marketdata.Candle, error) {
	if limit <= 0 || limit > klinesLimit {
		limit = klinesLimit
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1d")
	params.Set("limit", strconv.Itoa(limit))
	if !since.IsZero() {
		params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}

	reqURL := fmt.Sprintf("%s/api/v3/klines?%s", baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create klines request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send klines request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read klines response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrUnavailable,
			"binance returned %d: %s", resp.StatusCode, string(body))
	}

	// Each kline is a mixed-type array:
	// [openTime, open, high, low, close, volume, closeTime, quoteVolume, trades, ...]
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal klines response")
	}

	candles := make([]marketdata.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 9 {
			continue
		}
		candle, err := parseKline(symbol, k)
		if err != nil {
			c.log.Warnw("skipping malformed kline", "symbol", symbol, "error", err)
			continue
		}
		candles = append(candles, candle)
	}

	c.log.Debugw("klines fetched", "symbol", symbol, "count", len(candles))
	return candles, nil
}

func parseKline(symbol string, k []json.RawMessage) (marketdata.Candle, error) {
	var openTimeMs int64
	if err := json.Unmarshal(k[0], &openTimeMs); err != nil {
		return marketdata.Candle{}, errors.Wrap(err, "open time")
	}

	fields := make([]float64, 5)
	for i, idx := range []int{1, 2, 3, 4, 5} {
		var s string
		if err := json.Unmarshal(k[idx], &s); err != nil {
			return marketdata.Candle{}, errors.Wrapf(err, "field %d", idx)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return marketdata.Candle{}, errors.Wrapf(err, "field %d", idx)
		}
		fields[i] = v
	}

	var quoteVolume string
	if err := json.Unmarshal(k[7], &quoteVolume); err != nil {
		return marketdata.Candle{}, errors.Wrap(err, "quote volume")
	}
	qv, _ := strconv.ParseFloat(quoteVolume, 64)

	var trades uint64
	if err := json.Unmarshal(k[8], &trades); err != nil {
		return marketdata.Candle{}, errors.Wrap(err, "trade count")
	}

	return marketdata.Candle{
		Symbol:      symbol,
		Timeframe:   "1d",
		OpenTime:    time.UnixMilli(openTimeMs).UTC(),
		Open:        fields[0],
		High:        fields[1],
		Low:         fields[2],
		Close:       fields[3],
		Volume:      fields[4],
		QuoteVolume: qv,
		Trades:      trades,
	}, nil
}
