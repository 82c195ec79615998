package feed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/evdnx/smacross/types"
	"github.com/shopspring/decimal"
)

// klinePageSize is the maximum number of klines Binance returns per request.
const klinePageSize = 1000

// KlineFetcher returns klines opening in [startMs, endMs].
type KlineFetcher func(ctx context.Context, startMs, endMs int64) ([]*binance.Kline, error)

// BinanceSource pages historical klines for one symbol.
type BinanceSource struct {
	fetch  KlineFetcher
	cursor int64 // next open time to request, ms
	end    int64
	buf    []types.Bar
	done   bool
}

// NewBinanceSource reads spot klines through client. Public market data
// needs no API key, so NewClient("", "") is enough.
func NewBinanceSource(client *binance.Client, symbol, interval string, start, end time.Time) *BinanceSource {
	fetch := func(ctx context.Context, startMs, endMs int64) ([]*binance.Kline, error) {
		return client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startMs).
			EndTime(endMs).
			Limit(klinePageSize).
			Do(ctx)
	}
	return NewBinanceSourceWithFetcher(fetch, start, end)
}

func NewBinanceSourceWithFetcher(fetch KlineFetcher, start, end time.Time) *BinanceSource {
	return &BinanceSource{
		fetch:  fetch,
		cursor: start.UnixMilli(),
		end:    end.UnixMilli(),
	}
}

func (b *BinanceSource) Next(ctx context.Context) (types.Bar, error) {
	if len(b.buf) == 0 {
		if err := b.fill(ctx); err != nil {
			return types.Bar{}, err
		}
	}
	bar := b.buf[0]
	b.buf = b.buf[1:]
	return bar, nil
}

func (b *BinanceSource) fill(ctx context.Context) error {
	if b.done || b.cursor > b.end {
		return io.EOF
	}
	klines, err := b.fetch(ctx, b.cursor, b.end)
	if err != nil {
		return fmt.Errorf("feed: fetch klines: %w", err)
	}
	if len(klines) == 0 {
		b.done = true
		return io.EOF
	}
	for _, k := range klines {
		bar, err := barFromKline(k)
		if err != nil {
			return err
		}
		b.buf = append(b.buf, bar)
	}
	b.cursor = klines[len(klines)-1].OpenTime + 1
	if len(klines) < klinePageSize {
		b.done = true
	}
	return nil
}

// barFromKline stamps the bar with its close time, when the close is known.
func barFromKline(k *binance.Kline) (types.Bar, error) {
	var vals [5]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return types.Bar{}, fmt.Errorf("%w: kline %d: %v", ErrBadRecord, k.OpenTime, err)
		}
		vals[i], _ = d.Float64()
	}
	return types.Bar{
		Time:   time.UnixMilli(k.CloseTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
