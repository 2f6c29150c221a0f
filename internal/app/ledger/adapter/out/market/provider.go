package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
)

// ErrNoPrice 回應裡找不到價格 (代號不存在、額度用完等)
var ErrNoPrice = errors.New("no price in response")

// Config 一個 JSON-over-HTTP 行情來源
//
// URL 與 Headers 裡的 {symbol} / {symbol_lower} 會換成代號，${VAR} 從環境變數展開 (API key)。
type Config struct {
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	Headers    map[string]string `yaml:"headers"`
	PricePath  string            `yaml:"price_path"`
	ChangePath string            `yaml:"change_path"`
	// ChangeScale 變動比例乘上的倍數，例如來源給 0.0123 代表 1.23% 時設 100
	ChangeScale float64 `yaml:"change_scale"`
}

// HTTPProvider 依 Config 抓取報價
type HTTPProvider struct {
	cfg    Config
	client *http.Client
}

// NewHTTPProvider 建立 provider，client 為 nil 時使用 10 秒逾時的預設 client
func NewHTTPProvider(cfg Config, client *http.Client) (*HTTPProvider, error) {
	if cfg.Name == "" || cfg.URL == "" || cfg.PricePath == "" {
		return nil, fmt.Errorf("market provider needs name, url and price_path: %+v", cfg)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{cfg: cfg, client: client}, nil
}

func (p *HTTPProvider) Name() string {
	return p.cfg.Name
}

func expand(s, symbol string) string {
	s = strings.NewReplacer(
		"{symbol}", url.PathEscape(symbol),
		"{symbol_lower}", url.PathEscape(strings.ToLower(symbol)),
	).Replace(s)
	return os.ExpandEnv(s)
}

// Fetch 取得 symbol 的報價，Symbol/Kind/UpdatedAt 由 MarketGateway 填入
func (p *HTTPProvider) Fetch(ctx context.Context, symbol string) (*domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, expand(p.cfg.URL, symbol), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, expand(v, symbol))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	var doc any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", p.cfg.Name, err)
	}

	raw, err := lookup(p.cfg.PricePath, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNoPrice, p.cfg.Name, p.cfg.PricePath, err)
	}
	price, err := toDecimal(raw)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s returned %v", ErrNoPrice, p.cfg.Name, raw)
	}

	q := &domain.Quote{Price: price, ChangePercent: "N/A", Source: p.cfg.Name}
	if p.cfg.ChangePath != "" {
		if change, err := lookup(p.cfg.ChangePath, doc); err == nil {
			q.ChangePercent = p.formatChange(change)
		}
	}
	return q, nil
}

// lookup jsonpath 可能回傳單一值或只有一個元素的 list，一律取第一個
func lookup(path string, doc any) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, errors.New("empty result")
		}
		v = list[0]
	}
	if v == nil {
		return nil, errors.New("null value")
	}
	return v, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%")))
	case fmt.Stringer:
		return decimal.NewFromString(x.String())
	}
	return decimal.Decimal{}, fmt.Errorf("unexpected %T", v)
}

// formatChange 數字格式化成 "1.23%"，字串原樣保留 (有些來源已經帶 %)
func (p *HTTPProvider) formatChange(v any) string {
	if s, ok := v.(string); ok && strings.HasSuffix(strings.TrimSpace(s), "%") {
		return strings.TrimSpace(s)
	}
	d, err := toDecimal(v)
	if err != nil {
		return "N/A"
	}
	if p.cfg.ChangeScale != 0 {
		d = d.Mul(decimal.NewFromFloat(p.cfg.ChangeScale))
	}
	return d.StringFixed(2) + "%"
}

var _ usecase.QuoteProvider = (*HTTPProvider)(nil)
