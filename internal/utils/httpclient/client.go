package httpclient

import (
	"GameIngest/internal/config"
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// NewHTTPClient 通用HTTP客户端构建方法（支持代理、超时、自动解压、限速）
func NewHTTPClient(cfg *config.ProviderConfig, logger *logrus.Logger) *http.Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	// 配置代理
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", cfg.Proxy).Info("HTTP客户端已配置代理")
		}
	}

	var rt http.RoundTripper = &compressedTransport{transport: transport, logger: logger}
	if cfg.RateLimit > 0 {
		rt = NewRateLimitedTransport(rt, cfg.RateLimit)
	}

	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

type compressedTransport struct {
	transport http.RoundTripper
	logger    *logrus.Logger
}

func (c *compressedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Add("Accept-Encoding", "gzip")
	resp, err := c.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// 处理gzip解压
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.WithError(err).Warn("gzip解压失败，返回原始响应")
			return resp, nil
		}
		resp.Body = &gzipReadCloser{
			Reader: gzReader,
			closer: resp.Body,
		}
		resp.Header.Del("Content-Encoding")
	}

	return resp, nil
}

// gzipReadCloser 关闭时同时关闭解压 reader 与原始响应体
type gzipReadCloser struct {
	*gzip.Reader
	closer io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		return err
	}
	return g.closer.Close()
}

// RateLimitedTransport 令牌桶限速，所有经过该 transport 的请求共享同一个桶
type RateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport qps 为每秒请求上限，桶容量取 qps 向下取整（至少 1）
func NewRateLimitedTransport(next http.RoundTripper, qps float64) *RateLimitedTransport {
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
