package middleware

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the brotli middleware.
type BrotliConfig struct {
	Quality int
	Skipper func(c *gin.Context) bool
	// MinLength is the smallest body worth compressing.
	MinLength int
	// Types lists the compressible media types. Anything else, such as a
	// PDF, goes out as written.
	Types []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
	Types: []string{
		"text/html",
		"text/plain",
		"text/css",
		"application/json",
		"application/javascript",
	},
}

// brotliWriter buffers the body until it knows whether to compress: once
// MinLength bytes arrived, or when the handler returns.
type brotliWriter struct {
	gin.ResponseWriter
	pool      *sync.Pool
	writer    *brotli.Writer
	types     []string
	minLength int
	buf       []byte
	decided   bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		return bw.pass(data)
	}
	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}
	bw.decide(true)
	if err := bw.drain(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush commits to the current decision and pushes everything out.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		bw.decide(len(bw.buf) >= bw.minLength)
	}
	_ = bw.drain()
	if bw.writer != nil {
		_ = bw.writer.Flush()
	}
	bw.ResponseWriter.Flush()
}

// decide picks compression when the body is large enough and its media
// type is on the list.
func (bw *brotliWriter) decide(large bool) {
	bw.decided = true
	if !large || !bw.compressible() {
		return
	}
	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.writer = bw.pool.Get().(*brotli.Writer)
	bw.writer.Reset(bw.ResponseWriter)
}

func (bw *brotliWriter) compressible() bool {
	if bw.ResponseWriter.Header().Get("Content-Encoding") != "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(bw.ResponseWriter.Header().Get("Content-Type"))
	if err != nil {
		return false
	}
	for _, t := range bw.types {
		if mt == t {
			return true
		}
	}
	return false
}

func (bw *brotliWriter) pass(data []byte) (int, error) {
	if bw.writer != nil {
		return bw.writer.Write(data)
	}
	return bw.ResponseWriter.Write(data)
}

func (bw *brotliWriter) drain() error {
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.pass(bw.buf)
	bw.buf = bw.buf[:0]
	return err
}

// finish runs after the handler: small bodies go out uncompressed and the
// brotli stream, if any, is closed and returned to the pool.
func (bw *brotliWriter) finish() error {
	if !bw.decided {
		bw.decide(false)
	}
	err := bw.drain()
	if bw.writer != nil {
		if cerr := bw.writer.Close(); err == nil {
			err = cerr
		}
		bw.pool.Put(bw.writer)
		bw.writer = nil
	}
	return err
}

// SkipSuffixes returns a Skipper for routes whose path ends in one of
// suffixes.
func SkipSuffixes(suffixes ...string) func(c *gin.Context) bool {
	return func(c *gin.Context) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(c.Request.URL.Path, s) {
				return true
			}
		}
		return false
	}
}

// Brotli compresses responses for clients that accept br.
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}
	if len(cfg.Types) == 0 {
		cfg.Types = DefaultBrotliConfig.Types
	}
	pool := &sync.Pool{New: func() any {
		return brotli.NewWriterLevel(nil, cfg.Quality)
	}}

	return func(c *gin.Context) {
		if shouldSkip(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			pool:           pool,
			types:          cfg.Types,
			minLength:      cfg.MinLength,
		}
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Writer = bw
		c.Next()
	}
}

// shouldSkip returns true for protocols that are incompatible with
// buffered compression and must be passed through untouched.
func shouldSkip(c *gin.Context) bool {
	// SSE requires immediate streaming.
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	// The Upgrade handshake fails on a wrapped writer.
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// acceptsBrotli reports whether Accept-Encoding lists br with a non-zero
// quality.
func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		q, ok := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !ok {
			return true
		}
		v, err := strconv.ParseFloat(q, 64)
		return err == nil && v > 0
	}
	return false
}
