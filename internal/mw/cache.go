package mw

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache keeps rendered HTML pages in memory. Any non-GET request that
// passes through Middleware empties it, so a page read after a
// write always reflects that write.
type PageCache struct {
	store *cache.Cache
	ttl   time.Duration

	// mu orders flushes against stores; generation counts flushes so a page
	// rendered before a write finished is never stored after it.
	mu         sync.Mutex
	generation uint64
}

// NewPageCache returns a cache holding pages for ttl. A zero ttl disables caching.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Len returns the number of cached pages.
func (p *PageCache) Len() int {
	return p.store.ItemCount()
}

// Middleware serves GET requests from the cache and stores successful HTML
// responses. Other methods flush the cache once the handler has run.
func (p *PageCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			p.flush()
			return
		}
		if p.ttl <= 0 {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := p.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		generation := p.currentGeneration()
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if blw.Status() == http.StatusOK && strings.HasPrefix(blw.Header().Get("Content-Type"), "text/html") {
			p.storeIfCurrent(generation, key, cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			})
		}
	}
}

func (p *PageCache) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

func (p *PageCache) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.store.Flush()
}

// storeIfCurrent drops the page when a flush happened while it was rendered.
func (p *PageCache) storeIfCurrent(generation uint64, key string, resp cachedResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != generation {
		return
	}
	p.store.Set(key, resp, p.ttl)
}
