package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const chatPath = "/api/chat"

// ChatProxy forwards chat requests to the configured upstream.
type ChatProxy struct {
	Config   *Config
	Upstream *Upstream
}

func NewChatProxy(config *Config, base http.RoundTripper) *ChatProxy {
	return &ChatProxy{
		Config:   config,
		Upstream: NewUpstream(config, base),
	}
}

// NewRouter wires the three routes: pre-flight, chat, and a bare 404.
func NewRouter(proxy *ChatProxy) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.HandleMethodNotAllowed = false

	engine.Use(requestLogger(), errorHandler(), recovery())

	engine.OPTIONS("/*any", preflightHandler)
	engine.POST(chatPath, proxy.ChatHandler)
	engine.NoRoute(notFoundHandler)

	return engine
}

func (p *ChatProxy) ChatHandler(c *gin.Context) {
	record := newRecord(c)
	defer record.finish()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		record.Err = err
		_ = c.Error(fmt.Errorf("failed to read request body: %w", err))
		c.Abort()
		return
	}
	record.readRequest(body)

	resp, err := p.Upstream.Forward(c.Request.Context(), body)
	if err != nil {
		record.Err = err
		_ = c.Error(err)
		c.Abort()
		return
	}
	record.readResponse(resp)

	sendOriginHeader(c)
	c.Data(resp.StatusCode, "application/json", resp.Body)
}

func notFoundHandler(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotFound)
}
