package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorRecord is the body sent for local failures.
type ErrorRecord struct {
	Error string `json:"error"`
}

// errorHandler renders errors attached with c.Error as a 500 JSON body.
func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			log.Warnf("[error.handler]: response already written, dropping: %s", c.Errors.String())
			return
		}

		errText := strings.Join(c.Errors.Errors(), "\n")
		body, err := json.Marshal(ErrorRecord{Error: errText})
		if err != nil {
			body = []byte(`{"error":"internal error"}`)
		}
		sendOriginHeader(c)
		c.Data(http.StatusInternalServerError, "application/json", body)
	}
}

// recovery turns a handler panic into an error for errorHandler.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				// the client is gone, let net/http deal with it
				if r == http.ErrAbortHandler {
					panic(r)
				}
				log.Errorf("[serve.panic]: %v", r)
				_ = c.Error(fmt.Errorf("panic while serving %s: %v", c.Request.URL.Path, r))
				c.Abort()
			}
		}()
		c.Next()
	}
}
