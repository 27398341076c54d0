package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

func sendOriginHeader(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", corsAllowOrigin)
}

func sendCORSHeaders(c *gin.Context) {
	sendOriginHeader(c)
	c.Header("Access-Control-Allow-Methods", corsAllowMethods)
	c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
}

// preflightHandler answers OPTIONS on any path without touching the upstream.
func preflightHandler(c *gin.Context) {
	sendCORSHeaders(c)
	c.AbortWithStatus(http.StatusOK)
}
