package main

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

var timeNow = time.Now

// mimeFor guesses the type of an uploaded menu from its extension, then its
// content.
func mimeFor(path string, b []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(b)
}
