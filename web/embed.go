package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js/images).
//
//go:embed static/*
var StaticFS embed.FS

// DefaultLogo is drawn in the dashboard header when no logo file is configured.
//
//go:embed static/logo.png
var DefaultLogo []byte
