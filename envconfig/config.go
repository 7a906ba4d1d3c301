// config.go - Haupt-Konfigurationsfunktionen fuer vismatch
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (VISMATCH_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (VISMATCH_ORIGINS)
// - UploadDir / SQLitePath: Verzeichnisse unter $HOME/.vismatch
// - HuggingFaceToken: Credential fuer den Fallback-Provider
// - LogLevel: Gibt Log-Level zurueck (VISMATCH_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Provider-, Catalog- und Limit-Variablen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via VISMATCH_HOST
// Default: http://127.0.0.1:5000
func Host() *url.URL {
	defaultPort := "5000"

	s := strings.TrimSpace(Var("VISMATCH_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via VISMATCH_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("VISMATCH_ORIGINS"); s != "" {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return origins
}

// Home gibt das Datenverzeichnis zurueck ($HOME/.vismatch)
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".vismatch")
}

// UploadDir gibt das Verzeichnis fuer hochgeladene Bilder zurueck
// Konfigurierbar via VISMATCH_UPLOAD_DIR
// Default: $HOME/.vismatch/uploads
func UploadDir() string {
	if s := Var("VISMATCH_UPLOAD_DIR"); s != "" {
		return s
	}
	return filepath.Join(Home(), "uploads")
}

// SQLitePath gibt den Pfad der SQLite-Datenbank zurueck
// Konfigurierbar via VISMATCH_SQLITE_PATH
// Default: $HOME/.vismatch/catalog.db
func SQLitePath() string {
	if s := Var("VISMATCH_SQLITE_PATH"); s != "" {
		return s
	}
	return filepath.Join(Home(), "catalog.db")
}

// placeholderTokens sind Beispielwerte aus .env-Vorlagen, die nicht als
// Credential gelten.
var placeholderTokens = []string{
	"your_huggingface_api_key_here",
	"hf_xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
}

// HuggingFaceToken gibt das Credential fuer den Fallback-Provider zurueck
// Konfigurierbar via HUGGINGFACE_API_KEY, alternativ HF_TOKEN
// Platzhalter aus .env-Vorlagen ergeben einen leeren String
func HuggingFaceToken() string {
	token := Var("HUGGINGFACE_API_KEY")
	if token == "" {
		token = Var("HF_TOKEN")
	}
	for _, p := range placeholderTokens {
		if token == p {
			return ""
		}
	}
	return token
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via VISMATCH_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("VISMATCH_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
