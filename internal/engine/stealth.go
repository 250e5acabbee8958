package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and functions for engine consumers.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }

// PageBrowser returns the stealth client for watch-page requests, or nil when
// the page must go through NewUpstreamClient instead. With the Webshare
// rotating proxy on, an unpooled browser client would send every attempt from
// the server's own IP.
func PageBrowser() *BrowserClient {
	if Cfg.Proxy.Enabled() && !Cfg.BrowserProxied {
		return nil
	}
	return Cfg.BrowserClient
}
