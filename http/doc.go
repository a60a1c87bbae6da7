// Package http provides the net/http transport for the stowgate object gateway.
//
// Each configured location is mounted under its URL prefix; the remainder of the
// escaped request path is handed to the gateway, which resolves and decodes it into
// an object key.
//
// # Features
//
//   - GET and HEAD with Last-Modified and If-Modified-Since
//   - single byte ranges (206 with Content-Range, 416 when out of bounds)
//   - headers flushed before the body, chunks flushed as they arrive
//   - short plain-text error bodies ("404 Not Found")
//   - connection abort when a storage read fails after headers went out
//   - request ids, one log line per request, Prometheus metrics
//   - configurable CORS support
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Locations: []stowgate.Location{
//	        {Prefix: "/media/", Pool: "media", Rate: 2 << 20},
//	    },
//	    Metrics:     http.NewMetrics(),
//	    MetricsPath: "/metrics",
//	}
//	handler := http.NewHandler(&handlerCfg, gateway)
//	server := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
package http
