// Package gateway provides a reusable CI portal gateway library that can be
// embedded into other Go applications.
//
// # Overview
//
// The gateway sits between a developer-portal UI and a Jenkins-style CI
// server reached through a same-origin proxy. It shapes the CI server's
// weakly-typed job and build JSON into the stable BuildInfo records the
// portal's build-list widget renders, and forwards rebuild triggers.
//
// # Basic Usage
//
// Create a gateway programmatically:
//
//	gw, err := gateway.New(&gateway.Config{
//		Server: gateway.ServerConfig{
//			Port:         8080,
//			ReadTimeout:  30 * time.Second,
//			WriteTimeout: 30 * time.Second,
//		},
//		Services: map[string]string{
//			"proxy": "http://localhost:7007",
//		},
//		Jenkins: gateway.JenkinsConfig{
//			ProxyPath: "/jenkins/api",
//			FanOut:    8,
//		},
//		Logging: gateway.LoggingConfig{Level: "info", Format: "json"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Or load the same settings from a YAML file:
//
//	gw, err := gateway.NewFromFile("configs/portal.yaml")
//
// # Embedding
//
// Gateway.Handler exposes the chi router for mounting into an existing HTTP
// server, and Gateway.Service gives direct programmatic access to the
// build-list operations without going through HTTP.
package gateway
