// Package config provides configuration management for gestctl.
//
// Configuration is layered, with later sources overriding earlier ones:
//
//  1. Defaults compiled into the binary (a local GestAgent installation)
//  2. User configuration (~/.config/gestctl/config.yaml)
//  3. Project configuration (./.gestctl/config.yaml)
//
// Command-line flags are applied on top by the cmd package.
//
// # Configuration Structure
//
//	logLevel: info
//	suites:
//	  mcp:
//	    baseURL: http://localhost:3003
//	    statusDelay: 1s
//	  realData:
//	    baseURL: http://localhost:3001
//	    workDir: /tmp/gestagent_test_docs
//	    indexDelay: 2s
//	    documentType: factura
//	  verify:
//	    baseURL: http://localhost:3001
//	    documentID: 0685005c-998b-4bbd-89b3-e20c0a50351a
//	report:
//	  dir: ./reports
//	  s3:
//	    bucket: qa-reports
//	    prefix: gestctl/reports
//	    accessKeyID: ${AWS_ACCESS_KEY_ID}
//	    secretAccessKey: ${AWS_SECRET_ACCESS_KEY}
//	mockServer:
//	  host: localhost
//	  port: 3003
//	  latency: 50ms
//
// Zero values never override a lower layer, so a file cannot switch a
// default delay off. Use the command-line flags for that.
package config
