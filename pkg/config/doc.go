// Package config holds the mock server configuration.
//
// A Configuration starts from Default, is overlaid by an optional YAML or
// JSON file (LoadFromFile) and then by SPECMOCK_* environment variables
// (ApplyEnv). The CLI applies its flags last.
//
//	port: 8080
//	maxConnections: 100
//	generation:
//	  rootArrayCount: 2
//	  childArrayCount: 2
//	  randomized: false
//	  defaults:
//	    int64DefaultValue: 123456789
//	    othersDefaultValue: Lorem ipsum dolor sit amet
package config
