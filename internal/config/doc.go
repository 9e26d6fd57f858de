// Package config loads, validates, and generates the ekscaler
// configuration file.
package config
